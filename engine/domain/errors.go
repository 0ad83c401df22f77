package domain

import (
	"errors"
	"fmt"
)

// NotFoundAnswer is the grounded refusal the engine returns whenever the
// retrieved excerpts cannot support an answer. Insufficient grounding is a
// designed outcome, never an error.
const NotFoundAnswer = "제공된 발췌문에서 확인되지 않습니다."

// Sentinel errors. Configuration errors are fatal and never retried.
var (
	ErrNoBundles           = errors.New("no index bundles found")
	ErrModelMismatch       = errors.New("bundles built with different embedding models")
	ErrRowCountMismatch    = errors.New("metadata row count does not match index count")
	ErrGenerationExhausted = errors.New("all generation strategies failed")
)

// StrategyError records the failure of one named generation strategy so
// the caller can distinguish an unsupported prompting mode from a plain
// generation failure.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("generate (%s): %s", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// Package bundle loads the per-corpus index bundles the retrieval
// pipeline reads: a manifest.json descriptor and a meta.jsonl metadata
// file per corpus directory, joined by offset to a vector index built
// offline by the corpus ingestion tooling.
package bundle

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/semantic"
)

const (
	manifestFile = "manifest.json"
	metaFile     = "meta.jsonl"
)

// Manifest describes one built index: which embedding model produced the
// vectors, their dimension and count, and the collection holding them.
type Manifest struct {
	Corpus      string `json:"corpus"`
	Collection  string `json:"collection"`
	EmbedModel  string `json:"embed_model"`
	Dimension   int    `json:"dimension"`
	Count       int    `json:"count"`
	Normalized  bool   `json:"normalized"`
	DisplayName string `json:"display_name,omitempty"`
}

// Bundle is one loaded corpus: its read-only metadata rows, parallel to
// the vector index by integer offset, plus a search handle. Loaded once
// and never mutated.
type Bundle struct {
	Corpus      string
	Kind        domain.Kind
	DisplayName string
	Manifest    Manifest
	Rows        []domain.Row
	Index       semantic.Index
}

// Row returns the provenance row for a search offset, false when the
// offset is out of range.
func (b *Bundle) Row(offset int) (domain.Row, bool) {
	if offset < 0 || offset >= len(b.Rows) {
		return domain.Row{}, false
	}
	return b.Rows[offset], true
}

// OpenIndex resolves a manifest to its vector index. Production wiring
// passes a Qdrant-backed opener; tests pass fakes.
type OpenIndex func(m Manifest) (semantic.Index, error)

// QdrantOpener opens each bundle's collection on the given store and
// verifies its point count against the manifest, so a stale index and
// fresh metadata cannot be joined by offset.
func QdrantOpener(ctx context.Context, store *semantic.Store) OpenIndex {
	return func(m Manifest) (semantic.Index, error) {
		if m.Count > 0 {
			n, err := store.Count(ctx, m.Collection)
			if err != nil {
				return nil, err
			}
			if n != m.Count {
				return nil, fmt.Errorf("collection %s: %w: index has %d points, manifest says %d",
					m.Collection, domain.ErrRowCountMismatch, n, m.Count)
			}
		}
		return store.Index(m.Collection), nil
	}
}

// Load reads every corpus directory under root that carries both a
// manifest and a metadata file. Missing bundles entirely is a deployment
// misconfiguration and fatal. All bundles must have been built with the
// same embedding model, otherwise cross-index score fusion would silently
// compare incomparable scores.
func Load(root string, open OpenIndex, logger *slog.Logger) ([]Bundle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("bundle: read index root %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var bundles []Bundle
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		b, ok, err := loadOne(dir, e.Name(), open)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		logger.Info("bundle loaded",
			"corpus", b.Corpus, "kind", b.Kind, "rows", len(b.Rows), "model", b.Manifest.EmbedModel)
		bundles = append(bundles, b)
	}

	if len(bundles) == 0 {
		return nil, fmt.Errorf("bundle: %w under %s", domain.ErrNoBundles, root)
	}
	if err := checkModelUniform(bundles); err != nil {
		return nil, err
	}
	return bundles, nil
}

func loadOne(dir, name string, open OpenIndex) (Bundle, bool, error) {
	manifestPath := filepath.Join(dir, manifestFile)
	metaPath := filepath.Join(dir, metaFile)
	if !fileExists(manifestPath) || !fileExists(metaPath) {
		return Bundle{}, false, nil
	}

	var m Manifest
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return Bundle{}, false, fmt.Errorf("bundle: read %s: %w", manifestPath, err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return Bundle{}, false, fmt.Errorf("bundle: parse %s: %w", manifestPath, err)
	}
	if m.Corpus == "" {
		m.Corpus = name
	}
	if m.Collection == "" {
		m.Collection = name
	}

	rows, err := readRows(metaPath)
	if err != nil {
		return Bundle{}, false, err
	}
	if m.Count > 0 && m.Count != len(rows) {
		return Bundle{}, false, fmt.Errorf("bundle %s: %w: manifest says %d, meta has %d",
			name, domain.ErrRowCountMismatch, m.Count, len(rows))
	}

	// The corpus kind is decided once here; every row carries the tag
	// from now on. Rows missing their own provenance name inherit the
	// bundle display name so context heads never render a blank source.
	kind := domain.KindStatute
	if len(rows) > 0 {
		kind = rows[0].InferKind()
	}
	display := m.DisplayName
	if display == "" {
		display = displayName(kind, rows, name)
	}
	for i := range rows {
		rows[i].Kind = kind
		switch {
		case kind == domain.KindStatute && rows[i].Law == "":
			rows[i].Law = display
		case kind == domain.KindCase && rows[i].Court == "":
			rows[i].Court = display
		}
	}

	idx, err := open(m)
	if err != nil {
		return Bundle{}, false, fmt.Errorf("bundle %s: open index: %w", name, err)
	}

	return Bundle{
		Corpus:      m.Corpus,
		Kind:        kind,
		DisplayName: display,
		Manifest:    m,
		Rows:        rows,
		Index:       idx,
	}, true, nil
}

func readRows(path string) ([]domain.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: open %s: %w", path, err)
	}
	defer f.Close()

	var rows []domain.Row
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) // full-opinion rows run long
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r domain.Row
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			return nil, fmt.Errorf("bundle: %s line %d: %w", path, lineNo, err)
		}
		rows = append(rows, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("bundle: scan %s: %w", path, err)
	}
	return rows, nil
}

func displayName(kind domain.Kind, rows []domain.Row, fallback string) string {
	if len(rows) == 0 {
		return fallback
	}
	if kind == domain.KindStatute && rows[0].Law != "" {
		return rows[0].Law
	}
	if kind == domain.KindCase && rows[0].Court != "" {
		return rows[0].Court
	}
	return fallback
}

func checkModelUniform(bundles []Bundle) error {
	model := bundles[0].Manifest.EmbedModel
	for _, b := range bundles[1:] {
		if b.Manifest.EmbedModel != model {
			return fmt.Errorf("bundle: %w: %q (%s) vs %q (%s)",
				domain.ErrModelMismatch, model, bundles[0].Corpus, b.Manifest.EmbedModel, b.Corpus)
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

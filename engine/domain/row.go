// Package domain defines the core types shared across the retrieval
// pipeline: tagged metadata rows for statute and case-law chunks, the
// normalization helpers for Korean legal references, and the sentinel
// errors of the engine.
package domain

import "encoding/json"

// Kind discriminates statute rows from case-law rows. It is assigned once
// when a bundle is loaded and carried on every row afterwards, never
// re-inferred at call sites.
type Kind string

const (
	KindStatute Kind = "law"
	KindCase    Kind = "case"
)

// Statute chunk units as recorded by the ingestion tooling.
const (
	UnitArticle       = "조문" // article body
	UnitParagraph     = "항"  // numbered paragraph
	UnitClause        = "호"  // clause
	UnitItem          = "목"  // item
	UnitSupplementary = "부칙" // supplementary provisions
)

// Case-law sections.
const (
	SectionHolding = "판시사항"
	SectionSummary = "판결요지"
	SectionOpinion = "판례내용"
)

// Row is one indexed chunk of a legal corpus. Statute and case fields are
// mutually exclusive; Kind says which set is populated.
type Row struct {
	Kind Kind `json:"kind,omitempty"`

	// Statute fields.
	Law       string `json:"law,omitempty"`
	ArticleNo string `json:"article_no,omitempty"` // may carry a suffix, e.g. "14의2"
	Unit      string `json:"unit,omitempty"`
	ID        string `json:"id,omitempty"` // composite "article::subunit"
	Path      string `json:"path,omitempty"`
	Title     string `json:"title,omitempty"`

	// Case fields.
	SerialNo string `json:"serial_no,omitempty"`
	CaseName string `json:"case_name,omitempty"`
	CaseNo   string `json:"case_no,omitempty"`
	Court    string `json:"court,omitempty"`
	JudgedAt string `json:"judged_at,omitempty"` // 8-digit or ISO date
	Section  string `json:"section,omitempty"`

	Text string `json:"text,omitempty"`
}

// rawRow accepts both the English statute keys and the Korean case keys
// that the corpus build tooling writes into meta.jsonl.
type rawRow struct {
	Kind      Kind   `json:"kind"`
	Law       string `json:"law"`
	ArticleNo string `json:"article_no"`
	Unit      string `json:"unit"`
	ID        string `json:"id"`
	Path      string `json:"path"`
	Title     string `json:"title"`
	Text      string `json:"text"`

	SerialNo   string `json:"serial_no"`
	SerialNoKR string `json:"판례정보일련번호"`
	CaseName   string `json:"case_name"`
	CaseNameKR string `json:"사건명"`
	CaseNo     string `json:"case_no"`
	CaseNoKR   string `json:"사건번호"`
	Court      string `json:"court"`
	CourtKR    string `json:"법원명"`
	JudgedAt   string `json:"judged_at"`
	JudgedAtKR string `json:"선고일자"`
	Section    string `json:"section"`
	FullText   string `json:"전문"`
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// UnmarshalJSON decodes a meta.jsonl row, unifying the statute "text" key
// with the case-law "전문" key and folding the Korean provenance keys into
// their canonical fields.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw rawRow
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Row{
		Kind:      raw.Kind,
		Law:       raw.Law,
		ArticleNo: raw.ArticleNo,
		Unit:      raw.Unit,
		ID:        raw.ID,
		Path:      raw.Path,
		Title:     raw.Title,
		SerialNo:  firstOf(raw.SerialNo, raw.SerialNoKR),
		CaseName:  firstOf(raw.CaseName, raw.CaseNameKR),
		CaseNo:    firstOf(raw.CaseNo, raw.CaseNoKR),
		Court:     firstOf(raw.Court, raw.CourtKR),
		JudgedAt:  firstOf(raw.JudgedAt, raw.JudgedAtKR),
		Section:   raw.Section,
		Text:      firstOf(raw.Text, raw.FullText),
	}
	return nil
}

// InferKind detects whether a raw row describes a case-law chunk or a
// statute chunk from its populated field set. Used only by the bundle
// loader; everything downstream reads Row.Kind.
func (r Row) InferKind() Kind {
	if r.Kind != "" {
		return r.Kind
	}
	if r.Section != "" && (r.SerialNo != "" || r.CaseName != "" || r.CaseNo != "") {
		return KindCase
	}
	if (r.CaseName != "" || r.CaseNo != "" || r.Court != "") && r.ArticleNo == "" && r.Unit == "" {
		return KindCase
	}
	return KindStatute
}

// IsCase reports whether the row is a case-law chunk.
func (r Row) IsCase() bool { return r.Kind == KindCase }

// Source is the caller-facing provenance summary of one context row.
type Source struct {
	Type  string `json:"type"` // "law" or "case"
	Label string `json:"label"`
}

// SourceOf builds the provenance summary for a row.
func SourceOf(r Row) Source {
	if r.IsCase() {
		label := r.Court + " " + TidyDate(r.JudgedAt) + " " + r.CaseNo
		if r.Section != "" {
			label += " [" + r.Section + "]"
		}
		return Source{Type: string(KindCase), Label: label}
	}
	law := r.Law
	if law == "" {
		law = "법령"
	}
	ref := ""
	if r.ArticleNo != "" {
		ref = "제" + r.ArticleNo + "조"
	} else if r.Title != "" {
		ref = r.Title
	}
	label := law
	if ref != "" {
		label += " " + ref
	}
	return Source{Type: string(KindStatute), Label: label}
}

package bundle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/wing0907/lawai-engine/engine/domain"
	"github.com/wing0907/lawai-engine/engine/semantic"
)

type fakeIndex struct{ collection string }

func (f *fakeIndex) Search(ctx context.Context, vector []float32, k int) ([]semantic.ScoredOffset, error) {
	return nil, nil
}

func fakeOpener(opened *[]string) OpenIndex {
	return func(m Manifest) (semantic.Index, error) {
		if opened != nil {
			*opened = append(*opened, m.Collection)
		}
		return &fakeIndex{collection: m.Collection}, nil
	}
}

func writeBundle(t *testing.T, root, name string, m Manifest, rows []map[string]any) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), raw, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	var meta []byte
	for _, r := range rows {
		line, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal row: %v", err)
		}
		meta = append(meta, line...)
		meta = append(meta, '\n')
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.jsonl"), meta, 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
}

func statuteRows(n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]any{
			"law": "민법", "article_no": "750", "unit": "조문",
			"id": "민법-0750", "text": "고의 또는 과실로 인한 위법행위",
		})
	}
	return rows
}

func caseRows(n int) []map[string]any {
	rows := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, map[string]any{
			"판례정보일련번호": "64818", "법원명": "대법원", "사건번호": "2000다56259",
			"section": "판결요지", "전문": "생활방해가 사회통념상 수인한도를 넘는 경우",
		})
	}
	return rows
}

func TestLoadAssignsKindPerBundle(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "law_civil", Manifest{EmbedModel: "bge-m3", Count: 2}, statuteRows(2))
	writeBundle(t, root, "precedents", Manifest{EmbedModel: "bge-m3", Count: 3}, caseRows(3))

	bundles, err := Load(root, fakeOpener(nil), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(bundles) != 2 {
		t.Fatalf("got %d bundles, want 2", len(bundles))
	}
	// ReadDir order is lexical: law_civil then precedents.
	if bundles[0].Kind != domain.KindStatute {
		t.Errorf("law_civil kind = %q, want statute", bundles[0].Kind)
	}
	if bundles[1].Kind != domain.KindCase {
		t.Errorf("precedents kind = %q, want case", bundles[1].Kind)
	}
	for _, b := range bundles {
		for i, r := range b.Rows {
			if r.Kind != b.Kind {
				t.Errorf("%s row %d kind = %q, want %q", b.Corpus, i, r.Kind, b.Kind)
			}
		}
	}
	if bundles[0].DisplayName != "민법" {
		t.Errorf("statute display name = %q, want 민법", bundles[0].DisplayName)
	}
	if bundles[1].DisplayName != "대법원" {
		t.Errorf("case display name = %q, want 대법원", bundles[1].DisplayName)
	}
}

func TestLoadBackfillsDisplayName(t *testing.T) {
	root := t.TempDir()
	statutes := statuteRows(2)
	delete(statutes[1], "law")
	writeBundle(t, root, "law_civil", Manifest{EmbedModel: "bge-m3", Count: 2}, statutes)

	cases := caseRows(2)
	delete(cases[1], "법원명")
	writeBundle(t, root, "precedents", Manifest{EmbedModel: "bge-m3", Count: 2}, cases)

	bundles, err := Load(root, fakeOpener(nil), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := bundles[0].Rows[1].Law; got != "민법" {
		t.Errorf("statute row law = %q, want bundle display name 민법", got)
	}
	if got := bundles[1].Rows[1].Court; got != "대법원" {
		t.Errorf("case row court = %q, want bundle display name 대법원", got)
	}
}

func TestLoadRowCountMismatch(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "law_civil", Manifest{EmbedModel: "bge-m3", Count: 5}, statuteRows(2))

	_, err := Load(root, fakeOpener(nil), slog.New(slog.DiscardHandler))
	if !errors.Is(err, domain.ErrRowCountMismatch) {
		t.Fatalf("err = %v, want ErrRowCountMismatch", err)
	}
}

func TestLoadModelMismatch(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "law_civil", Manifest{EmbedModel: "bge-m3", Count: 1}, statuteRows(1))
	writeBundle(t, root, "precedents", Manifest{EmbedModel: "nomic-embed", Count: 1}, caseRows(1))

	_, err := Load(root, fakeOpener(nil), slog.New(slog.DiscardHandler))
	if !errors.Is(err, domain.ErrModelMismatch) {
		t.Fatalf("err = %v, want ErrModelMismatch", err)
	}
}

func TestLoadNoBundles(t *testing.T) {
	root := t.TempDir()
	// A directory without manifest/meta is skipped, not an error.
	if err := os.MkdirAll(filepath.Join(root, "scratch"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err := Load(root, fakeOpener(nil), slog.New(slog.DiscardHandler))
	if !errors.Is(err, domain.ErrNoBundles) {
		t.Fatalf("err = %v, want ErrNoBundles", err)
	}
}

func TestLoadOpensDeclaredCollections(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "law_civil", Manifest{Collection: "civil_v2", EmbedModel: "bge-m3"}, statuteRows(1))

	var opened []string
	bundles, err := Load(root, fakeOpener(&opened), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(opened) != 1 || opened[0] != "civil_v2" {
		t.Fatalf("opened = %v, want [civil_v2]", opened)
	}
	if bundles[0].Corpus != "law_civil" {
		t.Errorf("corpus defaulted to %q, want dir name law_civil", bundles[0].Corpus)
	}
}

func TestRowOffsetBounds(t *testing.T) {
	b := Bundle{Rows: []domain.Row{{ID: "a"}, {ID: "b"}}}
	if r, ok := b.Row(1); !ok || r.ID != "b" {
		t.Errorf("Row(1) = %v, %v", r, ok)
	}
	if _, ok := b.Row(2); ok {
		t.Error("Row(2) should be out of range")
	}
	if _, ok := b.Row(-1); ok {
		t.Error("Row(-1) should be out of range")
	}
}

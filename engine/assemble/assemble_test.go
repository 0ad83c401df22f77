package assemble

import (
	"strings"
	"testing"

	"github.com/wing0907/lawai-engine/engine/domain"
)

func TestHeadStatute(t *testing.T) {
	r := domain.Row{Kind: domain.KindStatute, Law: "민법", ArticleNo: "750", Unit: domain.UnitArticle}
	if got := Head(r); got != "민법 제750조" {
		t.Errorf("Head = %q", got)
	}
}

func TestHeadCaseWithSection(t *testing.T) {
	r := domain.Row{
		Kind: domain.KindCase, Court: "대법원", JudgedAt: "20001222",
		CaseNo: "2000다56259", Section: domain.SectionSummary,
	}
	got := Head(r)
	if !strings.Contains(got, "대법원 2000-12-22") || !strings.Contains(got, "2000다56259") {
		t.Errorf("Head = %q", got)
	}
	lines := Lines([]domain.Row{r}, 100)
	if !strings.Contains(lines[0], "] (판결요지) ") {
		t.Errorf("case line missing section: %q", lines[0])
	}
}

func TestLinesNumberedAndCapped(t *testing.T) {
	rows := []domain.Row{
		{Kind: domain.KindStatute, Law: "민법", ArticleNo: "750", Text: strings.Repeat("가", 50)},
		{Kind: domain.KindCase, Court: "대법원", CaseNo: "2000다56259", Text: "요지"},
	}
	lines := Lines(rows, 10)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "1. [민법 제750조] ") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2. [") {
		t.Errorf("line 2 = %q", lines[1])
	}
	if !strings.HasSuffix(lines[0], "…") {
		t.Errorf("long text not truncated: %q", lines[0])
	}
}

func TestLinesStripStatuteMarker(t *testing.T) {
	r := domain.Row{
		Kind: domain.KindStatute, Law: "형법", ArticleNo: "250",
		Unit: domain.UnitParagraph, ID: "250::1",
		Text: "①사람을 살해한 자는 처벌한다.",
	}
	lines := Lines([]domain.Row{r}, 0)
	want := "1. [형법 제250조 제1항] 사람을 살해한 자는 처벌한다."
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
}

func TestCounterLinesCaseHead(t *testing.T) {
	r := domain.Row{
		Kind: domain.KindCase, Court: "대법원", JudgedAt: "20001222",
		CaseNo: "2000다56259", Section: domain.SectionSummary, Text: "수인한도 법리",
	}
	lines := CounterLines([]domain.Row{r}, 900)
	want := "1. [대법원 2000-12-22 2000다56259, 판결요지] 수인한도 법리"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
}

func TestBlockBudgetIncludesMarker(t *testing.T) {
	var rows []domain.Row
	for i := 0; i < 30; i++ {
		rows = append(rows, domain.Row{
			Kind: domain.KindStatute, Law: "민법", ArticleNo: "750",
			Text: strings.Repeat("판례와 법령의 본문 ", 40),
		})
	}
	for _, budget := range []int{50, 200, 1000} {
		got := Block(rows, 900, budget)
		if n := len([]rune(got)); n > budget {
			t.Errorf("budget %d: block holds %d runes", budget, n)
		}
		if !strings.HasSuffix(got, "…(trimmed)") {
			t.Errorf("budget %d: missing truncation marker", budget)
		}
	}
}

func TestBlockUnderBudgetUntouched(t *testing.T) {
	rows := []domain.Row{{Kind: domain.KindStatute, Law: "민법", ArticleNo: "750", Text: "본문"}}
	got := Block(rows, 900, 8000)
	if strings.Contains(got, "(trimmed)") {
		t.Errorf("short block must not be trimmed: %q", got)
	}
}

package query

import (
	"reflect"
	"testing"
)

func TestExtractCitations(t *testing.T) {
	text := "대법원 2000다56259 판결과 2016도12865 판결은 민법 제750조, 형법 제250조 제1항을 다룬다. 2000다56259 재인용."
	c := ExtractCitations(text)
	if want := []string{"2000다56259", "2016도12865"}; !reflect.DeepEqual(c.CaseNos, want) {
		t.Fatalf("case nos = %v, want %v", c.CaseNos, want)
	}
	if want := []string{"민법 제750조", "형법 제250조 제1항"}; !reflect.DeepEqual(c.Laws, want) {
		t.Fatalf("laws = %v, want %v", c.Laws, want)
	}
}

func TestExtractCitationsEmpty(t *testing.T) {
	c := ExtractCitations("아무 인용도 없는 평문")
	if len(c.CaseNos) != 0 || len(c.Laws) != 0 {
		t.Fatalf("expected empty citations, got %+v", c)
	}
}

func TestParseStatuteQuery(t *testing.T) {
	cases := []struct {
		in   string
		want StatuteQuery
		ok   bool
	}{
		{"민법 제750조", StatuteQuery{Law: "민법", Article: "750"}, true},
		{"형법 제250조 1항", StatuteQuery{Law: "형법", Article: "250", Paragraph: "1"}, true},
		{"헌법 10조", StatuteQuery{Law: "헌법", Article: "10"}, true},
		{"헌법 제12조 1~3항", StatuteQuery{Law: "헌법", Article: "12", RangeLo: 1, RangeHi: 3}, true},
		{"헌법 제12조 3-1항", StatuteQuery{Law: "헌법", Article: "12", RangeLo: 1, RangeHi: 3}, true},
		{"민법 제263조 모든 항", StatuteQuery{Law: "민법", Article: "263", WantAll: true}, true},
		{"형법 제21조 정당방위", StatuteQuery{Law: "형법", Article: "21", WantAll: true}, true},
		{"불법행위란 무엇인가", StatuteQuery{}, false},
	}
	for _, c := range cases {
		got, ok := ParseStatuteQuery(c.in)
		if ok != c.ok {
			t.Errorf("ParseStatuteQuery(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseStatuteQuery(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	text := "층간소음 손해배상 청구와 층간소음 피해, noise 및 소음 관련 사건"
	kws := Keywords(text, 3)
	if len(kws) != 3 {
		t.Fatalf("keywords = %v", kws)
	}
	if kws[0] != "층간소음" {
		t.Fatalf("most frequent first, got %v", kws)
	}
	for _, k := range kws {
		if k == "및" || k == "관련" || k == "사건" {
			t.Fatalf("stopword leaked: %v", kws)
		}
	}
}

func TestKeywordsFiltersDigitsAndShortTokens(t *testing.T) {
	for _, k := range Keywords("2023 12 a b 소 음", 10) {
		if isDigits(k) || len([]rune(k)) < 2 {
			t.Fatalf("invalid token %q survived", k)
		}
	}
}

func TestKeywordsDeterministic(t *testing.T) {
	text := "소음 진동 악취 소음 과실 진동 인과관계"
	first := Keywords(text, 5)
	for i := 0; i < 10; i++ {
		if got := Keywords(text, 5); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestSummarizeClaim(t *testing.T) {
	if got := SummarizeClaim("첫 줄 주장\n둘째 줄", 200); got != "첫 줄 주장" {
		t.Fatalf("claim = %q", got)
	}
	long := SummarizeClaim("가나다라마바사", 3)
	if long != "가나다…" {
		t.Fatalf("capped claim = %q", long)
	}
	if got := SummarizeClaim("\n\n  본문  \n", 200); got != "본문" {
		t.Fatalf("leading blank lines should be skipped, got %q", got)
	}
}

func TestExpand(t *testing.T) {
	cites := Citations{CaseNos: []string{"2000다56259"}, Laws: []string{"민법 제750조"}}
	qs := Expand("층간소음 손해배상", "상대방 주장 전문", cites, 2)

	if qs[0] != "층간소음 손해배상" {
		t.Fatalf("claim must come first, got %v", qs[0])
	}
	want := map[string]bool{
		"상대방 주장 전문":      true,
		"층간소음 손해배상 판례":  true,
		"층간소음 손해배상 요지":  true,
		"층간소음 손해배상 법리":  true,
		"사건번호 2000다56259": true,
		"민법 제750조":        true,
	}
	seen := map[string]int{}
	for _, q := range qs {
		seen[q]++
		if seen[q] > 1 {
			t.Fatalf("duplicate query %q", q)
		}
		delete(want, q)
	}
	if len(want) != 0 {
		t.Fatalf("missing queries %v in %v", want, qs)
	}
}

func TestExpandEmptyOpponentFallsBackToClaim(t *testing.T) {
	qs := Expand("주장", "", Citations{}, 6)
	for _, q := range qs[1:] {
		if q == "" {
			t.Fatalf("empty query leaked: %v", qs)
		}
	}
	if qs[0] != "주장" {
		t.Fatalf("claim first, got %v", qs)
	}
}

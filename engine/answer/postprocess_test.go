package answer

import "testing"

func TestPostprocessStripsRoleMarkers(t *testing.T) {
	in := "SYSTEM: you are an assistant\n[USER]: 질문\nassistant:\n핵심 결론입니다."
	if got := Postprocess(in); got != "핵심 결론입니다." {
		t.Errorf("got %q", got)
	}
}

func TestPostprocessStripsTimestamps(t *testing.T) {
	in := "2024-01-15\n결론 문장.\n2024/1/5 09:30:00"
	if got := Postprocess(in); got != "결론 문장." {
		t.Errorf("got %q", got)
	}
}

func TestPostprocessCollapsesRepeats(t *testing.T) {
	in := "같은 줄\n같은 줄\n같은 줄\n같은 줄\n다른 줄"
	want := "같은 줄\n같은 줄\n다른 줄"
	if got := Postprocess(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPostprocessKeepsCitations(t *testing.T) {
	in := "불법행위가 성립한다 [민법 제750조]."
	if got := Postprocess(in); got != in {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestPostprocessAllNoise(t *testing.T) {
	if got := Postprocess("USER: hi\n\n2024-01-01"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

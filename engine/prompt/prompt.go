// Package prompt builds the system/user message pairs for generation.
// Templates hard-constrain the model: answer only from the supplied
// context, cite in the bracket formats the corpus uses, answer in
// Korean, and admit when the excerpts do not cover the question.
package prompt

import (
	"fmt"
	"strings"

	"github.com/wing0907/lawai-engine/engine/domain"
)

// Pair is one ready prompt: the system message and the user message.
type Pair struct {
	System string
	User   string
}

const lawSystem = "당신은 대한민국 법령 RAG 어시스턴트입니다.\n" +
	"- 반드시 아래 '컨텍스트'만 근거로 답하세요(외부지식 금지).\n" +
	"- 인용은 본문 안에 [법령명 제X조(제Y항)] 형식으로 최소 1개 이상 표기.\n" +
	"- 답변은 반드시 한국어로 작성하세요.\n" +
	"- 근거가 없으면 '제공된 발췌문에서 확인되지 않습니다.'라고 답하세요.\n" +
	"- 과도한 추론 금지. 최대 5문장, 불릿 허용."

const lawUser = "아래 컨텍스트만 활용해 답하세요.\n\n" +
	"질문:\n%s\n\n" +
	"컨텍스트:\n%s\n\n" +
	"작성 지침:\n" +
	"- 출력형식: plain\n" +
	"- 먼저 핵심 결론 1~2문장, 필요 시 불릿으로 요건/근거 정리.\n" +
	"- 각 근거 옆에 [법령명 제X조(제Y항)] 형태로 인용.\n" +
	"\n답변:"

const caseSystem = "당신은 대한민국 법령·판례 RAG 어시스턴트입니다.\n" +
	"- 반드시 아래 '컨텍스트'(법령 조문 또는 판결문 발췌)만 근거로 답하세요(외부지식 금지).\n" +
	"- 질문이 법령 해석을 요구하면, 조문을 그대로 근거로 설명하세요.\n" +
	"- 질문이 판례 관련이면, 판례의 판시사항·판결요지·판례내용을 중심으로 답하세요.\n" +
	"- 답변은 반드시 한국어로 작성하세요.\n" +
	"- 인용은 본문 안에 다음 형식으로 표기:\n" +
	"  • 법령: [민법 제750조 제1항]\n" +
	"  • 판례: [대법원 2000-12-22 2000다56259, 판결요지]\n" +
	"- 컨텍스트에 없는 사실이나 판단은 임의로 만들지 말고, 부족하면 '제공된 발췌문에서 확인되지 않습니다.'라고 답하세요.\n" +
	"- 최대 5문장 이내로, 필요 시 불릿으로 정리. 핵심 논지·법리만 간결히 요약."

const caseUser = "아래 컨텍스트(판례 발췌)만 활용해 답하세요.\n\n" +
	"질문:\n%s\n\n" +
	"컨텍스트:\n%s\n\n" +
	"작성 지침:\n" +
	"- 출력형식: plain\n" +
	"- 반드시 한국어로만 답하세요. 영어를 포함하지 마세요.\n" +
	"- 먼저 핵심 결론 1~2문장, 필요 시 불릿로 법리/요건/사실관계 포인트 정리.\n" +
	"- 인용은 [법원명 선고일자 사건번호, 섹션] 형식.\n" +
	"\n답변:"

// ForKind builds the question-answering prompt, choosing the statute or
// case-law template by the corpus kind of the top-ranked hit.
func ForKind(kind domain.Kind, question, context string) Pair {
	if kind == domain.KindCase {
		return Pair{System: caseSystem, User: fmt.Sprintf(caseUser, question, context)}
	}
	return Pair{System: lawSystem, User: fmt.Sprintf(lawUser, question, context)}
}

const counterSystem = "당신은 대한민국 소송 실무에 능한 법률 분석 어시스턴트입니다.\n" +
	"상대방 주장을 반박하는 관점에서, 아래 '컨텍스트'(법령 조문·판결문 발췌)만 근거로 분석하세요(외부지식 금지).\n" +
	"- 반드시 한국어로 작성하세요.\n" +
	"- 출력은 아래 JSON 스키마를 따르는 JSON 객체 하나만 출력하세요. JSON 외의 텍스트를 덧붙이지 마세요.\n" +
	"{\n" +
	"  \"logical_gaps\": [\"상대 주장에서 근거가 빠졌거나 비약이 있는 지점\"],\n" +
	"  \"counter_points\": [\"컨텍스트의 법리·조문에 기반한 반박 포인트\"],\n" +
	"  \"supports\": [\"반박을 뒷받침하는 컨텍스트 인용([법원명 선고일자 사건번호, 섹션] 또는 [법령명 제X조])\"],\n" +
	"  \"followups\": [\"추가로 확인하거나 입증해야 할 사실·자료\"]\n" +
	"}\n" +
	"- 컨텍스트에 없는 사실이나 판단은 만들지 마세요."

const counterUser = "상대방 주장 요지:\n%s\n\n" +
	"상대방이 인용한 사건번호: %s\n" +
	"상대방이 인용한 법령: %s\n\n" +
	"컨텍스트:\n%s\n\n" +
	"위 컨텍스트만 근거로 상대방 주장의 논리적 공백과 반박 포인트를 JSON으로 작성하세요."

// ForCounter builds the adversarial analysis prompt. Empty citation
// lists render as "-" so the model does not invent references.
func ForCounter(claim string, caseRefs, lawRefs []string, context string) Pair {
	return Pair{
		System: counterSystem,
		User: fmt.Sprintf(counterUser,
			claim, refsOrDash(caseRefs), refsOrDash(lawRefs), context),
	}
}

func refsOrDash(refs []string) string {
	if len(refs) == 0 {
		return "-"
	}
	return strings.Join(refs, ", ")
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/model"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// SplitMarker 分隔模型输出的两部分：영역별 분석 / 행동특성 및 종합의견。
const SplitMarker = "---SPLIT---"

const defaultSystemPrompt = `당신은 입학사정관 관점을 가진 고등학교 교사입니다.`

// defaultUserPrompt 使用 FString 占位符，模板正文里不能出现其他花括号。
const defaultUserPrompt = `입력 정보: {observation}
작성 지침: [{keyword_guidance}]

다음 두 가지 파트로 나누어 출력하세요. 구분선: "{split_marker}"

[Part 1] 영역별 분석 (개조식)
- [인성 / 학업 / 진로 / 공동체] 분류하여 요약

{split_marker}

[Part 2] 행동특성 및 종합의견 (서술형 종합본)
- 문체: ~함, ~임
- 구조: 사례 -> 행동 -> 성장/평가
- 목표 분량: 공백 포함 약 {target_length}자 (오차범위 ±10%)

{mode_instruction}

# ★★★ 구조 및 순서 ★★★
1. **기본 순서 준수**: 특별히 강조할 키워드가 지정되지 않았다면, **[인성/사회성] → [학업역량] → [진로적성] → [발전가능성]** 순서로 배치하십시오.
2. **유기적 연결**: 각 영역을 딱딱하게 끊지 말고 자연스럽게 연결하십시오.`

const strictInstruction = `# ★★★ 엄격 작성 원칙 (Strict Mode) ★★★
1. **절대 날조 금지**: 사용자가 입력한 내용에 없는 구체적 에피소드를 절대 창작하지 마십시오.
2. **담백한 서술**: 입력 정보가 부족하면 억지로 늘리지 말고, 일반적인 태도나 성향 위주로 건조하게 서술하십시오.`

const richInstruction = `# ★★★ 풍성 작성 원칙 (Rich Mode) ★★★
1. **내용 보강**: 입력된 내용이 다소 짧더라도, 문맥에 맞는 적절한 수식어와 교육적 표현을 사용하여 풍성하게 작성하십시오.
2. **자연스러운 연결**: 문장과 문장 사이를 매끄럽게 연결하여 유려한 글이 되도록 하십시오.`

const noKeywordGuidance = "별도의 키워드 지정 없음. [인성/소통] -> [학업/태도] -> [진로/관심] -> [발전가능성] 순서 권장."

type PromptBuilder struct {
	tpl prompt.ChatTemplate
}

// NewPromptBuilder 用配置中的模板（为空时用内置模板）创建提示词构造器。
func NewPromptBuilder(cfg config.PromptConfig) *PromptBuilder {
	system := cfg.System
	if strings.TrimSpace(system) == "" {
		system = defaultSystemPrompt
	}
	user := cfg.User
	if strings.TrimSpace(user) == "" {
		user = defaultUserPrompt
	}

	return &PromptBuilder{
		tpl: prompt.FromMessages(schema.FString,
			schema.SystemMessage(system),
			schema.UserMessage(user),
		),
	}
}

// Build 渲染发送给模型的消息。
func (b *PromptBuilder) Build(ctx context.Context, observation string, opts model.Options) ([]*schema.Message, error) {
	msgs, err := b.tpl.Format(ctx, promptVariables(observation, opts))
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}
	return msgs, nil
}

func promptVariables(observation string, opts model.Options) map[string]any {
	return map[string]any{
		"observation":      strings.TrimSpace(observation),
		"keyword_guidance": KeywordGuidance(opts.Keywords),
		"split_marker":     SplitMarker,
		"target_length":    strconv.Itoa(opts.TargetLength),
		"mode_instruction": ModeInstruction(opts.Mode),
	}
}

// KeywordGuidance 生成"작성 지침"一行。
func KeywordGuidance(keywords []model.Keyword) string {
	if len(keywords) == 0 {
		return noKeywordGuidance
	}
	tags := make([]string, 0, len(keywords))
	for _, k := range keywords {
		tags = append(tags, k.Tag())
	}
	return "다음 핵심 키워드를 중심으로 서술: " + strings.Join(tags, ", ")
}

func ModeInstruction(mode model.Mode) string {
	if mode == model.ModeStrict {
		return strictInstruction
	}
	return richInstruction
}

package service

import (
	"context"
	"strings"
	"testing"

	"recordmate-backend/internal/config"
	"recordmate-backend/internal/model"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
)

func TestPromptBuildStrictWithKeywords(t *testing.T) {
	b := NewPromptBuilder(config.PromptConfig{})
	opts := model.Options{
		Mode:         model.ModeStrict,
		TargetLength: 300,
		Keywords:     []model.Keyword{model.KeywordAcademic, model.KeywordCareer},
		Model:        model.PreferFlash,
	}

	msgs, err := b.Build(context.Background(), "  오답노트를 꼼꼼히 작성함  ", opts)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, schema.System, msgs[0].Role)
	require.Contains(t, msgs[0].Content, "입학사정관")

	user := msgs[1].Content
	require.Contains(t, user, "입력 정보: 오답노트를 꼼꼼히 작성함\n")
	require.Contains(t, user, "작성 지침: [다음 핵심 키워드를 중심으로 서술: 📘 학업 역량, 🚀 진로 역량]")
	require.Contains(t, user, "공백 포함 약 300자")
	require.Contains(t, user, "Strict Mode")
	require.NotContains(t, user, "Rich Mode")
	require.Equal(t, 2, strings.Count(user, SplitMarker))
}

func TestPromptBuildDefaultGuidance(t *testing.T) {
	b := NewPromptBuilder(config.PromptConfig{})
	msgs, err := b.Build(context.Background(), "관찰", model.DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, msgs[1].Content, noKeywordGuidance)
	require.Contains(t, msgs[1].Content, "Rich Mode")
	require.Contains(t, msgs[1].Content, "약 500자")
}

func TestPromptBuildKeepsBracesInObservation(t *testing.T) {
	b := NewPromptBuilder(config.PromptConfig{})
	msgs, err := b.Build(context.Background(), "수식 {x} 를 설명함", model.DefaultOptions())
	require.NoError(t, err)
	require.Contains(t, msgs[1].Content, "수식 {x} 를 설명함")
}

func TestPromptBuildCustomTemplate(t *testing.T) {
	b := NewPromptBuilder(config.PromptConfig{
		System: "custom system",
		User:   "{observation}|{target_length}|{keyword_guidance}",
	})
	msgs, err := b.Build(context.Background(), "obs", model.Options{
		Mode: model.ModeRich, TargetLength: 100, Keywords: []model.Keyword{model.KeywordGrowth},
	})
	require.NoError(t, err)
	require.Equal(t, "custom system", msgs[0].Content)
	require.Equal(t, "obs|100|다음 핵심 키워드를 중심으로 서술: 🌱 발전 가능성", msgs[1].Content)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToOptionsDefaults(t *testing.T) {
	opts, err := GenerateRequest{Observation: "x"}.ToOptions()
	require.NoError(t, err)
	require.Equal(t, DefaultOptions(), opts)
}

func TestToOptionsParsesAndDedupes(t *testing.T) {
	opts, err := GenerateRequest{
		Mode:         "STRICT",
		TargetLength: 300,
		Keywords:     []string{"career", "academic", "career"},
		Model:        "pro",
	}.ToOptions()
	require.NoError(t, err)
	require.Equal(t, ModeStrict, opts.Mode)
	require.Equal(t, PreferPro, opts.Model)
	require.Equal(t, []Keyword{KeywordCareer, KeywordAcademic}, opts.Keywords)
	require.Equal(t, []string{"진로 역량", "학업 역량"}, opts.KeywordLabels())
}

func TestToOptionsRejectsInvalid(t *testing.T) {
	cases := map[string]GenerateRequest{
		"unknown mode":    {Mode: "loose"},
		"unknown model":   {Model: "ultra"},
		"unknown keyword": {Keywords: []string{"sports"}},
		"too short":       {TargetLength: 90},
		"too long":        {TargetLength: 610},
		"off step":        {TargetLength: 305},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := req.ToOptions()
			require.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestModeTemperature(t *testing.T) {
	require.InDelta(t, 0.75, ModeRich.Temperature(), 1e-6)
	require.InDelta(t, 0.2, ModeStrict.Temperature(), 1e-6)
	require.Equal(t, "엄격하게", ModeStrict.Label())
}

func TestShortInput(t *testing.T) {
	require.False(t, ShortInput(""))
	require.True(t, ShortInput("수학 오답노트를 꼼꼼히 작성함"))
	require.False(t, ShortInput("수학 점수는 낮으나 오답노트를 꼼꼼히 작성함. 체육대회 때 뒷정리를 도맡아 함."))
}

func TestNormalizeCanonicalizesValues(t *testing.T) {
	opts := Options{
		Mode:         "STRICT",
		Model:        " Pro ",
		TargetLength: 300,
		Keywords:     []Keyword{"ACADEMIC", "academic", " Career"},
	}.Normalize()

	require.Equal(t, ModeStrict, opts.Mode)
	require.Equal(t, PreferPro, opts.Model)
	require.Equal(t, []Keyword{KeywordAcademic, KeywordCareer}, opts.Keywords)
	require.NoError(t, opts.Validate())
	require.InDelta(t, 0.2, opts.Mode.Temperature(), 1e-6)
}

func TestValidateRequiresCanonicalValues(t *testing.T) {
	cases := map[string]Options{
		"upper-case mode":    {Mode: "STRICT", Model: PreferFlash, TargetLength: 500},
		"upper-case model":   {Mode: ModeRich, Model: "PRO", TargetLength: 500},
		"upper-case keyword": {Mode: ModeRich, Model: PreferFlash, TargetLength: 500, Keywords: []Keyword{"ACADEMIC"}},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
		})
	}
}

func TestKeywordTag(t *testing.T) {
	require.Equal(t, "👑 AI 자동 판단", KeywordAIAuto.Tag())
	require.Equal(t, "unknown", Keyword("unknown").Tag())
}

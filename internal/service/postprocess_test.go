package service

import (
	"testing"

	"recordmate-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestSplitResponse(t *testing.T) {
	analysis, final, split := SplitResponse("\n- 인성: 배려함\n---SPLIT---\n  체육대회 뒷정리를 도맡아 함.  \n")
	require.True(t, split)
	require.Equal(t, "- 인성: 배려함", analysis)
	require.Equal(t, "체육대회 뒷정리를 도맡아 함.", final)
}

func TestSplitResponseIgnoresExtraParts(t *testing.T) {
	_, final, split := SplitResponse("a---SPLIT---b---SPLIT---c")
	require.True(t, split)
	require.Equal(t, "b", final)
}

func TestSplitResponseWithoutMarker(t *testing.T) {
	analysis, final, split := SplitResponse("  한 덩어리 응답  ")
	require.False(t, split)
	require.Equal(t, MissingAnalysis, analysis)
	require.Equal(t, "  한 덩어리 응답  ", final)
}

func TestCountChars(t *testing.T) {
	with, without := CountChars("성실함.\n배려 깊음")
	require.Equal(t, 10, with)
	require.Equal(t, 8, without)
}

func TestPostProcess(t *testing.T) {
	opts := model.Options{Mode: model.ModeStrict, TargetLength: 200}
	res, err := PostProcess("- **학업**: 오답노트---SPLIT---성실함", opts, "gemini-1.5-flash")
	require.NoError(t, err)
	require.True(t, res.Split)
	require.Equal(t, "성실함", res.Final)
	require.Equal(t, 3, res.CharCount)
	require.Equal(t, 200, res.TargetLength)
	require.Equal(t, model.ModeStrict, res.Mode)
	require.Equal(t, "gemini-1.5-flash", res.Model)
	require.Contains(t, res.AnalysisHTML, "<strong>학업</strong>")
}

func TestPostProcessEmpty(t *testing.T) {
	_, err := PostProcess(" \n ", model.DefaultOptions(), "m")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

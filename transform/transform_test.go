package transform

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentInstructionSinglePlatform(t *testing.T) {
	instr, err := ContentInstruction("English", []string{"telegram"})
	require.NoError(t, err)
	assert.Contains(t, instr, "content_telegram")
	assert.NotContains(t, instr, "content_instagram")
	assert.NotContains(t, instr, "content_translated")
}

func TestContentInstructionAllPlatforms(t *testing.T) {
	instr, err := ContentInstruction("English", []string{"telegram", "instagram", "twitter"})
	require.NoError(t, err)
	assert.Contains(t, instr, "content_telegram")
	assert.Contains(t, instr, "content_instagram")
	assert.Contains(t, instr, "content_twitter")
	assert.Contains(t, instr, "content_translated")
}

func TestContentInstructionDedupes(t *testing.T) {
	instr, err := ContentInstruction("English", []string{"twitter", "twitter"})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(instr, "content_twitter"))
	assert.NotContains(t, instr, "content_translated")
}

func TestContentInstructionUnknownPlatform(t *testing.T) {
	_, err := ContentInstruction("English", []string{"myspace"})
	assert.Error(t, err)
}

func TestContentInstructionEmpty(t *testing.T) {
	_, err := ContentInstruction("English", nil)
	assert.Error(t, err)
}

func TestTitleResultDecode(t *testing.T) {
	raw := `{"title_translated":"Chip fabs expand in Arizona","quality_score":8.5}`
	var out TitleResult
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Equal(t, "Chip fabs expand in Arizona", out.TitleTranslated)
	assert.InDelta(t, 8.5, out.QualityScore, 0.001)
}

func TestContentResultPartialDecode(t *testing.T) {
	raw := `{"content_telegram":"short form"}`
	var out ContentResult
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	assert.Equal(t, "short form", out.ContentTelegram)
	assert.Empty(t, out.ContentTranslated)
}

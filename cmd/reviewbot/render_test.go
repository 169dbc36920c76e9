package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewTextWithTranslation(t *testing.T) {
	post := reviewPost()
	text := reviewText(post)

	assert.Contains(t, text, "Original title")
	assert.Contains(t, text, "Titre original")
	assert.Contains(t, text, "8.0/10")
	assert.Contains(t, text, "https://ex.com/a")
}

func TestReviewTextWithoutTranslation(t *testing.T) {
	post := reviewPost()
	post.Translations = nil
	text := reviewText(post)

	assert.Contains(t, text, "Titre original")
	assert.NotContains(t, text, "Score")
}

func TestFinalApprovalTextPrefersTelegramVariant(t *testing.T) {
	post := reviewPost()
	post.Translations[0].ContentTelegram = "telegram body"
	post.Translations[0].ContentTranslated = "full body"

	text := finalApprovalText(post)
	assert.Contains(t, text, "telegram body")
	assert.NotContains(t, text, "full body")
}

func TestFinalApprovalTextClipsLongContent(t *testing.T) {
	post := reviewPost()
	post.Translations[0].ContentTranslated = strings.Repeat("x", 2000)

	text := finalApprovalText(post)
	assert.Less(t, len(text), 1200)
	assert.Contains(t, text, "…")
}

func TestReviewKeyboardLayout(t *testing.T) {
	post := reviewPost()
	kb := reviewKeyboard(post)

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 3)
	assert.Len(t, kb.InlineKeyboard[1], 2)

	// every button decodes back to a valid action
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			require.NotNil(t, btn.CallbackData)
			_, err := DecodeCallback(*btn.CallbackData)
			assert.NoError(t, err, *btn.CallbackData)
		}
	}
}

func TestFinalApprovalKeyboardLayout(t *testing.T) {
	post := reviewPost()
	kb := finalApprovalKeyboard(post)

	require.Len(t, kb.InlineKeyboard, 2)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 3)

	cb, err := DecodeCallback(*kb.InlineKeyboard[0][0].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, ActionFinalApprove, cb.Action)

	cb, err = DecodeCallback(*kb.InlineKeyboard[1][0].CallbackData)
	require.NoError(t, err)
	assert.Equal(t, ActionProcess, cb.Action)
}

func TestProgressKeyboardFollowsRound(t *testing.T) {
	post := reviewPost()
	assert.Equal(t, reviewKeyboard(post), progressKeyboard(post))

	post.Translations[0].ContentTwitter = "tweet variant"
	assert.Equal(t, finalApprovalKeyboard(post), progressKeyboard(post))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\_b \\*c\\* \\[d] \\`e\\`", escapeMarkdown("a_b *c* [d] `e`"))
}

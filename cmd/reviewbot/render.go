package main

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newswire/models"
)

// reviewText renders the first-round review message for one post.
func reviewText(detail *models.PostDetail) string {
	var b strings.Builder

	if tr := firstTranslation(detail); tr != nil && tr.TitleTranslated != "" {
		fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(tr.TitleTranslated))
		fmt.Fprintf(&b, "_%s_\n", escapeMarkdown(detail.TitleOriginal))
		fmt.Fprintf(&b, "\nScore: %.1f/10\n", tr.Score)
	} else {
		fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(detail.TitleOriginal))
	}

	fmt.Fprintf(&b, "\n%s", detail.URLOriginal)
	return b.String()
}

// finalApprovalText renders the second-round message shown once the
// platform variants exist.
func finalApprovalText(detail *models.PostDetail) string {
	var b strings.Builder

	title := detail.TitleOriginal
	if tr := firstTranslation(detail); tr != nil && tr.TitleTranslated != "" {
		title = tr.TitleTranslated
	}
	fmt.Fprintf(&b, "*%s*\n\n", escapeMarkdown(title))

	if tr := firstTranslation(detail); tr != nil {
		if tr.ContentTelegram != "" {
			fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(clip(tr.ContentTelegram, 800)))
		} else if tr.ContentTranslated != "" {
			fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(clip(tr.ContentTranslated, 800)))
		}
	}

	b.WriteString("Content is ready. Approve for publishing?")
	return b.String()
}

func reviewKeyboard(detail *models.PostDetail) tgbotapi.InlineKeyboardMarkup {
	platformRow := make([]tgbotapi.InlineKeyboardButton, 0, len(models.ContentPlatforms))
	for _, p := range models.ContentPlatforms {
		platformRow = append(platformRow, tgbotapi.NewInlineKeyboardButtonData(
			titleCase(p), EncodeProcess(detail.ID, []string{p})))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		platformRow,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 All platforms", EncodeProcess(detail.ID, models.ContentPlatforms)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", EncodeReject(detail.ID)),
		),
	)
}

func finalApprovalKeyboard(detail *models.PostDetail) tgbotapi.InlineKeyboardMarkup {
	reprocessRow := make([]tgbotapi.InlineKeyboardButton, 0, len(models.ContentPlatforms))
	for _, p := range models.ContentPlatforms {
		reprocessRow = append(reprocessRow, tgbotapi.NewInlineKeyboardButtonData(
			"🔄 "+titleCase(p), EncodeProcess(detail.ID, []string{p})))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", EncodeFinalApprove(detail.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", EncodeReject(detail.ID)),
		),
		reprocessRow,
	)
}

// progressKeyboard picks the keyboard matching the post's current round:
// once platform variants exist the press came from the final approval
// message, which must keep its approve button.
func progressKeyboard(detail *models.PostDetail) tgbotapi.InlineKeyboardMarkup {
	if tr := firstTranslation(detail); tr != nil &&
		(tr.ContentTelegram != "" || tr.ContentInstagram != "" || tr.ContentTwitter != "") {
		return finalApprovalKeyboard(detail)
	}
	return reviewKeyboard(detail)
}

func firstTranslation(detail *models.PostDetail) *models.PostTranslation {
	if len(detail.Translations) == 0 {
		return nil
	}
	return &detail.Translations[0]
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newswire/models"
)

// TelegramPublisher posts to public channels. Each destination carries its
// own bot_token and chat_id credentials; bots are cached per token.
type TelegramPublisher struct {
	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI

	// newBot is swappable in tests
	newBot func(token string) (*tgbotapi.BotAPI, error)
}

func NewTelegramPublisher() *TelegramPublisher {
	return &TelegramPublisher{
		bots:   make(map[string]*tgbotapi.BotAPI),
		newBot: tgbotapi.NewBotAPI,
	}
}

func (p *TelegramPublisher) Deliver(ctx context.Context, dest models.Destination, detail *models.PostDetail) error {
	token := dest.Credentials["bot_token"]
	chatIDRaw := dest.Credentials["chat_id"]
	if token == "" || chatIDRaw == "" {
		return fmt.Errorf("destination %s is missing bot_token or chat_id", dest.Name)
	}

	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		return fmt.Errorf("destination %s has invalid chat_id: %w", dest.Name, err)
	}

	bot, err := p.bot(token)
	if err != nil {
		return err
	}

	tr := translationFor(detail, dest.Language)
	if tr == nil {
		return fmt.Errorf("post %s has no translation for language %s", detail.ID.Hex(), dest.Language)
	}

	text := tr.ContentTelegram
	if text == "" {
		text = tr.ContentTranslated
	}
	if text == "" {
		return fmt.Errorf("post %s has no deliverable content for telegram", detail.ID.Hex())
	}
	if tr.TitleTranslated != "" {
		text = fmt.Sprintf("%s\n\n%s", tr.TitleTranslated, text)
	}

	if tr.FeaturedImageURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(tr.FeaturedImageURL))
		photo.Caption = clipRunes(text, 1024)
		if _, err := bot.Send(photo); err == nil {
			return nil
		}
		// image rejected; fall through to a text post
	}

	msg := tgbotapi.NewMessage(chatID, clipRunes(text, 4096))
	_, err = bot.Send(msg)
	return err
}

func (p *TelegramPublisher) bot(token string) (*tgbotapi.BotAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if bot, ok := p.bots[token]; ok {
		return bot, nil
	}
	bot, err := p.newBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	p.bots[token] = bot
	return bot, nil
}

// translationFor returns the translation matching the destination language,
// or the first one as fallback.
func translationFor(detail *models.PostDetail, language string) *models.PostTranslation {
	for i := range detail.Translations {
		if detail.Translations[i].Language == language {
			return &detail.Translations[i]
		}
	}
	if len(detail.Translations) > 0 {
		return &detail.Translations[0]
	}
	return nil
}

func clipRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

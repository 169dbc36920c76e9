package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/client"
	"newswire/config"
	"newswire/eventbus"
	"newswire/events"
	"newswire/models"
)

type managementAPI interface {
	GetPost(ctx context.Context, id primitive.ObjectID) (*models.PostDetail, error)
	SaveAdminMessages(ctx context.Context, id primitive.ObjectID, handles map[int64]int) error
	MarkPending(ctx context.Context, id primitive.ObjectID) error
	ClearAdminMessages(ctx context.Context, id primitive.ObjectID) error
	Approve(ctx context.Context, id primitive.ObjectID) error
	Reject(ctx context.Context, id primitive.ObjectID) (*client.RejectResult, error)
	RequestContentProcessing(ctx context.Context, id primitive.ObjectID, platforms []string) error
}

// telegramSender is the slice of tgbotapi.BotAPI the service uses, kept
// small so tests can fake it.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ReviewBot drives the Telegram approval surfaces: it mirrors review
// requests into every admin chat and turns button presses back into
// pipeline state changes.
type ReviewBot struct {
	sender  telegramSender
	api     managementAPI
	bus     eventbus.EventBus
	chatIDs []int64
}

func NewReviewBot(sender telegramSender, api managementAPI, bus eventbus.EventBus, chatIDs []int64) *ReviewBot {
	return &ReviewBot{
		sender:  sender,
		api:     api,
		bus:     bus,
		chatIDs: chatIDs,
	}
}

// HandleReviewRequested mirrors the first-round review message into every
// admin chat, records the message handles, then parks the post as pending.
func (b *ReviewBot) HandleReviewRequested(ctx context.Context, payload events.ReviewRequestedPayload) error {
	if err := payload.Validate(); err != nil {
		config.Logger.Warnf("dropping malformed review event: %v", err)
		return nil
	}

	detail, err := b.api.GetPost(ctx, payload.PostID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			config.Logger.Warnf("dropping review event for missing post %s", payload.PostID.Hex())
			return nil
		}
		return err
	}

	text := reviewText(detail)
	keyboard := reviewKeyboard(detail)

	handles := make(map[int64]int, len(b.chatIDs))
	for _, chatID := range b.chatIDs {
		msgID, err := b.sendReviewMessage(chatID, detail, text, keyboard)
		if err != nil {
			config.Logger.Errorf("failed to send review message to chat %d: %v", chatID, err)
			continue
		}
		handles[chatID] = msgID
	}

	if len(handles) == 0 {
		return errors.New("review message could not be delivered to any admin chat")
	}

	if err := b.api.SaveAdminMessages(ctx, detail.ID, handles); err != nil {
		return err
	}

	if err := b.api.MarkPending(ctx, detail.ID); err != nil {
		return err
	}

	config.Logger.Infof("review requested for post %s in %d chats", detail.ID.Hex(), len(handles))
	return nil
}

// sendReviewMessage prefers a photo message when a featured image exists,
// falling back to plain text when Telegram rejects the image.
func (b *ReviewBot) sendReviewMessage(chatID int64, detail *models.PostDetail, text string, keyboard tgbotapi.InlineKeyboardMarkup) (int, error) {
	if tr := firstTranslation(detail); tr != nil && tr.FeaturedImageURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(tr.FeaturedImageURL))
		photo.Caption = text
		photo.ParseMode = "Markdown"
		photo.ReplyMarkup = keyboard

		if sent, err := b.sender.Send(photo); err == nil {
			return sent.MessageID, nil
		}
		// bad or oversized image; retry as text
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	msg.DisableWebPagePreview = false

	sent, err := b.sender.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// HandleFinalApproval rewrites every recorded review message into the
// final approval round.
func (b *ReviewBot) HandleFinalApproval(ctx context.Context, payload events.FinalApprovalPayload) error {
	if err := payload.Validate(); err != nil {
		config.Logger.Warnf("dropping malformed final approval event: %v", err)
		return nil
	}

	detail, err := b.api.GetPost(ctx, payload.PostID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			config.Logger.Warnf("dropping final approval event for missing post %s", payload.PostID.Hex())
			return nil
		}
		return err
	}

	text := finalApprovalText(detail)
	keyboard := finalApprovalKeyboard(detail)

	for chatID, msgID := range detail.AdminMessages {
		b.editMessage(chatID, msgID, text, keyboard)
	}

	// back to pending so the approve and reprocess buttons are legal again
	if err := b.api.MarkPending(ctx, detail.ID); err != nil {
		return err
	}

	config.Logger.Infof("final approval requested for post %s", detail.ID.Hex())
	return nil
}

// editMessage tries a caption edit first (photo messages have no text),
// then a text edit. Telegram answering "message is not modified" counts
// as success.
func (b *ReviewBot) editMessage(chatID int64, msgID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	caption := tgbotapi.NewEditMessageCaption(chatID, msgID, text)
	caption.ParseMode = "Markdown"
	caption.ReplyMarkup = &keyboard
	if _, err := b.sender.Send(caption); err == nil || benignEditError(err) {
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = "Markdown"
	edit.ReplyMarkup = &keyboard
	if _, err := b.sender.Send(edit); err != nil && !benignEditError(err) {
		config.Logger.Errorf("failed to edit message %d in chat %d: %v", msgID, chatID, err)
	}
}

func benignEditError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// HandlePostRejected retracts the review messages everywhere. Messages
// already gone are fine.
func (b *ReviewBot) HandlePostRejected(ctx context.Context, payload events.PostRejectedPayload) error {
	if err := payload.Validate(); err != nil {
		config.Logger.Warnf("dropping malformed rejection event: %v", err)
		return nil
	}

	for chatID, msgID := range payload.AdminMessages {
		del := tgbotapi.NewDeleteMessage(chatID, msgID)
		if _, err := b.sender.Request(del); err != nil {
			config.Logger.Warnf("failed to delete message %d in chat %d: %v", msgID, chatID, err)
		}
	}

	// the handles point at deleted messages now, drop them
	if err := b.api.ClearAdminMessages(ctx, payload.PostID); err != nil {
		return err
	}

	config.Logger.Infof("retracted review messages for post %s", payload.PostID.Hex())
	return nil
}

// HandleCallback reacts to one inline keyboard press.
func (b *ReviewBot) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	cb, err := DecodeCallback(query.Data)
	if err != nil {
		config.Logger.Warnf("ignoring callback: %v", err)
		b.answerCallback(query.ID, "Unrecognized action")
		return
	}

	switch cb.Action {
	case ActionReject:
		err = b.handleReject(ctx, cb)
	case ActionProcess:
		err = b.handleProcess(ctx, cb, query)
	case ActionFinalApprove:
		err = b.handleFinalApprove(ctx, cb, query)
	}

	if err != nil {
		config.Logger.Errorf("callback %s failed for post %s: %v", cb.Action, cb.PostID.Hex(), err)
		b.answerCallback(query.ID, "Action failed, try again")
		return
	}

	b.answerCallback(query.ID, "Done")
}

func (b *ReviewBot) handleReject(ctx context.Context, cb Callback) error {
	result, err := b.api.Reject(ctx, cb.PostID)
	if err != nil {
		return err
	}

	// retraction happens via the rejection queue so every replica and
	// chat gets cleaned up
	evt, err := eventbus.NewJSONEvent("", events.PostRejectedPayload{
		PostID:        cb.PostID,
		AdminMessages: result.AdminMessages,
	}, 0)
	if err != nil {
		return err
	}
	return b.bus.Publish(ctx, eventbus.TopicPostRejected.Base(), evt)
}

func (b *ReviewBot) handleProcess(ctx context.Context, cb Callback, query *tgbotapi.CallbackQuery) error {
	if err := b.api.RequestContentProcessing(ctx, cb.PostID, cb.Platforms); err != nil {
		return err
	}

	evt, err := eventbus.NewJSONEvent("", events.ContentProcessingPayload{
		PostID:    cb.PostID,
		Platforms: cb.Platforms,
	}, 0)
	if err != nil {
		return err
	}
	if err := b.bus.Publish(ctx, eventbus.TopicContentProcessing.Base(), evt); err != nil {
		return err
	}

	// optimistic progress note; the keyboard of the current round stays so
	// other actions (or a re-request) remain possible
	if query.Message != nil {
		text := fmt.Sprintf("⏳ Generating content (%s)…", strings.Join(cb.Platforms, ", "))
		if detail, err := b.api.GetPost(ctx, cb.PostID); err == nil {
			b.editMessage(query.Message.Chat.ID, query.Message.MessageID, text, progressKeyboard(detail))
		}
	}
	return nil
}

func (b *ReviewBot) handleFinalApprove(ctx context.Context, cb Callback, query *tgbotapi.CallbackQuery) error {
	if err := b.api.Approve(ctx, cb.PostID); err != nil {
		return err
	}

	evt, err := eventbus.NewJSONEvent("", events.PostApprovedPayload{PostID: cb.PostID}, 0)
	if err != nil {
		return err
	}
	if err := b.bus.Publish(ctx, eventbus.TopicPostApproval.Base(), evt); err != nil {
		return err
	}

	// terminal edit, no buttons left
	if query.Message != nil {
		empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
		b.editMessage(query.Message.Chat.ID, query.Message.MessageID, "✅ Approved for publishing", empty)
	}
	return nil
}

func (b *ReviewBot) answerCallback(callbackID, text string) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.sender.Request(cb); err != nil {
		config.Logger.Warnf("failed to answer callback: %v", err)
	}
}

// allowedChat guards the callback loop against buttons forwarded outside
// the admin chats.
func (b *ReviewBot) allowedChat(chatID int64) bool {
	for _, id := range b.chatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

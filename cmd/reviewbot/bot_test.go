package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/client"
	"newswire/eventbus"
	"newswire/events"
	"newswire/models"
)

type fakeSender struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	sendErr   error
	nextMsgID int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	f.nextMsgID++
	return tgbotapi.Message{MessageID: f.nextMsgID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type fakeAPI struct {
	post *models.PostDetail

	savedHandles map[int64]int
	pending      []primitive.ObjectID
	cleared      []primitive.ObjectID
	approved     []primitive.ObjectID
	rejected     []primitive.ObjectID
	processed    [][]string

	rejectResult *client.RejectResult
	approveErr   error
}

func (f *fakeAPI) GetPost(ctx context.Context, id primitive.ObjectID) (*models.PostDetail, error) {
	return f.post, nil
}

func (f *fakeAPI) SaveAdminMessages(ctx context.Context, id primitive.ObjectID, handles map[int64]int) error {
	f.savedHandles = handles
	return nil
}

func (f *fakeAPI) MarkPending(ctx context.Context, id primitive.ObjectID) error {
	f.pending = append(f.pending, id)
	return nil
}

func (f *fakeAPI) ClearAdminMessages(ctx context.Context, id primitive.ObjectID) error {
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeAPI) Approve(ctx context.Context, id primitive.ObjectID) error {
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeAPI) Reject(ctx context.Context, id primitive.ObjectID) (*client.RejectResult, error) {
	f.rejected = append(f.rejected, id)
	return f.rejectResult, nil
}

func (f *fakeAPI) RequestContentProcessing(ctx context.Context, id primitive.ObjectID, platforms []string) error {
	f.processed = append(f.processed, platforms)
	return nil
}

type fakeBus struct {
	published []string
	events    []eventbus.Event
}

func (f *fakeBus) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	f.published = append(f.published, topic)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context, groupID string, topic eventbus.Topic, handler eventbus.EventHandler) error {
	return nil
}

func (f *fakeBus) StartRetryReinjector(ctx context.Context, groupID string, topic eventbus.Topic) error {
	return nil
}

func (f *fakeBus) Close() {}

func reviewPost() *models.PostDetail {
	id := primitive.NewObjectID()
	return &models.PostDetail{
		Post: models.Post{
			ID:            id,
			TitleOriginal: "Titre original",
			URLOriginal:   "https://ex.com/a",
			Status:        models.StatusPreprocessed,
		},
		Translations: []models.PostTranslation{{
			PostID:           id,
			Language:         "English",
			TitleTranslated:  "Original title",
			Score:            8,
			FeaturedImageURL: "https://ex.com/a.jpg",
		}},
		AdminMessages: map[int64]int{100: 1, 200: 2},
	}
}

func TestHandleReviewRequested(t *testing.T) {
	post := reviewPost()
	sender := &fakeSender{}
	api := &fakeAPI{post: post}
	bus := &fakeBus{}
	bot := NewReviewBot(sender, api, bus, []int64{100, 200})

	err := bot.HandleReviewRequested(context.Background(), events.ReviewRequestedPayload{PostID: post.ID})
	require.NoError(t, err)

	// one photo message per admin chat
	assert.Len(t, sender.sent, 2)
	assert.Len(t, api.savedHandles, 2)
	assert.Equal(t, []primitive.ObjectID{post.ID}, api.pending)
}

func TestHandleReviewRequestedAllChatsFail(t *testing.T) {
	post := reviewPost()
	sender := &fakeSender{sendErr: errors.New("telegram down")}
	api := &fakeAPI{post: post}
	bot := NewReviewBot(sender, api, &fakeBus{}, []int64{100})

	err := bot.HandleReviewRequested(context.Background(), events.ReviewRequestedPayload{PostID: post.ID})
	assert.Error(t, err)
	assert.Empty(t, api.pending)
}

func TestHandleReviewRequestedDropsMalformed(t *testing.T) {
	bot := NewReviewBot(&fakeSender{}, &fakeAPI{}, &fakeBus{}, []int64{100})
	err := bot.HandleReviewRequested(context.Background(), events.ReviewRequestedPayload{})
	assert.NoError(t, err)
}

func TestHandleFinalApprovalEditsEveryChat(t *testing.T) {
	post := reviewPost()
	sender := &fakeSender{}
	api := &fakeAPI{post: post}
	bot := NewReviewBot(sender, api, &fakeBus{}, []int64{100, 200})

	err := bot.HandleFinalApproval(context.Background(), events.FinalApprovalPayload{PostID: post.ID})
	require.NoError(t, err)
	assert.Len(t, sender.sent, 2)
	// the post must be pending again or the approve and reprocess buttons
	// would hit illegal transitions
	assert.Equal(t, []primitive.ObjectID{post.ID}, api.pending)
}

func TestHandlePostRejectedDeletesMessages(t *testing.T) {
	sender := &fakeSender{}
	api := &fakeAPI{}
	bot := NewReviewBot(sender, api, &fakeBus{}, []int64{100, 200})

	postID := primitive.NewObjectID()
	err := bot.HandlePostRejected(context.Background(), events.PostRejectedPayload{
		PostID:        postID,
		AdminMessages: map[int64]int{100: 1, 200: 2},
	})
	require.NoError(t, err)
	assert.Len(t, sender.requested, 2)
	// stale handles are dropped along with the messages
	assert.Equal(t, []primitive.ObjectID{postID}, api.cleared)
}

func callbackQuery(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cbq",
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: 100},
		},
	}
}

func TestCallbackReject(t *testing.T) {
	post := reviewPost()
	sender := &fakeSender{}
	api := &fakeAPI{
		post:         post,
		rejectResult: &client.RejectResult{Post: post.Post, AdminMessages: post.AdminMessages},
	}
	bus := &fakeBus{}
	bot := NewReviewBot(sender, api, bus, []int64{100})

	bot.HandleCallback(context.Background(), callbackQuery(EncodeReject(post.ID)))

	assert.Equal(t, []primitive.ObjectID{post.ID}, api.rejected)
	require.Equal(t, []string{eventbus.TopicPostRejected.Base()}, bus.published)

	payload, err := eventbus.DecodeJSON[events.PostRejectedPayload](bus.events[0])
	require.NoError(t, err)
	assert.Equal(t, post.AdminMessages, payload.AdminMessages)
}

func TestCallbackProcess(t *testing.T) {
	post := reviewPost()
	sender := &fakeSender{}
	api := &fakeAPI{post: post}
	bus := &fakeBus{}
	bot := NewReviewBot(sender, api, bus, []int64{100})

	bot.HandleCallback(context.Background(), callbackQuery(EncodeProcess(post.ID, []string{"telegram", "twitter"})))

	require.Len(t, api.processed, 1)
	assert.Equal(t, []string{"telegram", "twitter"}, api.processed[0])
	assert.Equal(t, []string{eventbus.TopicContentProcessing.Base()}, bus.published)
	// optimistic progress edit on the pressed message
	assert.NotEmpty(t, sender.sent)
}

func TestCallbackProcessFromFinalRoundKeepsApprove(t *testing.T) {
	post := reviewPost()
	post.Translations[0].ContentTelegram = "telegram variant"
	sender := &fakeSender{}
	api := &fakeAPI{post: post}
	bot := NewReviewBot(sender, api, &fakeBus{}, []int64{100})

	bot.HandleCallback(context.Background(), callbackQuery(EncodeProcess(post.ID, []string{"telegram"})))

	require.NotEmpty(t, sender.sent)
	edit, ok := sender.sent[len(sender.sent)-1].(tgbotapi.EditMessageCaptionConfig)
	require.True(t, ok)
	require.NotNil(t, edit.ReplyMarkup)

	var datas []string
	for _, row := range edit.ReplyMarkup.InlineKeyboard {
		for _, btn := range row {
			datas = append(datas, *btn.CallbackData)
		}
	}
	assert.Contains(t, datas, EncodeFinalApprove(post.ID))
}

func TestCallbackFinalApprove(t *testing.T) {
	post := reviewPost()
	sender := &fakeSender{}
	api := &fakeAPI{post: post}
	bus := &fakeBus{}
	bot := NewReviewBot(sender, api, bus, []int64{100})

	bot.HandleCallback(context.Background(), callbackQuery(EncodeFinalApprove(post.ID)))

	assert.Equal(t, []primitive.ObjectID{post.ID}, api.approved)
	assert.Equal(t, []string{eventbus.TopicPostApproval.Base()}, bus.published)
}

func TestCallbackApproveFailureDoesNotPublish(t *testing.T) {
	post := reviewPost()
	sender := &fakeSender{}
	api := &fakeAPI{post: post, approveErr: errors.New("conflict")}
	bus := &fakeBus{}
	bot := NewReviewBot(sender, api, bus, []int64{100})

	bot.HandleCallback(context.Background(), callbackQuery(EncodeFinalApprove(post.ID)))
	assert.Empty(t, bus.published)
}

func TestAllowedChat(t *testing.T) {
	bot := NewReviewBot(&fakeSender{}, &fakeAPI{}, &fakeBus{}, []int64{100, 200})
	assert.True(t, bot.allowedChat(100))
	assert.False(t, bot.allowedChat(300))
}

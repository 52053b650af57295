package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariefcatur/go-esim-storefront/internal/catalog"
	"github.com/ariefcatur/go-esim-storefront/internal/workflow"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent is %T", f.sent[len(f.sent)-1])
	return msg
}

type fakePurchaser struct {
	calls []string
	err   error
}

func (p *fakePurchaser) InitiatePurchase(_ context.Context, _ int64, sku string) (*workflow.PurchaseResult, error) {
	p.calls = append(p.calls, sku)
	if p.err != nil {
		return nil, p.err
	}
	return &workflow.PurchaseResult{OrderID: "o-1", Link: "https://pay.example/o-1"}, nil
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 99}},
	}}
}

func keyboard(t *testing.T, msg tgbotapi.MessageConfig) tgbotapi.InlineKeyboardMarkup {
	t.Helper()
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "markup is %T", msg.ReplyMarkup)
	return kb
}

func TestParseAction(t *testing.T) {
	cat := catalog.Default()
	cases := []struct {
		data string
		want action
	}{
		{"MENU", action{kind: actionMainMenu}},
		{"MX_MENU", action{kind: actionMXMenu}},
		{"USA_MENU", action{kind: actionUSAMenu}},
		{"HORARIO", action{kind: actionInfo, text: textHours}},
		{"SOPORTE", action{kind: actionInfo, text: textSupport, plain: true}},
		{"USA_TMO_200", action{kind: actionSummary, sku: "USA_TMO_200"}},
		{"PAY:MX_ATT_56_100", action{kind: actionPay, sku: "MX_ATT_56_100"}},
		{"PAY:BOGUS", action{kind: actionPay, sku: "BOGUS"}},
		{"BOGUS", action{kind: actionUnknown}},
		{"", action{kind: actionUnknown}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseAction(tc.data, cat), tc.data)
	}
}

func TestStartCommandShowsMainMenu(t *testing.T) {
	api := &fakeAPI{}
	b := NewBot(api, &fakePurchaser{}, nil, nil)

	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/start",
		Chat:     &tgbotapi.Chat{ID: 5},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}})

	msg := api.lastMessage(t)
	assert.Equal(t, int64(5), msg.ChatID)
	assert.Equal(t, textMainMenu, msg.Text)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Len(t, keyboard(t, msg).InlineKeyboard, 7)
}

func TestCallbacksAreAlwaysAnswered(t *testing.T) {
	for _, data := range []string{"MENU", "WA", "USA_ATT_200", "PAY:USA_ATT_200", "PAY:NOPE", "garbage"} {
		t.Run(data, func(t *testing.T) {
			api := &fakeAPI{}
			NewBot(api, &fakePurchaser{}, nil, nil).HandleUpdate(context.Background(), callback(data))

			require.Len(t, api.requests, 1)
			cb, ok := api.requests[0].(tgbotapi.CallbackConfig)
			require.True(t, ok)
			assert.Equal(t, "cb-1", cb.CallbackQueryID)
		})
	}
}

func TestCallbackAnsweredWhenSendFails(t *testing.T) {
	api := &fakeAPI{sendErr: errors.New("flood wait")}
	NewBot(api, &fakePurchaser{}, nil, nil).HandleUpdate(context.Background(), callback("MX_MENU"))
	assert.Len(t, api.requests, 1)
}

func TestSummaryOffersPayButton(t *testing.T) {
	api := &fakeAPI{}
	NewBot(api, &fakePurchaser{}, nil, nil).HandleUpdate(context.Background(), callback("MX_ATT_OTHER_150"))

	msg := api.lastMessage(t)
	assert.Contains(t, msg.Text, "🇲🇽 AT&T México — Otras LADAS")
	assert.Contains(t, msg.Text, "*Total:* $150")

	kb := keyboard(t, msg)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "PAY:MX_ATT_OTHER_150", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "MENU", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestPayRepliesWithLink(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePurchaser{}
	NewBot(api, p, nil, nil).HandleUpdate(context.Background(), callback("PAY:USA_ATT_200"))

	assert.Equal(t, []string{"USA_ATT_200"}, p.calls)
	msg := api.lastMessage(t)
	assert.Equal(t, textPayLink, msg.Text)
	kb := keyboard(t, msg)
	require.NotNil(t, kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://pay.example/o-1", *kb.InlineKeyboard[0][0].URL)
}

func TestPayInvalidSKU(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePurchaser{err: workflow.ErrInvalidSKU}
	NewBot(api, p, nil, nil).HandleUpdate(context.Background(), callback("PAY:NOPE"))

	assert.Equal(t, textInvalidSKU, api.lastMessage(t).Text)
}

func TestPayGatewayFailure(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePurchaser{err: workflow.ErrGatewayUnavailable}
	NewBot(api, p, nil, nil).HandleUpdate(context.Background(), callback("PAY:USA_ATT_200"))

	assert.Equal(t, textPayFailed, api.lastMessage(t).Text)
}

func TestChannel(t *testing.T) {
	api := &fakeAPI{}
	ch := NewChannel(api)
	ctx := context.Background()

	require.NoError(t, ch.SendText(ctx, 3, "*hola*"))
	require.NoError(t, ch.SendImage(ctx, 3, "assets/a.png", "cap"))
	require.Len(t, api.sent, 2)

	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)

	photo := api.sent[1].(tgbotapi.PhotoConfig)
	assert.Equal(t, int64(3), photo.ChatID)
	assert.Equal(t, tgbotapi.FilePath("assets/a.png"), photo.File)
	assert.Equal(t, "cap", photo.Caption)

	api.sendErr = errors.New("blocked")
	assert.ErrorContains(t, ch.SendText(ctx, 3, "x"), "blocked")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, ch.SendImage(cancelled, 3, "a", ""), context.Canceled)
}

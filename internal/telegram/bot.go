package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-esim-storefront/internal/catalog"
	"github.com/ariefcatur/go-esim-storefront/internal/workflow"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Purchaser starts a purchase for a buyer.
type Purchaser interface {
	InitiatePurchase(ctx context.Context, chatID int64, sku string) (*workflow.PurchaseResult, error)
}

type actionKind int

const (
	actionUnknown actionKind = iota
	actionMainMenu
	actionMXMenu
	actionUSAMenu
	actionInfo
	actionSummary
	actionPay
)

type action struct {
	kind  actionKind
	text  string // info reply
	plain bool   // info reply without Markdown
	sku   string
}

var fixedActions = map[string]action{
	dataMenu:    {kind: actionMainMenu},
	dataMXMenu:  {kind: actionMXMenu},
	dataUSAMenu: {kind: actionUSAMenu},
	dataHours:   {kind: actionInfo, text: textHours},
	dataWA:      {kind: actionInfo, text: textWA},
	dataSupport: {kind: actionInfo, text: textSupport, plain: true},
	dataUnlock:  {kind: actionInfo, text: textUnlock},
	dataBug:     {kind: actionInfo, text: textBug},
}

// parseAction maps callback data to an action. A bare SKU opens its summary;
// "PAY:<sku>" starts a purchase, with the SKU checked later by the workflow.
func parseAction(data string, cat *catalog.Catalog) action {
	if a, ok := fixedActions[data]; ok {
		return a
	}
	if sku, ok := strings.CutPrefix(data, payPrefix); ok {
		return action{kind: actionPay, sku: sku}
	}
	if _, err := cat.Lookup(data); err == nil {
		return action{kind: actionSummary, sku: data}
	}
	return action{kind: actionUnknown}
}

type actionHandler func(b *Bot, ctx context.Context, chatID int64, a action) error

var actionHandlers = map[actionKind]actionHandler{
	actionMainMenu: func(b *Bot, _ context.Context, chatID int64, _ action) error {
		return b.reply(chatID, textMainMenu, mainMenuKeyboard())
	},
	actionMXMenu: func(b *Bot, _ context.Context, chatID int64, _ action) error {
		return b.reply(chatID, textMXMenu, mxMenuKeyboard())
	},
	actionUSAMenu: func(b *Bot, _ context.Context, chatID int64, _ action) error {
		return b.reply(chatID, textUSAMenu, usaMenuKeyboard())
	},
	actionInfo: func(b *Bot, _ context.Context, chatID int64, a action) error {
		if a.plain {
			return b.replyPlain(chatID, a.text, nil)
		}
		return b.reply(chatID, a.text, nil)
	},
	actionSummary: (*Bot).showSummary,
	actionPay:     (*Bot).pay,
}

type Bot struct {
	api       API
	purchaser Purchaser
	catalog   *catalog.Catalog
	log       *zap.Logger
}

func NewBot(api API, purchaser Purchaser, cat *catalog.Catalog, log *zap.Logger) *Bot {
	if cat == nil {
		cat = catalog.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{api: api, purchaser: purchaser, catalog: cat, log: log.With(zap.String("component", "telegram_bot"))}
}

// Run handles updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			go b.HandleUpdate(ctx, u)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("update_panic", zap.Int("update_id", u.UpdateID), zap.Any("panic", r))
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.Chat != nil && u.Message.IsCommand() && u.Message.Command() == "start":
		if err := actionHandlers[actionMainMenu](b, ctx, u.Message.Chat.ID, action{}); err != nil {
			b.log.Warn("reply_failed", zap.String("command", "start"), zap.Error(err))
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Always clear the button spinner, whatever the action did.
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			b.log.Debug("answer_callback_failed", zap.Error(err))
		}
	}()

	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID
	a := parseAction(q.Data, b.catalog)
	h, ok := actionHandlers[a.kind]
	if !ok {
		b.log.Debug("unknown_callback", zap.String("data", q.Data))
		return
	}
	if err := h(b, ctx, chatID, a); err != nil {
		b.log.Warn("callback_failed",
			zap.String("data", q.Data),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

func (b *Bot) showSummary(_ context.Context, chatID int64, a action) error {
	p, err := b.catalog.Lookup(a.sku)
	if err != nil {
		return b.replyPlain(chatID, textInvalidSKU, nil)
	}
	title, ok := summaryTitles[p.SKU]
	if !ok {
		title = p.Title
	}
	return b.reply(chatID, summaryText(title, p.Price.String()), summaryKeyboard(p.SKU))
}

func (b *Bot) pay(ctx context.Context, chatID int64, a action) error {
	res, err := b.purchaser.InitiatePurchase(ctx, chatID, a.sku)
	switch {
	case errors.Is(err, workflow.ErrInvalidSKU):
		return b.replyPlain(chatID, textInvalidSKU, nil)
	case err != nil:
		if rerr := b.replyPlain(chatID, textPayFailed, nil); rerr != nil {
			b.log.Warn("reply_failed", zap.Error(rerr))
		}
		return fmt.Errorf("initiate purchase %s: %w", a.sku, err)
	}
	return b.replyPlain(chatID, textPayLink, payKeyboard(res.Link))
}

// reply sends a Markdown message; markup may be nil.
func (b *Bot) reply(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.send(msg, markup)
}

func (b *Bot) replyPlain(chatID int64, text string, markup any) error {
	return b.send(tgbotapi.NewMessage(chatID, text), markup)
}

func (b *Bot) send(msg tgbotapi.MessageConfig, markup any) error {
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}

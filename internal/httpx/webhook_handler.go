package httpx

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/ariefcatur/go-esim-storefront/internal/logging"
	"github.com/ariefcatur/go-esim-storefront/internal/workflow"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// NotificationHandler is the workflow side of the payment webhook.
type NotificationHandler interface {
	HandlePaymentNotification(ctx context.Context, n workflow.Notification) workflow.Outcome
}

type WebhookHandler struct {
	Workflow NotificationHandler
	// Timeout bounds one notification. Processing is detached from the
	// request so a provider hang-up cannot abort a half-done approval.
	Timeout time.Duration
}

func (h *WebhookHandler) Register(r chi.Router) {
	r.Post("/payment/webhook", h.paymentWebhook)
	r.Post("/mp/webhook", h.paymentWebhook)
}

// paymentWebhook always answers 200; the provider redelivers anything else.
func (h *WebhookHandler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("webhook_body_read_failed", zap.Error(err))
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeout)
	defer cancel()

	out := h.Workflow.HandlePaymentNotification(ctx, workflow.Notification{
		Body:  body,
		Query: r.URL.Query(),
	})
	logger.Debug("webhook_acknowledged", zap.String("outcome", string(out)))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

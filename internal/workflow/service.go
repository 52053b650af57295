// Package workflow runs the purchase lifecycle: pending order, payment link,
// payment confirmation, stock allocation and delivery.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ariefcatur/go-esim-storefront/internal/catalog"
	"github.com/ariefcatur/go-esim-storefront/internal/config"
	"github.com/ariefcatur/go-esim-storefront/internal/logging"
	"github.com/ariefcatur/go-esim-storefront/internal/metrics"
	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrInvalidSKU           = catalog.ErrInvalidSKU
	ErrConfigurationMissing = config.ErrConfigurationMissing
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	errInvalidTransition    = errors.New("invalid status transition")
)

const (
	tracerName              = "github.com/ariefcatur/go-esim-storefront/internal/workflow"
	spanPurchase            = "Workflow.InitiatePurchase"
	spanPaymentNotification = "Workflow.HandlePaymentNotification"

	operationPurchase     = "initiate_purchase"
	operationNotification = "payment_notification"
)

// Delivery sends messages to a buyer's chat.
type Delivery interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendImage(ctx context.Context, chatID int64, path, caption string) error
}

// Deduper remembers payment ids whose approval has already been handled.
type Deduper interface {
	Seen(ctx context.Context, paymentID string) (bool, error)
	Mark(ctx context.Context, paymentID string) error
}

type Deps struct {
	Catalog   *catalog.Catalog
	Orders    orders.OrderLedger
	Stock     orders.StockLedger
	Gateway   orders.Gateway
	Delivery  Delivery
	Publisher orders.Publisher // optional
	Dedup     Deduper          // optional

	WebhookURL string
	AssetDir   string
	Producer   string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

type Service struct {
	catalog   *catalog.Catalog
	orders    orders.OrderLedger
	stock     orders.StockLedger
	gateway   orders.Gateway
	delivery  Delivery
	publisher orders.Publisher
	dedup     Deduper
	locks     *KeyedMutex

	webhookURL string
	assetDir   string
	producer   string

	log     *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func New(d Deps) *Service {
	s := &Service{
		catalog:    d.Catalog,
		orders:     d.Orders,
		stock:      d.Stock,
		gateway:    d.Gateway,
		delivery:   d.Delivery,
		publisher:  d.Publisher,
		dedup:      d.Dedup,
		locks:      NewKeyedMutex(),
		webhookURL: d.WebhookURL,
		assetDir:   d.AssetDir,
		producer:   d.Producer,
		log:        d.Logger,
		metrics:    d.Metrics,
		tracer:     d.Tracer,
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.producer == "" {
		s.producer = "storefront"
	}
	s.log = s.log.With(zap.String("component", "workflow"))
	return s
}

type PurchaseResult struct {
	OrderID string
	Link    string
	Product catalog.Product
}

// InitiatePurchase creates a pending order for sku and returns the payment
// link the buyer should follow.
func (s *Service) InitiatePurchase(ctx context.Context, chatID int64, sku string) (_ *PurchaseResult, err error) {
	ctx, span := s.tracer.Start(ctx, spanPurchase,
		trace.WithAttributes(
			attribute.String("order.sku", sku),
			attribute.Int64("buyer.chat_id", chatID),
		),
	)
	start := time.Now()
	outcome := "ok"
	var orderID string
	logger := logging.FromContextOr(ctx, s.log)

	defer func() {
		lat := time.Since(start).Seconds()
		s.metrics.Purchases.WithLabelValues(outcome).Inc()
		s.metrics.Duration.WithLabelValues(operationPurchase).Observe(lat)

		fields := []zap.Field{
			zap.String("outcome", outcome),
			zap.String("sku", sku),
			zap.Int64("chat_id", chatID),
			zap.Float64("latency_seconds", lat),
		}
		if orderID != "" {
			fields = append(fields, zap.String("order_id", orderID))
			span.SetAttributes(attribute.String("order.id", orderID))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			logger.Warn("purchase_initiated", fields...)
		} else {
			span.SetStatus(codes.Ok, outcome)
			logger.Info("purchase_initiated", fields...)
		}
		span.End()
	}()

	product, err := s.catalog.Lookup(sku)
	if err != nil {
		outcome = "invalid_sku"
		return nil, err
	}
	if s.webhookURL == "" {
		outcome = "config_missing"
		return nil, fmt.Errorf("%w: BASE_URL", ErrConfigurationMissing)
	}

	o, err := s.orders.Create(ctx, orders.NewOrder{
		ChatID: chatID,
		SKU:    product.SKU,
		Title:  product.Title,
		Price:  product.Price,
	})
	if err != nil {
		outcome = "ledger_error"
		return nil, fmt.Errorf("workflow: create order: %w", err)
	}
	orderID = o.ID

	link, err := s.gateway.CreateLink(ctx, o, s.webhookURL)
	if err != nil {
		outcome = "gateway_error"
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	s.publish(ctx, logger, orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
		OrderID: o.ID,
		ChatID:  o.ChatID,
		SKU:     o.SKU,
		Price:   o.Price.String(),
	})

	return &PurchaseResult{OrderID: o.ID, Link: link, Product: product}, nil
}

// HandlePaymentNotification processes one webhook delivery. It never fails:
// every error ends as a logged outcome so the caller can always acknowledge.
func (s *Service) HandlePaymentNotification(ctx context.Context, n Notification) (outcome Outcome) {
	ctx, span := s.tracer.Start(ctx, spanPaymentNotification)
	start := time.Now()
	var (
		paymentID string
		orderID   string
		err       error
	)
	logger := logging.FromContextOr(ctx, s.log)

	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeInternalError
			err = fmt.Errorf("workflow: panic: %v", r)
		}
		lat := time.Since(start).Seconds()
		s.metrics.Notifications.WithLabelValues(string(outcome)).Inc()
		s.metrics.Duration.WithLabelValues(operationNotification).Observe(lat)

		span.SetAttributes(
			attribute.String("payment.id", paymentID),
			attribute.String("order.id", orderID),
			attribute.String("outcome", string(outcome)),
		)
		fields := []zap.Field{
			zap.String("outcome", string(outcome)),
			zap.Float64("latency_seconds", lat),
		}
		if paymentID != "" {
			fields = append(fields, zap.String("payment_id", paymentID))
		}
		if orderID != "" {
			fields = append(fields, zap.String("order_id", orderID))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, string(outcome))
			logger.Error("payment_notification_done", fields...)
		} else {
			span.SetStatus(codes.Ok, string(outcome))
			logger.Info("payment_notification_done", fields...)
		}
		span.End()
	}()

	paymentID = ExtractPaymentID(n)
	if paymentID == "" {
		return OutcomeNoPaymentID
	}

	if s.dedup != nil {
		seen, derr := s.dedup.Seen(ctx, paymentID)
		if derr != nil {
			logger.Warn("dedup_lookup_failed", zap.String("payment_id", paymentID), zap.Error(derr))
		} else if seen {
			return OutcomeDuplicate
		}
	}

	payment, gerr := s.gateway.GetPayment(ctx, paymentID)
	if gerr != nil {
		err = fmt.Errorf("%w: %w", ErrGatewayUnavailable, gerr)
		return OutcomeGatewayError
	}
	orderID = payment.ExternalReference
	if orderID == "" {
		return OutcomeNoReference
	}
	if !payment.Approved() {
		span.SetAttributes(attribute.String("payment.status", payment.Status))
		return OutcomeNotApproved
	}

	outcome, err = s.approve(ctx, logger.With(zap.String("order_id", orderID)), orderID, paymentID)
	if outcome.settled() && s.dedup != nil {
		if merr := s.dedup.Mark(ctx, paymentID); merr != nil {
			logger.Warn("dedup_mark_failed", zap.String("payment_id", paymentID), zap.Error(merr))
		}
	}
	return outcome
}

// approve moves the order to approved and fulfils it. The per-order lock
// covers the status check, the transition and the stock take, so a repeated
// or concurrent notification for the same order cannot allocate twice.
func (s *Service) approve(ctx context.Context, logger *zap.Logger, orderID, paymentID string) (Outcome, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	o, err := s.orders.Get(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		return OutcomeOrderNotFound, nil
	}
	if err != nil {
		return OutcomeInternalError, fmt.Errorf("workflow: load order: %w", err)
	}
	if o.Status == orders.StatusApproved {
		return OutcomeAlreadyApproved, nil
	}
	if !orders.CanTransition(o.Status, orders.StatusApproved) {
		return OutcomeInvalidTransition, fmt.Errorf("workflow: %w: %s -> %s", errInvalidTransition, o.Status, orders.StatusApproved)
	}

	o, err = s.orders.Update(ctx, orderID, orders.Patch{Status: orders.StatusApproved, PaymentID: paymentID})
	if errors.Is(err, orders.ErrNotFound) {
		return OutcomeOrderNotFound, nil
	}
	if err != nil {
		return OutcomeInternalError, fmt.Errorf("workflow: approve order: %w", err)
	}
	s.publish(ctx, logger, orders.EventPaymentApproved, o.ID, orders.PaymentApprovedPayload{
		OrderID:   o.ID,
		PaymentID: paymentID,
		ChatID:    o.ChatID,
		SKU:       o.SKU,
		Price:     o.Price.String(),
	})

	item, err := s.stock.Take(ctx, o.SKU)
	if err != nil {
		outOfStock := errors.Is(err, orders.ErrOutOfStock)
		result := "out_of_stock"
		if !outOfStock {
			result = "error"
		}
		s.metrics.Allocations.WithLabelValues(o.SKU, result).Inc()

		if serr := s.delivery.SendText(ctx, o.ChatID, msgOutOfStock); serr != nil {
			logger.Warn("shortage_message_failed", zap.Error(serr))
		}
		s.publish(ctx, logger, orders.EventStockShortage, o.ID, orders.StockShortagePayload{
			OrderID:   o.ID,
			PaymentID: paymentID,
			ChatID:    o.ChatID,
			SKU:       o.SKU,
		})
		if outOfStock {
			return OutcomeOutOfStock, nil
		}
		return OutcomeInternalError, fmt.Errorf("workflow: take stock %s: %w", o.SKU, err)
	}
	s.metrics.Allocations.WithLabelValues(o.SKU, "taken").Inc()

	if _, err := s.orders.Update(ctx, orderID, orders.Patch{ItemFile: item.File}); err != nil {
		logger.Error("record_item_failed", zap.String("item_file", item.File), zap.Error(err))
	}

	if step, err := s.deliver(ctx, o.ChatID, item); err != nil {
		s.publish(ctx, logger, orders.EventDeliveryFailed, o.ID, orders.DeliveryFailedPayload{
			OrderID:  o.ID,
			ChatID:   o.ChatID,
			SKU:      o.SKU,
			ItemFile: item.File,
			Step:     step,
			Error:    err.Error(),
		})
		return OutcomeDeliveryFailed, fmt.Errorf("workflow: deliver %s: %w", step, err)
	}

	s.publish(ctx, logger, orders.EventOrderDelivered, o.ID, orders.OrderDeliveredPayload{
		OrderID:  o.ID,
		ChatID:   o.ChatID,
		SKU:      o.SKU,
		ItemFile: item.File,
	})
	return OutcomeDelivered, nil
}

// deliver sends confirmation, asset and follow-up in that order and stops at
// the first failure, returning the step that failed.
func (s *Service) deliver(ctx context.Context, chatID int64, item orders.StockItem) (string, error) {
	if err := s.delivery.SendText(ctx, chatID, msgPaymentApproved); err != nil {
		return "confirmation", err
	}
	if err := s.delivery.SendImage(ctx, chatID, filepath.Join(s.assetDir, item.File), msgAssetCaption); err != nil {
		return "asset", err
	}
	if err := s.delivery.SendText(ctx, chatID, msgFollowUp); err != nil {
		return "follow_up", err
	}
	return "", nil
}

func (s *Service) publish(ctx context.Context, logger *zap.Logger, eventType, orderID string, payload any) {
	if s.publisher == nil {
		return
	}
	ev, err := orders.NewEnvelope(s.producer, eventType, orderID, payload)
	if err == nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			ev.TraceID = sc.TraceID().String()
		}
		err = s.publisher.Publish(ctx, ev)
	}
	if err != nil {
		logger.Warn("event_publish_failed", zap.String("event", eventType), zap.Error(err))
	}
}

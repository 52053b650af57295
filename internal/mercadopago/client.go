// Package mercadopago is a thin client for the two Mercado Pago calls the
// storefront needs: checkout preferences and payment lookup.
package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ariefcatur/go-esim-storefront/internal/orders"
	"github.com/go-resty/resty/v2"
)

var ErrUnavailable = errors.New("mercadopago: unavailable")

var _ orders.Gateway = (*Client)(nil)

type Client struct {
	http     *resty.Client
	currency string
	backURL  string
}

type Option func(*Client)

func WithCurrency(c string) Option { return func(cl *Client) { cl.currency = c } }

func WithBackURL(u string) Option { return func(cl *Client) { cl.backURL = u } }

func New(baseURL, accessToken string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(accessToken).
			SetTimeout(10*time.Second).
			SetHeader("Content-Type", "application/json"),
		currency: "MXN",
		backURL:  "https://t.me/",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type preferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url"`
	BackURLs          backURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}

// payment is the subset of /v1/payments/{id} the storefront reads.
type payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	ExternalReference string `json:"external_reference"`
}

// CreateLink creates a checkout preference for o and returns its init_point.
func (c *Client) CreateLink(ctx context.Context, o *orders.Order, notificationURL string) (string, error) {
	price, _ := o.Price.Float64()
	body := preferenceRequest{
		Items: []preferenceItem{{
			Title:      o.Title,
			Quantity:   1,
			UnitPrice:  price,
			CurrencyID: c.currency,
		}},
		ExternalReference: o.ID,
		NotificationURL:   notificationURL,
		BackURLs:          backURLs{Success: c.backURL, Failure: c.backURL, Pending: c.backURL},
		AutoReturn:        orders.PaymentStatusApproved,
	}

	var out preferenceResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", o.ID).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/checkout/preferences")
	if err != nil {
		return "", fmt.Errorf("%w: create preference: %w", ErrUnavailable, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: create preference: status %d: %s", ErrUnavailable, resp.StatusCode(), apiErr.Message)
	}
	if out.InitPoint == "" {
		return "", fmt.Errorf("%w: create preference: empty init_point", ErrUnavailable)
	}
	return out.InitPoint, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (orders.Payment, error) {
	var out payment
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", paymentID).
		SetResult(&out).
		SetError(&apiErr).
		Get("/v1/payments/{id}")
	if err != nil {
		return orders.Payment{}, fmt.Errorf("%w: get payment %s: %w", ErrUnavailable, paymentID, err)
	}
	if resp.IsError() {
		return orders.Payment{}, fmt.Errorf("%w: get payment %s: status %d: %s", ErrUnavailable, paymentID, resp.StatusCode(), apiErr.Message)
	}
	id := paymentID
	if out.ID != 0 {
		id = strconv.FormatInt(out.ID, 10)
	}
	return orders.Payment{ID: id, Status: out.Status, ExternalReference: out.ExternalReference}, nil
}

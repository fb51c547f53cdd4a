package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const sessionsPath = "/v1/checkout/sessions"

// CheckoutGateway builds hosted card-checkout sessions against the provider's
// REST API. The client redirects to the returned session id.
type CheckoutGateway struct {
	secretKey string
	apiBase   string
	baseURL   string
	currency  string
	client    *resty.Client
}

func NewCheckoutGateway(secretKey, apiBase, baseURL, currency string) *CheckoutGateway {
	client := resty.New().
		SetBaseURL(apiBase).
		SetTimeout(10 * time.Second)

	return &CheckoutGateway{
		secretKey: secretKey,
		apiBase:   apiBase,
		baseURL:   baseURL,
		currency:  currency,
		client:    client,
	}
}

func (g *CheckoutGateway) CreatePayment(ctx context.Context, req CheckoutRequest) (map[string]any, error) {
	form := map[string]string{
		"mode":                    "payment",
		"payment_method_types[0]": "card",
		"line_items[0][price_data][currency]":                  g.currency,
		"line_items[0][price_data][unit_amount]":               strconv.FormatInt(req.UnitPrice, 10),
		"line_items[0][price_data][product_data][name]":        "Ganne ka Juice",
		"line_items[0][price_data][product_data][description]": req.Description,
		"line_items[0][quantity]":                              strconv.Itoa(req.Quantity),
		"success_url":                                          g.baseURL + "/success",
		"cancel_url":                                           g.baseURL + "/cancel",
	}

	response, err := g.client.R().
		SetContext(ctx).
		SetBasicAuth(g.secretKey, "").
		SetFormData(form).
		Post(sessionsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if response.IsError() {
		zap.L().Warn("checkout session rejected",
			zap.Int("status", response.StatusCode()),
			zap.String("body", response.String()),
		)
		return nil, fmt.Errorf("%w: %s", ErrGateway, response.String())
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(response.Body(), &session); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", ErrGateway, err)
	}

	return map[string]any{"sessionId": session.ID}, nil
}

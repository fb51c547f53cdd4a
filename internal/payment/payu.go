package payment

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/gannewala/juice-shop/internal/util"
)

const (
	payuTestBase = "https://test.payu.in"
	payuProdBase = "https://info.payu.in"

	payuPaymentPath    = "/_payment"
	payuWebservicePath = "/merchant/postservice.php?form=2"

	commandVerifyPayment = "verify_payment"
	commandRefund        = "cancel_refund_transaction"
)

// PayUGateway builds redirect-with-hash payment forms and issues
// server-to-server status and refund commands. The request hash layout is the
// provider's: the six payment fields, ten reserved empty slots and the salt,
// pipe-joined and SHA-512 hashed.
type PayUGateway struct {
	merchantKey  string
	merchantSalt string
	baseURL      string
	apiBase      string
	client       *resty.Client
}

func NewPayUGateway(merchantKey, merchantSalt, environment, baseURL string) *PayUGateway {
	apiBase := payuTestBase
	if environment == "production" {
		apiBase = payuProdBase
	}

	client := resty.New().
		SetBaseURL(apiBase).
		SetTimeout(10 * time.Second)

	return &PayUGateway{
		merchantKey:  merchantKey,
		merchantSalt: merchantSalt,
		baseURL:      baseURL,
		apiBase:      apiBase,
		client:       client,
	}
}

// RequestHash computes the payment-initiation checksum:
// sha512(key|txnid|amount|productinfo|firstname|email|<10 empty>|salt), hex lowercase.
func RequestHash(key, txnID, amount, productInfo, firstName, email, salt string) string {
	fields := make([]string, 0, 17)
	fields = append(fields, key, txnID, amount, productInfo, firstName, email)
	for i := 0; i < 10; i++ {
		fields = append(fields, "")
	}
	fields = append(fields, salt)

	return sha512Hex(strings.Join(fields, "|"))
}

func commandHash(key, command, txnID, salt string) string {
	return sha512Hex(strings.Join([]string{key, command, txnID, salt}, "|"))
}

func refundHash(key, txnID, amount, salt string) string {
	return sha512Hex(strings.Join([]string{key, txnID, amount, salt}, "|"))
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}

// NewTransactionID returns a fresh 10-digit transaction id.
func NewTransactionID() (string, error) {
	return util.Digits(10)
}

func (g *PayUGateway) CreatePayment(ctx context.Context, req CheckoutRequest) (map[string]any, error) {
	txnID, err := NewTransactionID()
	if err != nil {
		return nil, fmt.Errorf("%w: generate txnid: %v", ErrGateway, err)
	}

	amount := formatAmount(req.UnitPrice * int64(req.Quantity))
	requestHash := RequestHash(g.merchantKey, txnID, amount, req.Description, req.CustomerName, req.Email, g.merchantSalt)

	return map[string]any{
		"action":      g.apiBase + payuPaymentPath,
		"key":         g.merchantKey,
		"txnid":       txnID,
		"amount":      amount,
		"productinfo": req.Description,
		"firstname":   req.CustomerName,
		"email":       req.Email,
		"phone":       req.Phone,
		"surl":        g.baseURL + "/success",
		"furl":        g.baseURL + "/cancel",
		"hash":        requestHash,
		"service_provider": "payu_paisa",
	}, nil
}

func (g *PayUGateway) CheckTransaction(ctx context.Context, txnID string) ([]byte, error) {
	form := map[string]string{
		"key":     g.merchantKey,
		"command": commandVerifyPayment,
		"var1":    txnID,
		"hash":    commandHash(g.merchantKey, commandVerifyPayment, txnID, g.merchantSalt),
	}

	return g.post(ctx, form)
}

func (g *PayUGateway) RefundTransaction(ctx context.Context, txnID string, amount string) ([]byte, error) {
	form := map[string]string{
		"key":     g.merchantKey,
		"command": commandRefund,
		"var1":    txnID,
		"var2":    amount,
		"hash":    refundHash(g.merchantKey, txnID, amount, g.merchantSalt),
	}

	return g.post(ctx, form)
}

func (g *PayUGateway) post(ctx context.Context, form map[string]string) ([]byte, error) {
	response, err := g.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(payuWebservicePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if response.IsError() {
		zap.L().Warn("provider webservice error",
			zap.Int("status", response.StatusCode()),
			zap.String("command", form["command"]),
		)
		return nil, fmt.Errorf("%w: %s", ErrGateway, response.Status())
	}

	return response.Body(), nil
}

func formatAmount(paise int64) string {
	return fmt.Sprintf("%d.%02d", paise/100, paise%100)
}

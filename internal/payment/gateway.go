package payment

import (
	"context"
	"errors"
)

// ErrGateway marks failures of the upstream payment provider: rejected
// requests, timeouts, unreachable endpoints. Handlers surface it as an error
// payload without retrying.
var ErrGateway = errors.New("payment gateway failure")

// CheckoutRequest carries everything a gateway needs to build a payment
// initiation payload for one order intent.
type CheckoutRequest struct {
	CustomerName string
	Phone        string
	Email        string
	Quantity     int
	UnitPrice    int64
	Description  string
}

// Gateway builds provider-specific payment initiation payloads. The payload is
// returned to the client unchanged; the order controller does not interpret it.
type Gateway interface {
	CreatePayment(ctx context.Context, req CheckoutRequest) (map[string]any, error)
}

// StatusClient is implemented by gateways that support server-to-server status
// queries and refunds. The responses pass through to the caller raw.
type StatusClient interface {
	CheckTransaction(ctx context.Context, txnID string) ([]byte, error)
	RefundTransaction(ctx context.Context, txnID string, amount string) ([]byte, error)
}

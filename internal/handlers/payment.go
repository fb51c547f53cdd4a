package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gannewala/juice-shop/internal/payment"
)

// PaymentHandler exposes the gateway's server-to-server status and refund
// commands to authenticated accounts. Provider responses pass through raw.
type PaymentHandler struct {
	Status payment.StatusClient
}

func (h *PaymentHandler) CheckTransaction(c echo.Context) error {
	if h.Status == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "active gateway has no status query")
	}

	txnID := c.Param("txnid")
	if txnID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "txnid is required")
	}

	body, err := h.Status.CheckTransaction(c.Request().Context(), txnID)
	if err != nil {
		c.Logger().Errorf("transaction status query failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}

	return c.JSONBlob(http.StatusOK, body)
}

func (h *PaymentHandler) RefundTransaction(c echo.Context) error {
	if h.Status == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "active gateway has no refund")
	}

	txnID := c.Param("txnid")
	if txnID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "txnid is required")
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	if req.Amount == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "amount is required")
	}

	body, err := h.Status.RefundTransaction(c.Request().Context(), txnID, req.Amount)
	if err != nil {
		c.Logger().Errorf("refund command failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}

	return c.JSONBlob(http.StatusOK, body)
}

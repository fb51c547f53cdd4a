package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/gannewala/juice-shop/internal/intent"
	"github.com/gannewala/juice-shop/internal/models"
	"github.com/gannewala/juice-shop/internal/mykafka"
	"github.com/gannewala/juice-shop/internal/payment"
	"github.com/gannewala/juice-shop/internal/util"
)

const sessionCookieName = "orderSession"

type OrderHandler struct {
	DB        *gorm.DB
	Gateway   payment.Gateway
	Intents   *intent.Store
	Producer  *mykafka.Producer
	UnitPrice int64
	Currency  string
	PublicKey string
}

func (h *OrderHandler) Storefront(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"product":         "Ganne ka Juice",
		"description":     "Fresh sugarcane juice",
		"unit_price":      h.UnitPrice,
		"currency":        h.Currency,
		"publishable_key": h.PublicKey,
	})
}

// CreateCheckoutSession captures the order intent, asks the gateway for a
// payment initiation payload and hands that payload back without interpreting
// it. No Order row exists until the provider confirms payment.
func (h *OrderHandler) CreateCheckoutSession(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Quantity int    `json:"quantity"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed request"})
	}
	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone are required"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
	}

	totalAmount := int64(req.Quantity) * h.UnitPrice

	payload, err := h.Gateway.CreatePayment(c.Request().Context(), payment.CheckoutRequest{
		CustomerName: req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Quantity:     req.Quantity,
		UnitPrice:    h.UnitPrice,
		Description:  fmt.Sprintf("%d cup(s) of fresh sugarcane juice", req.Quantity),
	})
	if err != nil {
		c.Logger().Errorf("payment initiation failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}

	paymentRef, _ := payload["txnid"].(string)
	token := h.Intents.Put(intent.Intent{
		Name:        req.Name,
		Phone:       req.Phone,
		Quantity:    req.Quantity,
		TotalAmount: totalAmount,
		PaymentRef:  paymentRef,
	})

	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// the computed total rides along for display
	payload["total_amount"] = totalAmount

	return c.JSON(http.StatusOK, payload)
}

// Success is the provider's success redirect. Without a pending intent for the
// session this is a stale or replayed callback: redirect home, change nothing.
func (h *OrderHandler) Success(c echo.Context) error {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	in, ok := h.Intents.Get(cookie.Value)
	if !ok {
		return c.Redirect(http.StatusFound, "/")
	}

	code, err := util.Digits(6)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not generate verification code")
	}

	order := models.Order{
		CustomerName:     in.Name,
		PhoneNumber:      in.Phone,
		Quantity:         in.Quantity,
		VerificationCode: code,
		Status:           models.OrderStatusPending,
		PaymentStatus:    models.PaymentStatusPaid,
		PaymentRef:       in.PaymentRef,
		TotalAmount:      in.TotalAmount,
	}

	if err := h.DB.Create(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not save order")
	}

	h.Intents.Delete(cookie.Value)
	h.clearSessionCookie(c)

	h.publish(c, map[string]any{
		"type":    "order_paid",
		"orderID": order.ID,
		"amount":  order.TotalAmount,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":          order.ID,
		"verification_code": order.VerificationCode,
		"total_amount":      order.TotalAmount,
	})
}

// Cancel clears the pending intent. No Order row is ever created for a
// cancelled flow.
func (h *OrderHandler) Cancel(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		h.Intents.Delete(cookie.Value)
		h.clearSessionCookie(c)
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *OrderHandler) SellerOrders(c echo.Context) error {
	var orders []models.Order
	err := h.DB.
		Where("status = ? AND payment_status = ?", models.OrderStatusPending, models.PaymentStatusPaid).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list orders")
	}

	return c.JSON(http.StatusOK, orders)
}

// UpdateStatus overwrites the fulfillment status unconditionally; there is no
// transition-legality check, so completed orders can go back to pending.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		OrderID uint   `json:"order_id"`
		Status  string `json:"status"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false})
	}
	if !models.ValidOrderStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false})
	}

	var order models.Order
	if err := h.DB.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"success": false})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load order")
	}

	order.Status = req.Status
	if err := h.DB.Save(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update order")
	}

	h.publish(c, map[string]any{
		"type":    "order_status_updated",
		"orderID": order.ID,
		"status":  order.Status,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// VerifyOrder completes an order on an exact id+code match. Any mismatch gets
// the same failure response; the caller cannot tell which part was wrong.
func (h *OrderHandler) VerifyOrder(c echo.Context) error {
	var req struct {
		OrderID uint   `json:"order_id"`
		Code    string `json:"code"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false})
	}

	var order models.Order
	err := h.DB.
		Where("id = ? AND verification_code = ?", req.OrderID, req.Code).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"success": false})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load order")
	}

	order.Status = models.OrderStatusCompleted
	if err := h.DB.Save(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update order")
	}

	h.publish(c, map[string]any{
		"type":    "order_completed",
		"orderID": order.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *OrderHandler) AdminDashboard(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Order{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not count orders")
	}

	var orders []models.Order
	if err := h.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list orders")
	}

	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list users")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"users":  users,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *OrderHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-1 * time.Hour),
		HttpOnly: true,
	})
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

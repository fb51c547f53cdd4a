package models

import (
	"time"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"

	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

type Order struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	CustomerName     string    `gorm:"not null"                  json:"customer_name"`
	PhoneNumber      string    `gorm:"not null"                  json:"phone_number"`
	Quantity         int       `gorm:"not null;check:quantity>0" json:"quantity"`
	VerificationCode string    `gorm:"not null"                  json:"verification_code"`
	Status           string    `gorm:"not null;default:pending"  json:"status"`
	PaymentStatus    string    `gorm:"not null;default:pending"  json:"payment_status"`
	PaymentRef       string    `json:"payment_ref,omitempty"`
	TotalAmount      int64     `gorm:"not null"                  json:"total_amount"`
	CreatedAt        time.Time `json:"created_at"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `gorm:"not null"            json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}

func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleSeller
}

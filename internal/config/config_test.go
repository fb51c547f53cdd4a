package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gannewala/juice-shop/internal/hash"
	"github.com/gannewala/juice-shop/internal/models"
)

func TestLoadConfigDefaults(t *testing.T) {
	configuration, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, ":8080", configuration.Address)
	require.Equal(t, int64(2500), configuration.UnitPrice)
	require.Equal(t, "inr", configuration.Currency)
	require.Equal(t, "checkout", configuration.PaymentProvider)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("UNIT_PRICE", "3000")
	t.Setenv("PAYMENT_PROVIDER", "payu")
	t.Setenv("PAYU_MERCHANT_KEY", "K")
	t.Setenv("PAYU_MERCHANT_SALT", "S")

	configuration, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, int64(3000), configuration.UnitPrice)
	require.Equal(t, "payu", configuration.PaymentProvider)
	require.Equal(t, "K", configuration.PayUMerchantKey)
	require.Equal(t, "S", configuration.PayUMerchantSalt)
}

func TestBootstrapAccounts(t *testing.T) {
	configuration := &Config{
		DBDSN:          ":memory:",
		AdminPassword:  "admin123",
		SellerPassword: "seller123",
	}

	db, err := InitDB(configuration)
	require.NoError(t, err)

	require.NoError(t, BootstrapAccounts(db, configuration))

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.True(t, hash.CheckPassword(admin.PasswordHash, "admin123"))

	var seller models.User
	require.NoError(t, db.Where("username = ?", "seller").First(&seller).Error)
	require.Equal(t, models.RoleSeller, seller.Role)

	// second run leaves existing accounts untouched
	require.NoError(t, BootstrapAccounts(db, configuration))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestBootstrapAccountsWithoutPasswords(t *testing.T) {
	configuration := &Config{DBDSN: ":memory:"}

	db, err := InitDB(configuration)
	require.NoError(t, err)

	require.NoError(t, BootstrapAccounts(db, configuration))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

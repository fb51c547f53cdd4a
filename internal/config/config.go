package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v8"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gannewala/juice-shop/internal/hash"
	"github.com/gannewala/juice-shop/internal/models"
)

type Config struct {
	Address string `env:"ADDRESS" envDefault:":8080"`
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DBDSN   string `env:"DB_DSN" envDefault:"ganne_juice.db"`

	UnitPrice int64  `env:"UNIT_PRICE" envDefault:"2500"`
	Currency  string `env:"CURRENCY" envDefault:"inr"`

	PaymentProvider    string `env:"PAYMENT_PROVIDER" envDefault:"checkout"`
	CheckoutSecretKey  string `env:"CHECKOUT_SECRET_KEY"`
	CheckoutPublicKey  string `env:"CHECKOUT_PUBLISHABLE_KEY"`
	CheckoutAPIBase    string `env:"CHECKOUT_API_BASE" envDefault:"https://api.stripe.com"`
	PayUMerchantKey    string `env:"PAYU_MERCHANT_KEY"`
	PayUMerchantSalt   string `env:"PAYU_MERCHANT_SALT"`
	PayUEnvironment    string `env:"PAYU_ENV" envDefault:"test"`
	JWTSecret          string `env:"JWT_SECRET"`
	RefreshSecret      string `env:"REFRESH_SECRET"`
	KafkaAddress       string `env:"KAFKA_ADDRESS"`
	AdminPassword      string `env:"ADMIN_PASSWORD"`
	SellerPassword     string `env:"SELLER_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return config, nil
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(configuration.DBDSN, "postgres://") || strings.HasPrefix(configuration.DBDSN, "host=") {
		dialector = postgres.Open(configuration.DBDSN)
	} else {
		dialector = sqlite.Open(configuration.DBDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.User{}, &models.RefreshToken{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// BootstrapAccounts seeds the admin and seller accounts when the usernames are
// absent and a password is configured for them. Existing accounts are left alone.
func BootstrapAccounts(db *gorm.DB, configuration *Config) error {
	seed := []struct {
		username string
		password string
		role     string
	}{
		{"admin", configuration.AdminPassword, models.RoleAdmin},
		{"seller", configuration.SellerPassword, models.RoleSeller},
	}

	for _, s := range seed {
		if s.password == "" {
			continue
		}

		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", s.username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		passwordHash, err := hash.HashPassword(s.password)
		if err != nil {
			return err
		}
		if err := db.Create(&models.User{
			Username:     s.username,
			PasswordHash: passwordHash,
			Role:         s.role,
		}).Error; err != nil {
			return err
		}
	}

	return nil
}

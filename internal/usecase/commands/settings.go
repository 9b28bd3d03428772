package commands

import (
	"time"

	"storefront/internal/pkg/config"

	"github.com/shopspring/decimal"
)

// Settings are the config values the cart and checkout commands read.
type Settings struct {
	CartRetries     int
	HoldUnverified  bool
	ReviewThreshold decimal.Decimal
	DefaultCurrency string
	IdempotencyTTL  time.Duration
	OrderTopic      string
}

func NewSettings(cfg config.Config) (Settings, error) {
	threshold, err := cfg.Order.FraudReviewThreshold()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		CartRetries:     cfg.Session.MaxRetries,
		HoldUnverified:  cfg.Order.HoldUnverified,
		ReviewThreshold: threshold,
		DefaultCurrency: cfg.Order.DefaultCurrency,
		IdempotencyTTL:  cfg.Order.IdempotencyTTL,
		OrderTopic:      cfg.Kafka.OrderTopic,
	}, nil
}

// SessionCurrency picks the session currency, then the form default, then the store default.
func (s Settings) SessionCurrency(session, formDefault string) string {
	switch {
	case session != "":
		return session
	case formDefault != "":
		return formDefault
	default:
		return s.DefaultCurrency
	}
}

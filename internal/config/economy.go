package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type EconomyConfig struct {
	// One accrual grant per account per cooldown window.
	AccrualCooldown time.Duration `env:"ACCRUAL_COOLDOWN" envDefault:"60s"`
	// Grant amount, fixed at min when max <= min, otherwise uniform in
	// [min, max].
	AccrualMinAmount int64 `env:"ACCRUAL_MIN_AMOUNT" envDefault:"1"`
	AccrualMaxAmount int64 `env:"ACCRUAL_MAX_AMOUNT" envDefault:"1"`

	// proportional or equal split of losing stakes among winners.
	PayoutPolicy string `env:"PAYOUT_POLICY" envDefault:"proportional"`
}

func LoadEconomy() (EconomyConfig, error) {
	var cfg EconomyConfig
	err := env.Parse(&cfg)
	return cfg, err
}

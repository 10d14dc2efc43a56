package config

import "github.com/caarlos0/env/v11"

type NotifyConfig struct {
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"wager_settlements"`
}

func LoadNotify() (NotifyConfig, error) {
	var cfg NotifyConfig
	err := env.Parse(&cfg)
	return cfg, err
}

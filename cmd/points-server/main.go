package main

import (
	"context"
	"net/http"
	"time"

	"nexus-points/internal/accrual"
	"nexus-points/internal/app/public"
	"nexus-points/internal/config"
	"nexus-points/internal/ledger"
	"nexus-points/internal/logging"
	"nexus-points/internal/notify"
	notifykafka "nexus-points/internal/notify/kafka"
	"nexus-points/internal/store"
	"nexus-points/internal/store/memstore"
	"nexus-points/internal/wager"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	st, cleanup, err := openStore(cfg.Server)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer cleanup()

	notifier, closeNotifier := newNotifier(cfg.Notify)
	defer closeNotifier()

	deps := Deps{
		Store:  st,
		Public: public.NewService(st),
		Ledger: ledger.New(st),
		Accrual: accrual.NewService(st, accrual.Config{
			Cooldown:  cfg.Economy.AccrualCooldown,
			MinAmount: cfg.Economy.AccrualMinAmount,
			MaxAmount: cfg.Economy.AccrualMaxAmount,
		}),
		Wagers: wager.NewService(st, notifier, cfg.Economy.PayoutPolicy),
		Cfg:    cfg.Server,
	}

	r := newRouter(deps)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Bool("dev_mode", cfg.Server.DevMode).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func openStore(cfg config.ServerConfig) (Store, func(), error) {
	if cfg.DevMode {
		log.Warn().Msg("dev mode: balances are in-memory and not durable")
		return memstore.New(), func() {}, nil
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Ping(context.Background()); err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, st.Close, nil
}

func newNotifier(cfg config.NotifyConfig) (notify.Notifier, func()) {
	if !cfg.KafkaEnabled || len(cfg.KafkaBrokers) == 0 {
		return notify.LogNotifier{}, func() {}
	}
	pub := notifykafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka notifier enabled")
	return pub, func() { _ = pub.Close() }
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"nexus-points/internal/accrual"
	"nexus-points/internal/app/public"
	"nexus-points/internal/config"
	"nexus-points/internal/ledger"
	"nexus-points/internal/logging"
	"nexus-points/internal/store"
	"nexus-points/internal/wager"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/zerolog/log"
)

// Store is the slice of the durable store the transport layer reads
// directly (health and admin projections). Both the Postgres store and the
// in-memory dev store satisfy it.
type Store interface {
	Ping(ctx context.Context) error
	Balance(ctx context.Context, accountID string) (int64, error)
	History(ctx context.Context, accountID string, limit int, before string) ([]store.LedgerEntry, error)
	GetWager(ctx context.Context, wagerID string) (*store.Wager, error)
	Leaderboard(ctx context.Context, limit, offset int) ([]store.Account, error)
	ListLedgerEntries(ctx context.Context, f store.LedgerFilter, limit, offset int) ([]store.LedgerEntry, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]store.Account, error)
	Credit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error)
	Debit(ctx context.Context, accountID string, amount int64, reason, wagerID, eventID string) (*store.LedgerEntry, error)
	Transfer(ctx context.Context, from, to string, amount int64, eventID string) error
	Accrue(ctx context.Context, accountID string, amount int64, eventID string, cooldown time.Duration) (*store.LedgerEntry, error)
	CreateWager(ctx context.Context, creatorID, terms string) (*store.Wager, error)
	JoinWager(ctx context.Context, wagerID, accountID string, stake int64, eventID string) (*store.LedgerEntry, error)
	LockWager(ctx context.Context, wagerID string) (*store.Wager, error)
	SettleWager(ctx context.Context, wagerID, resolution string, payouts []store.Payout) (*store.Wager, error)
	CancelWager(ctx context.Context, wagerID string) (*store.Wager, error)
	ListWagers(ctx context.Context, status string, limit, offset int) ([]store.Wager, error)
}

type Deps struct {
	Store   Store
	Public  *public.Service
	Ledger  *ledger.Ledger
	Accrual *accrual.Service
	Wagers  *wager.Service
	Cfg     config.ServerConfig
}

func newRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(deps.Store))

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())

		r.Get("/public/balance", balanceHandler(deps.Public))
		r.Get("/public/history", historyHandler(deps.Public))
		r.Get("/public/leaderboard", leaderboardHandler(deps.Public))
		r.Get("/public/wagers", wagerListHandler(deps.Wagers))
		r.Get("/public/wagers/{wager_id}", wagerGetHandler(deps.Public))

		r.Post("/events", eventsHandler(deps.Accrual))
		r.Post("/transfer", transferHandler(deps.Ledger))

		r.Post("/wagers", wagerCreateHandler(deps.Wagers))
		r.Post("/wagers/{wager_id}/join", wagerJoinHandler(deps.Wagers))
		r.Post("/wagers/{wager_id}/lock", wagerLockHandler(deps.Wagers))
		r.Post("/wagers/{wager_id}/resolve", wagerResolveHandler(deps.Wagers))
		r.Post("/wagers/{wager_id}/cancel", wagerCancelHandler(deps.Wagers, deps.Cfg.AdminAPIKey))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(deps.Cfg.AdminAPIKey))
			r.Post("/admin/adjust", adminAdjustHandler(deps.Ledger))
			r.Get("/admin/ledger", adminLedgerHandler(deps.Store))
			r.Get("/admin/accounts", adminAccountsHandler(deps.Store))
		})
	})

	return r
}

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}

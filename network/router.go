package network

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/thrylos-labs/stakeledger/balance"
	"github.com/thrylos-labs/stakeledger/logging"
	"github.com/thrylos-labs/stakeledger/staking"
	"go.uber.org/zap"
)

type Router struct {
	engine  *staking.Engine
	ledger  balance.Ledger
	ws      *WebSocketManager
	secret  []byte
	origins []string
	logger  *zap.Logger
}

// NewRouter builds the HTTP front of the staking engine. ws may be nil, in
// which case the event endpoint is not mounted.
func NewRouter(engine *staking.Engine, ledger balance.Ledger, ws *WebSocketManager, secret []byte, origins []string) *Router {
	return &Router{
		engine:  engine,
		ledger:  ledger,
		ws:      ws,
		secret:  secret,
		origins: origins,
		logger:  logging.Logger.Named("http"),
	}
}

// Handler wraps the routes with CORS handling.
func (router *Router) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   router.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(router.SetupRoutes())
}

func (router *Router) middlewareHandler() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			if !isWebSocketRequest(r) {
				w.Header().Set("X-Content-Type-Options", "nosniff")
				w.Header().Set("X-Frame-Options", "DENY")
			}
			next.ServeHTTP(w, r)
			router.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Duration("took", time.Since(start)))
		})
	}
}

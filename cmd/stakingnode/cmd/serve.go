package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/thrylos-labs/stakeledger/amount"
	"github.com/thrylos-labs/stakeledger/balance"
	"github.com/thrylos-labs/stakeledger/config"
	"github.com/thrylos-labs/stakeledger/logging"
	"github.com/thrylos-labs/stakeledger/network"
	"github.com/thrylos-labs/stakeledger/staking"
	"github.com/thrylos-labs/stakeledger/store"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the staking HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.cfg)
		},
	}
}

// node is everything serve wires together.
type node struct {
	positions store.PositionStore
	ledger    *balance.Memory
	engine    *staking.Engine
	ws        *network.WebSocketManager
	handler   http.Handler
}

func openPositions(cfg *config.Config) (store.PositionStore, error) {
	var backing store.PositionStore = store.NewMemoryStore()
	if !cfg.InMemory {
		db, err := store.NewDatabase(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		backing = db
	}
	cached, err := store.NewCachedStore(backing, cfg.CacheSize)
	if err != nil {
		backing.Close()
		return nil, err
	}
	return cached, nil
}

// buildNode opens storage, seeds the ledger from genesis allocations and
// assembles the engine and HTTP handler.
func buildNode(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*node, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.Wrapf(config.ErrInvalidConfig, "%s is not set", config.EnvJWTSecret)
	}
	rate, err := rewardRate(cfg)
	if err != nil {
		return nil, err
	}

	positions, err := openPositions(cfg)
	if err != nil {
		return nil, err
	}
	n := &node{positions: positions}
	fail := func(err error) (*node, error) {
		positions.Close()
		return nil, err
	}

	if n.ledger, err = balance.NewMemory(cfg.CustodyAccount); err != nil {
		return fail(err)
	}
	for account, bal := range cfg.Genesis {
		if err := n.ledger.Mint(account, amount.Amount(bal)); err != nil {
			return fail(errors.Wrapf(err, "genesis allocation for %s", account))
		}
	}
	if err := n.ledger.Mint(cfg.CustodyAccount, amount.Amount(cfg.RewardReserve)); err != nil {
		return fail(errors.Wrap(err, "reward reserve"))
	}

	n.ws = network.NewWebSocketManager(cfg.AllowedOrigins)
	n.ledger.SetNotifier(n.ws)

	n.engine, err = staking.NewEngine(n.ledger, positions, rate,
		staking.WithLogger(logger),
		staking.WithNotifier(n.ws),
		staking.WithLockStripes(cfg.LockStripes),
		staking.WithRegistry(metrics.DefaultRegistry))
	if err != nil {
		return fail(err)
	}

	// positions persisted by a previous run are backed by custody again
	stats, err := n.engine.Stats(ctx)
	if err != nil {
		return fail(err)
	}
	if stats.TotalStaked > 0 {
		if err := n.ledger.Mint(cfg.CustodyAccount, stats.TotalStaked); err != nil {
			return fail(errors.Wrap(err, "restore custody"))
		}
		logger.Info("restored custody for persisted positions",
			zap.Int("stakers", stats.ActiveStakers),
			zap.Uint64("total", uint64(stats.TotalStaked)))
	}

	router := network.NewRouter(n.engine, n.ledger, n.ws, []byte(cfg.JWTSecret), cfg.AllowedOrigins)
	n.handler = router.Handler()
	return n, nil
}

func (n *node) close() error {
	n.ws.Close()
	return n.positions.Close()
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.InitLogging(cfg.LogMode, cfg.LogFile)
	if err != nil {
		return errors.Wrap(err, "init logging")
	}
	defer logger.Sync()

	n, err := buildNode(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.close(); err != nil {
			logging.LogError("close", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           n.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("staking node listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Uint64("rate_numerator", cfg.RateNumerator),
			zap.Uint64("rate_denominator", cfg.RateDenominator),
			zap.Int64("period_seconds", cfg.RewardPeriodSeconds))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

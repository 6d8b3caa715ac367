package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"honeytrace/config"
	"honeytrace/core"
	"honeytrace/core/events"
	"honeytrace/core/types"
	"honeytrace/observability/logging"
	"honeytrace/rpc"
	"honeytrace/storage"
)

// slogEmitter forwards committed ledger events to the process logger so an
// operator can tail the daemon and watch claims land.
type slogEmitter struct {
	log *slog.Logger
}

func (e slogEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	attrs := []any{slog.String("event", evt.EventType())}
	type payloadCarrier interface {
		Event() *types.Event
	}
	if carrier, ok := evt.(payloadCarrier); ok {
		if payload := carrier.Event(); payload != nil {
			for key, value := range payload.Attributes {
				attrs = append(attrs, slog.String(key, value))
			}
		}
	}
	e.log.Info("ledger event", attrs...)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("HONEYTRACE_ENV"))
	logger := logging.Setup("honeytraced", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	owner := [20]byte(common.HexToAddress(cfg.OwnerAddress))

	var opts []core.NodeOption
	if cfg.MaxBatchSize > 0 {
		opts = append(opts, core.WithMaxBatchSize(cfg.MaxBatchSize))
	}
	if cfg.ReviewCap > 0 {
		opts = append(opts, core.WithReviewCap(cfg.ReviewCap))
	}
	node, err := core.NewNode(db, owner, opts...)
	if err != nil {
		logger.Error("Failed to initialize node", slog.Any("error", err))
		os.Exit(1)
	}
	node.SetEmitter(slogEmitter{log: logger})

	logger.Info("node ready",
		slog.String("network", cfg.NetworkName),
		slog.String("dataDir", cfg.DataDir),
		slog.String("claimOperator", common.Address(core.ClaimOperator()).Hex()),
	)

	var serverOpts []rpc.Option
	if cfg.RatePerMinute > 0 {
		serverOpts = append(serverOpts, rpc.WithRateLimit(cfg.RatePerMinute, cfg.RateBurst))
	}
	server := rpc.NewServer(node, logger, serverOpts...)
	if err := server.Start(cfg.ListenAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

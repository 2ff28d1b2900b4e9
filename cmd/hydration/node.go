// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaiachai/hydration-node/config"
	"github.com/kaiachai/hydration-node/core/broker"
	"github.com/kaiachai/hydration-node/core/collateral"
	"github.com/kaiachai/hydration-node/core/events"
	"github.com/kaiachai/hydration-node/core/exchange"
	"github.com/kaiachai/hydration-node/core/pricing"
	"github.com/kaiachai/hydration-node/core/referral"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"
	"github.com/kaiachai/hydration-node/metrics"

	"github.com/jessevdk/go-flags"
)

type NodeCmd struct {
	Home string `long:"home" description:"Path of the root directory in which the configuration is located" default:"."`
}

var nodeCmd NodeCmd

func (opts *NodeCmd) Execute(_ []string) error {
	cfg, err := config.Read(opts.Home)
	if err != nil {
		return err
	}

	log := logging.NewLoggerFromConfig(cfg.Logging)
	defer log.AtExit()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eventBroker := broker.New(log, cfg.Broker)
	collateralEngine := collateral.New(log, cfg.Collateral)
	pricingEngine := pricing.New(log, cfg.Pricing)
	exchangeEngine := exchange.New(log, cfg.Exchange, collateralEngine, pricingEngine)

	tierTable, err := referral.TiersFromConfig(cfg.Referral)
	if err != nil {
		return err
	}
	referralEngine := referral.NewSnapshottedEngine(referral.New(
		log,
		cfg.Referral,
		collateralEngine,
		exchangeEngine,
		pricingEngine,
		referral.NewStaticTierPolicy(tierTable),
		eventBroker,
	))

	eventBroker.Subscribe(newEventLogger(log))

	watcher, err := config.NewWatcher(ctx, log, opts.Home)
	if err != nil {
		return err
	}
	watcher.OnConfigUpdate(func(cfg config.Config) {
		if minAmount, overflow := num.UintFromString(cfg.Exchange.MinTradingAmount); !overflow {
			exchangeEngine.OnMinTradingAmountUpdate(minAmount)
		}
		log.SetLevel(cfg.Logging.Level)
	})

	if bool(cfg.Metrics.Enabled) {
		go func() {
			log.Info("metrics endpoint started",
				logging.String("address", cfg.Metrics.Address),
			)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				log.Error("metrics endpoint failed", logging.Error(err))
			}
		}()
	}

	log.Info("node started",
		logging.String("home", opts.Home),
		logging.String("reward-asset", cfg.Referral.RewardAsset),
	)

	ticker := time.NewTicker(cfg.Referral.DrainInterval.Get())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if consumed := referralEngine.DrainPending(ctx, cfg.Referral.DrainBudget); consumed > 0 && log.IsDebug() {
				log.Debug("pending conversions drained",
					logging.Uint64("consumed", consumed),
				)
			}
		case <-ctx.Done():
			log.Info("node shutting down")
			return nil
		}
	}
}

// eventLogger subscribes to every event and logs it at debug level.
type eventLogger struct {
	log *logging.Logger
}

func newEventLogger(log *logging.Logger) *eventLogger {
	return &eventLogger{log: log.Named("events")}
}

func (s *eventLogger) Push(evts ...events.Event) {
	if !s.log.IsDebug() {
		return
	}
	for _, evt := range evts {
		s.log.Debug("event",
			logging.Stringer("type", evt.Type()),
			logging.Uint64("sequence", evt.Sequence()),
			logging.String("trace-id", evt.TraceID()),
		)
	}
}

func (s *eventLogger) Types() []events.Type {
	return []events.Type{events.All}
}

func Node(_ context.Context, parser *flags.Parser) error {
	nodeCmd = NodeCmd{}

	short := "Runs a hydration node"
	long := "Runs the referral reward node with the background conversion drain and the metrics endpoint"

	_, err := parser.AddCommand("node", short, long, &nodeCmd)
	return err
}

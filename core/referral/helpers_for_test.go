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

package referral_test

import (
	"testing"

	"github.com/kaiachai/hydration-node/core/collateral"
	"github.com/kaiachai/hydration-node/core/events"
	"github.com/kaiachai/hydration-node/core/exchange"
	"github.com/kaiachai/hydration-node/core/pricing"
	"github.com/kaiachai/hydration-node/core/referral"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"

	"github.com/stretchr/testify/require"
)

const (
	hdx      = types.AssetID("HDX")
	dai      = types.AssetID("DAI")
	pot      = types.PartyID("reward-pot")
	treasury = types.PartyID("treasury")
	alice    = types.PartyID("alice")
	bob      = types.PartyID("bob")
)

type testEngine struct {
	engine     *referral.SnapshottedEngine
	collateral *collateral.Engine
	pricing    *pricing.Engine
	broker     *brokerStub
	converter  referral.Converter
}

func defaultTestConfig() referral.Config {
	cfg := referral.NewDefaultConfig()
	cfg.RewardAsset = hdx.String()
	cfg.PotAccount = pot.String()
	cfg.SeedAmount = "0"
	cfg.ExternalAccount = ""
	cfg.RegistrationFeeAsset = hdx.String()
	cfg.RegistrationFeeAmount = "10"
	cfg.RegistrationFeeBeneficiary = treasury.String()
	cfg.CostPerConversion = 1
	return cfg
}

// defaultTestTiers requires 1000 cumulative rewards for tier1 and keeps
// the higher tiers out of reach.
func defaultTestTiers() *referral.StaticTierPolicy {
	unreachable := num.MustUintFromString("1000000000000000000000")
	return referral.NewStaticTierPolicy(map[types.Level]referral.TierBenefit{
		types.LevelNone: {
			RequiredVolume: num.UintZero(),
			Rewards:        types.EmptyFeeDistribution(),
		},
		types.LevelTier0: {
			RequiredVolume: num.UintZero(),
			Rewards: types.FeeDistribution{
				Referrer: num.MustDecimalFromString("0.1"),
				Trader:   num.MustDecimalFromString("0.05"),
				External: num.DecimalZero(),
			},
		},
		types.LevelTier1: {
			RequiredVolume: num.NewUint(1000),
			Rewards: types.FeeDistribution{
				Referrer: num.MustDecimalFromString("0.2"),
				Trader:   num.MustDecimalFromString("0.1"),
				External: num.DecimalZero(),
			},
		},
		types.LevelTier2: {RequiredVolume: unreachable.Clone(), Rewards: types.EmptyFeeDistribution()},
		types.LevelTier3: {RequiredVolume: unreachable.Clone(), Rewards: types.EmptyFeeDistribution()},
		types.LevelTier4: {RequiredVolume: unreachable.Clone(), Rewards: types.EmptyFeeDistribution()},
	})
}

func newTestEngine(t *testing.T, cfg referral.Config, tiers referral.TierPolicy) *testEngine {
	t.Helper()
	return newTestEngineWithConverter(t, cfg, tiers, nil)
}

// newTestEngineWithConverter wires the engine on a real collateral ledger
// and pricing table. A nil converter gets the real exchange engine, tests
// exercising conversion failures pass their own.
func newTestEngineWithConverter(t *testing.T, cfg referral.Config, tiers referral.TierPolicy, converter referral.Converter) *testEngine {
	t.Helper()

	log := logging.NewTestLogger()
	broker := newBrokerStub()

	collateralEngine := collateral.New(log, collateral.NewDefaultConfig())
	collateralEngine.EnableAsset(hdx, num.UintZero())
	collateralEngine.EnableAsset(dai, num.UintZero())

	pricingEngine := pricing.New(log, pricing.NewDefaultConfig())

	if converter == nil {
		converter = exchange.New(log, exchange.NewDefaultConfig(), collateralEngine, pricingEngine)
	}

	engine := referral.New(log, cfg, collateralEngine, converter, pricingEngine, tiers, broker)

	return &testEngine{
		engine:     referral.NewSnapshottedEngine(engine),
		collateral: collateralEngine,
		pricing:    pricingEngine,
		broker:     broker,
		converter:  converter,
	}
}

func (te *testEngine) deposit(t *testing.T, party types.PartyID, asset types.AssetID, amount uint64) {
	t.Helper()
	require.NoError(t, te.collateral.Deposit(party, asset, num.NewUint(amount)))
}

func (te *testEngine) setPrice(t *testing.T, a, b types.AssetID, n, d uint64) {
	t.Helper()
	require.NoError(t, te.pricing.SetPrice(a, b, types.NewPrice(n, d)))
}

func (te *testEngine) balance(party types.PartyID, asset types.AssetID) *num.Uint {
	return te.collateral.Balance(party, asset)
}

type brokerStub struct {
	evts []events.Event
}

func newBrokerStub() *brokerStub {
	return &brokerStub{}
}

func (b *brokerStub) Send(evt events.Event) {
	b.evts = append(b.evts, evt)
}

func (b *brokerStub) ofType(t events.Type) []events.Event {
	out := []events.Event{}
	for _, evt := range b.evts {
		if evt.Type() == t {
			out = append(out, evt)
		}
	}
	return out
}

func (b *brokerStub) clear() {
	b.evts = nil
}

// failingConverter fails every conversion with the given error.
type failingConverter struct {
	err error
}

func (c *failingConverter) Convert(_ types.PartyID, _, _ types.AssetID, _ *num.Uint) (*num.Uint, error) {
	return nil, c.err
}

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

package exchange_test

import (
	"testing"

	"github.com/kaiachai/hydration-node/core/collateral"
	"github.com/kaiachai/hydration-node/core/exchange"
	"github.com/kaiachai/hydration-node/core/pricing"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hdx = types.AssetID("HDX")
	dai = types.AssetID("DAI")

	pot = types.PartyID("reward-pot")
)

type testEngine struct {
	engine     *exchange.Engine
	collateral *collateral.Engine
	pricing    *pricing.Engine
}

func newTestEngine(t *testing.T, minTradingAmount string) *testEngine {
	t.Helper()

	log := logging.NewTestLogger()
	col := collateral.New(log, collateral.NewDefaultConfig())
	col.EnableAsset(hdx, num.UintZero())
	col.EnableAsset(dai, num.UintZero())

	prices := pricing.New(log, pricing.NewDefaultConfig())

	cfg := exchange.NewDefaultConfig()
	cfg.MinTradingAmount = minTradingAmount

	return &testEngine{
		engine:     exchange.New(log, cfg, col, prices),
		collateral: col,
		pricing:    prices,
	}
}

func TestEngine(t *testing.T) {
	t.Run("Converting settles both legs", testConvertSettlesBothLegs)
	t.Run("Converting below the minimum amount fails", testConvertBelowMinimum)
	t.Run("Converting to a zero output fails", testConvertZeroOutput)
	t.Run("Converting without a price fails", testConvertNoPrice)
}

func testConvertSettlesBothLegs(t *testing.T) {
	te := newTestEngine(t, "0")
	require.NoError(t, te.pricing.SetPrice(hdx, dai, types.NewPrice(2, 1)))
	require.NoError(t, te.collateral.Deposit(pot, dai, num.NewUint(500)))

	out, err := te.engine.Convert(pot, dai, hdx, num.NewUint(500))
	require.NoError(t, err)
	assert.Equal(t, "1000", out.String())

	assert.True(t, te.collateral.Balance(pot, dai).IsZero())
	assert.Equal(t, "1000", te.collateral.Balance(pot, hdx).String())
}

func testConvertBelowMinimum(t *testing.T) {
	te := newTestEngine(t, "100")
	require.NoError(t, te.pricing.SetPrice(hdx, dai, types.NewPrice(2, 1)))
	require.NoError(t, te.collateral.Deposit(pot, dai, num.NewUint(99)))

	_, err := te.engine.Convert(pot, dai, hdx, num.NewUint(99))
	require.ErrorIs(t, err, types.ErrConversionMinTradingAmountNotReached)

	// nothing settled
	assert.Equal(t, "99", te.collateral.Balance(pot, dai).String())
}

func testConvertZeroOutput(t *testing.T) {
	te := newTestEngine(t, "0")
	// 1 DAI at a price of 1/1000 HDX rounds down to nothing.
	require.NoError(t, te.pricing.SetPrice(hdx, dai, types.NewPrice(1, 1000)))
	require.NoError(t, te.collateral.Deposit(pot, dai, num.NewUint(1)))

	_, err := te.engine.Convert(pot, dai, hdx, num.NewUint(1))
	require.ErrorIs(t, err, types.ErrConversionZeroAmountReceived)
	assert.Equal(t, "1", te.collateral.Balance(pot, dai).String())
}

func testConvertNoPrice(t *testing.T) {
	te := newTestEngine(t, "0")
	require.NoError(t, te.collateral.Deposit(pot, dai, num.NewUint(100)))

	_, err := te.engine.Convert(pot, dai, hdx, num.NewUint(100))
	require.ErrorIs(t, err, exchange.ErrNoPriceForPair)
}

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
	"context"
	"testing"

	"github.com/kaiachai/hydration-node/core/referral"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populate builds a representative ledger: codes, links, shares, a pending
// asset and a per asset distribution override.
func populate(t *testing.T, te *testEngine) {
	t.Helper()
	ctx := context.Background()
	source := types.PartyID("fee-payer")

	te.deposit(t, alice, hdx, 100)
	require.NoError(t, te.engine.RegisterCode(ctx, alice, "ABC123"))
	require.NoError(t, te.engine.LinkCode(ctx, bob, "ABC123"))

	te.setPrice(t, hdx, dai, 2, 1)
	te.deposit(t, source, dai, 1000)
	_, err := te.engine.ProcessTradeFee(ctx, source, bob, dai, num.NewUint(1000))
	require.NoError(t, err)

	require.NoError(t, te.engine.SetRewardPercentage(ctx, dai, types.LevelTier1, types.FeeDistribution{
		Referrer: num.MustDecimalFromString("0.25"),
		Trader:   num.MustDecimalFromString("0.1"),
		External: num.DecimalZero(),
	}))
}

func TestSnapshot(t *testing.T) {
	t.Run("serialisation is deterministic", func(t *testing.T) {
		te := newTestEngine(t, defaultTestConfig(), defaultTestTiers())
		populate(t, te)

		first, err := te.engine.GetState("ledger")
		require.NoError(t, err)
		second, err := te.engine.GetState("ledger")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		te := newTestEngine(t, defaultTestConfig(), defaultTestTiers())

		_, err := te.engine.GetState("nope")
		require.ErrorIs(t, err, referral.ErrSnapshotKeyDoesNotExist)
		require.ErrorIs(t, te.engine.LoadState("nope", nil), referral.ErrSnapshotKeyDoesNotExist)
	})

	t.Run("a restored replica serialises to the same bytes", func(t *testing.T) {
		te := newTestEngine(t, defaultTestConfig(), defaultTestTiers())
		populate(t, te)

		state, err := te.engine.GetState("ledger")
		require.NoError(t, err)

		restored := newTestEngine(t, defaultTestConfig(), defaultTestTiers())
		require.NoError(t, restored.engine.LoadState("ledger", state))

		restoredState, err := restored.engine.GetState("ledger")
		require.NoError(t, err)
		assert.Equal(t, state, restoredState)

		owner, ok := restored.engine.CodeOwner("ABC123")
		require.True(t, ok)
		assert.Equal(t, alice, owner)
		referrer, ok := restored.engine.Referrer(bob)
		require.True(t, ok)
		assert.Equal(t, alice, referrer)
		assert.Equal(t, "300", restored.engine.TotalShares().String())
		assert.True(t, restored.engine.IsPending(dai))
	})

	t.Run("a restored replica applies the same transitions", func(t *testing.T) {
		ctx := context.Background()

		te := newTestEngine(t, defaultTestConfig(), defaultTestTiers())
		populate(t, te)

		state, err := te.engine.GetState("ledger")
		require.NoError(t, err)

		// the restored replica needs the same collateral and prices to
		// replay the claim.
		restored := newTestEngine(t, defaultTestConfig(), defaultTestTiers())
		require.NoError(t, restored.engine.LoadState("ledger", state))
		restored.setPrice(t, hdx, dai, 2, 1)
		require.NoError(t, restored.collateral.Deposit(pot, dai, num.NewUint(150)))
		require.NoError(t, te.engine.ClaimRewards(ctx, bob))
		require.NoError(t, restored.engine.ClaimRewards(ctx, bob))

		original, err := te.engine.GetState("ledger")
		require.NoError(t, err)
		replayed, err := restored.engine.GetState("ledger")
		require.NoError(t, err)
		assert.Equal(t, original, replayed)
	})

	t.Run("stopped engines stop providing state", func(t *testing.T) {
		te := newTestEngine(t, defaultTestConfig(), defaultTestTiers())
		populate(t, te)

		require.False(t, te.engine.Stopped())
		te.engine.StopSnapshots()
		require.True(t, te.engine.Stopped())

		state, err := te.engine.GetState("ledger")
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("namespace and keys are stable", func(t *testing.T) {
		te := newTestEngine(t, defaultTestConfig(), defaultTestTiers())
		assert.Equal(t, "referral", te.engine.Namespace())
		assert.Equal(t, []string{"ledger"}, te.engine.Keys())
	})
}

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

package collateral_test

import (
	"testing"

	"github.com/kaiachai/hydration-node/core/collateral"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hdx = types.AssetID("HDX")
	dai = types.AssetID("DAI")

	alice = types.PartyID("alice")
	bob   = types.PartyID("bob")
)

func TestEngine(t *testing.T) {
	t.Run("Transferring moves the balance atomically", testTransferMovesBalance)
	t.Run("Transferring more than the balance fails", testTransferInsufficientFunds)
	t.Run("Keep alive transfers retain the existential deposit", testKeepAliveTransfers)
	t.Run("Transferring a disabled asset fails", testDisabledAsset)
	t.Run("Transferring zero is a no-op", testZeroTransfer)
}

func newEngine(t *testing.T) *collateral.Engine {
	t.Helper()
	return collateral.New(logging.NewTestLogger(), collateral.NewDefaultConfig())
}

func testTransferMovesBalance(t *testing.T) {
	e := newEngine(t)
	e.EnableAsset(hdx, num.UintZero())

	require.NoError(t, e.Deposit(alice, hdx, num.NewUint(1000)))
	require.NoError(t, e.Transfer(hdx, alice, bob, num.NewUint(400), false))

	assert.Equal(t, "600", e.Balance(alice, hdx).String())
	assert.Equal(t, "400", e.Balance(bob, hdx).String())
}

func testTransferInsufficientFunds(t *testing.T) {
	e := newEngine(t)
	e.EnableAsset(hdx, num.UintZero())

	require.NoError(t, e.Deposit(alice, hdx, num.NewUint(100)))
	err := e.Transfer(hdx, alice, bob, num.NewUint(400), false)
	require.ErrorIs(t, err, collateral.ErrInsufficientFunds)

	// nothing moved
	assert.Equal(t, "100", e.Balance(alice, hdx).String())
	assert.True(t, e.Balance(bob, hdx).IsZero())
}

func testKeepAliveTransfers(t *testing.T) {
	e := newEngine(t)
	e.EnableAsset(hdx, num.NewUint(10))

	require.NoError(t, e.Deposit(alice, hdx, num.NewUint(100)))

	// would leave 5 behind, below the deposit of 10
	err := e.Transfer(hdx, alice, bob, num.NewUint(95), true)
	require.ErrorIs(t, err, collateral.ErrAccountWouldBeDead)
	assert.Equal(t, "100", e.Balance(alice, hdx).String())

	// without keep-alive the account can be drained entirely
	require.NoError(t, e.Transfer(hdx, alice, bob, num.NewUint(95), false))
	assert.Equal(t, "5", e.Balance(alice, hdx).String())
}

func testDisabledAsset(t *testing.T) {
	e := newEngine(t)
	e.EnableAsset(hdx, num.UintZero())

	err := e.Deposit(alice, dai, num.NewUint(100))
	require.ErrorIs(t, err, collateral.ErrAssetNotEnabled)

	err = e.Transfer(dai, alice, bob, num.NewUint(1), false)
	require.ErrorIs(t, err, collateral.ErrAssetNotEnabled)
}

func testZeroTransfer(t *testing.T) {
	e := newEngine(t)
	e.EnableAsset(hdx, num.UintZero())

	require.NoError(t, e.Transfer(hdx, alice, bob, num.UintZero(), true))
	assert.True(t, e.Balance(bob, hdx).IsZero())
}

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

package pricing_test

import (
	"testing"

	"github.com/kaiachai/hydration-node/core/pricing"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *pricing.Engine {
	return pricing.New(logging.NewTestLogger(), pricing.NewDefaultConfig())
}

func TestEngine(t *testing.T) {
	t.Run("set prices are returned for their pair", func(t *testing.T) {
		e := newEngine()
		require.NoError(t, e.SetPrice("HDX", "DAI", types.NewPrice(2, 1)))

		price, ok := e.GetPrice("HDX", "DAI")
		require.True(t, ok)
		assert.Equal(t, "2", price.N.String())
		assert.Equal(t, "1", price.D.String())
	})

	t.Run("unknown pairs have no price", func(t *testing.T) {
		e := newEngine()
		_, ok := e.GetPrice("HDX", "DAI")
		assert.False(t, ok)
	})

	t.Run("an asset is priced one to one against itself", func(t *testing.T) {
		e := newEngine()
		price, ok := e.GetPrice("HDX", "HDX")
		require.True(t, ok)
		assert.Equal(t, "1", price.N.String())
		assert.Equal(t, "1", price.D.String())
	})

	t.Run("degenerate prices are rejected", func(t *testing.T) {
		e := newEngine()
		require.ErrorIs(t, e.SetPrice("HDX", "DAI", types.Price{N: num.UintZero(), D: num.NewUint(1)}), pricing.ErrInvalidPrice)
		require.ErrorIs(t, e.SetPrice("HDX", "DAI", types.Price{N: num.NewUint(1), D: num.UintZero()}), pricing.ErrInvalidPrice)
	})

	t.Run("setting a price replaces the previous one", func(t *testing.T) {
		e := newEngine()
		require.NoError(t, e.SetPrice("HDX", "DAI", types.NewPrice(2, 1)))
		require.NoError(t, e.SetPrice("HDX", "DAI", types.NewPrice(3, 2)))

		price, ok := e.GetPrice("HDX", "DAI")
		require.True(t, ok)
		assert.Equal(t, "3", price.N.String())
		assert.Equal(t, "2", price.D.String())
	})
}

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

package num_test

import (
	"testing"

	"github.com/kaiachai/hydration-node/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint(t *testing.T) {
	t.Run("MulDiv uses a full width intermediate", testMulDivFullWidth)
	t.Run("MulDiv rounds down", testMulDivRoundsDown)
	t.Run("MulDiv fails on zero divisor", testMulDivZeroDivisor)
	t.Run("SaturatingSub floors at zero", testSaturatingSub)
	t.Run("String round trip", testStringRoundTrip)
}

func testMulDivFullWidth(t *testing.T) {
	// (2^255) * 4 / 8 would overflow a 256 bit multiplication but the
	// result fits.
	x := num.MustUintFromString("57896044618658097711785492504343953926634992332820282019728792003956564819968")
	r, overflow := num.MulDiv(x, num.NewUint(4), num.NewUint(8))
	require.False(t, overflow)
	assert.Equal(t, "28948022309329048855892746252171976963317496166410141009864396001978282409984", r.String())

	// Result itself does not fit in 256 bits.
	_, overflow = num.MulDiv(x, num.NewUint(4), num.NewUint(1))
	require.True(t, overflow)
}

func testMulDivRoundsDown(t *testing.T) {
	r, overflow := num.MulDiv(num.NewUint(10), num.NewUint(1), num.NewUint(3))
	require.False(t, overflow)
	assert.Equal(t, "3", r.String())
}

func testMulDivZeroDivisor(t *testing.T) {
	_, overflow := num.MulDiv(num.NewUint(10), num.NewUint(1), num.UintZero())
	require.True(t, overflow)
}

func testSaturatingSub(t *testing.T) {
	z := num.UintZero().SaturatingSub(num.NewUint(10), num.NewUint(25))
	assert.True(t, z.IsZero())

	z = num.UintZero().SaturatingSub(num.NewUint(25), num.NewUint(10))
	assert.Equal(t, "15", z.String())
}

func testStringRoundTrip(t *testing.T) {
	u := num.NewUint(12345)
	got, overflow := num.UintFromString(u.String())
	require.False(t, overflow)
	assert.True(t, u.EQ(got))
}

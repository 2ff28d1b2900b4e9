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

package num

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Uint a wrapper for a big unsigned int.
type Uint struct {
	u uint256.Int
}

// NewUint creates a new Uint with the value of the
// uint64 passed as a parameter.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// UintZero returns a new Uint set to zero.
func UintZero() *Uint {
	return NewUint(0)
}

// MaxUint returns the maximum value of the Uint.
func MaxUint() *Uint {
	r := UintZero()
	r.u.SetAllOne()
	return r
}

// UintFromBig constructs a new Uint from a big.Int,
// returns true if overflow happened.
func UintFromBig(b *big.Int) (*Uint, bool) {
	u, overflow := uint256.FromBig(b)
	if overflow {
		return UintZero(), true
	}
	return &Uint{*u}, false
}

// UintFromString creates a new Uint from a string in base 10,
// returns true if an error or overflow happened.
func UintFromString(str string) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, 10)
	if !ok {
		return UintZero(), true
	}
	return UintFromBig(b)
}

// MustUintFromString creates a new Uint from a base 10 string and
// panics on failure. Meant for hard-coded constants and tests.
func MustUintFromString(str string) *Uint {
	u, overflow := UintFromString(str)
	if overflow {
		panic(fmt.Sprintf("invalid uint string %q", str))
	}
	return u
}

// UintFromDecimal returns a new Uint from a Decimal, the fractional part is
// discarded. Returns true on overflow or if the decimal is negative.
func UintFromDecimal(d Decimal) (*Uint, bool) {
	if d.IsNegative() {
		return UintZero(), true
	}
	return UintFromBig(d.BigInt())
}

// Sum returns the sum of all the values passed as parameters,
// equivalent to x + y + z.
func Sum(vals ...*Uint) *Uint {
	return UintZero().AddSum(vals...)
}

// Min returns the smallest of the 2 numbers.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a
	}
	return b
}

// Max returns the largest of the 2 numbers.
func Max(a, b *Uint) *Uint {
	if a.GT(b) {
		return a
	}
	return b
}

// MulDiv returns floor(x * y / z) using a full 512-bit intermediate for the
// multiplication. The second return value is true if the final result does
// not fit in 256 bits, or if z is zero.
func MulDiv(x, y, z *Uint) (*Uint, bool) {
	if z.IsZero() {
		return UintZero(), true
	}
	r := &Uint{}
	_, overflow := r.u.MulDivOverflow(&x.u, &y.u, &z.u)
	return r, overflow
}

func (z *Uint) Set(oth *Uint) *Uint {
	z.u.Set(&oth.u)
	return z
}

func (z Uint) Uint64() uint64 {
	return z.u.Uint64()
}

func (z Uint) BigInt() *big.Int {
	return z.u.ToBig()
}

func (z *Uint) ToDecimal() Decimal {
	return DecimalFromUint(z)
}

// Add will add x and y then store the result into z,
// equivalent to `z = x + y`. z is returned for convenience,
// no new variable is created.
func (z *Uint) Add(x, y *Uint) *Uint {
	z.u.Add(&x.u, &y.u)
	return z
}

// AddSum adds multiple values at the same time to a given uint,
// so z.AddSum(x, y) is equivalent to z + x + y.
func (z *Uint) AddSum(vals ...*Uint) *Uint {
	for _, x := range vals {
		z.u.Add(&z.u, &x.u)
	}
	return z
}

// AddOverflow will add x and y then store the result into z.
// True is returned if an overflow occurred.
func (z *Uint) AddOverflow(x, y *Uint) (*Uint, bool) {
	_, overflow := z.u.AddOverflow(&x.u, &y.u)
	return z, overflow
}

// Sub will subtract y from x then store the result into z,
// equivalent to `z = x - y`.
func (z *Uint) Sub(x, y *Uint) *Uint {
	z.u.Sub(&x.u, &y.u)
	return z
}

// SaturatingSub subtracts y from x, flooring at zero, and stores the
// result into z.
func (z *Uint) SaturatingSub(x, y *Uint) *Uint {
	if y.GTE(x) {
		z.u.SetUint64(0)
		return z
	}
	z.u.Sub(&x.u, &y.u)
	return z
}

// Mul will multiply x and y then store the result into z,
// equivalent to `z = x * y`.
func (z *Uint) Mul(x, y *Uint) *Uint {
	z.u.Mul(&x.u, &y.u)
	return z
}

// Div will divide x by y then store the result into z,
// equivalent to `z = x / y`.
func (z *Uint) Div(x, y *Uint) *Uint {
	z.u.Div(&x.u, &y.u)
	return z
}

// LT checks if the value stored in z is lesser than oth,
// equivalent to `z < oth`.
func (z Uint) LT(oth *Uint) bool {
	return z.u.Lt(&oth.u)
}

// LTE checks if the value stored in z is lesser than or equal to oth,
// equivalent to `z <= oth`.
func (z Uint) LTE(oth *Uint) bool {
	return z.u.Lt(&oth.u) || z.u.Eq(&oth.u)
}

// EQ checks if the value stored in z is equal to oth,
// equivalent to `z == oth`.
func (z Uint) EQ(oth *Uint) bool {
	return z.u.Eq(&oth.u)
}

// NEQ checks if the value stored in z is different than oth,
// equivalent to `z != oth`.
func (z Uint) NEQ(oth *Uint) bool {
	return !z.u.Eq(&oth.u)
}

// GT checks if the value stored in z is greater than oth,
// equivalent to `z > oth`.
func (z Uint) GT(oth *Uint) bool {
	return z.u.Gt(&oth.u)
}

// GTE checks if the value stored in z is greater than or equal to oth,
// equivalent to `z >= oth`.
func (z Uint) GTE(oth *Uint) bool {
	return z.u.Gt(&oth.u) || z.u.Eq(&oth.u)
}

// IsZero returns whether z == 0 or not.
func (z Uint) IsZero() bool {
	return z.u.IsZero()
}

// Copy creates a copy of the uint, equivalent to `z = x`.
func (z *Uint) Copy(x *Uint) *Uint {
	z.u = x.u
	return z
}

// Clone creates a copy of this value, equivalent to `x := z`.
func (z Uint) Clone() *Uint {
	return &Uint{z.u}
}

// String returns the stored value as a base 10 string.
func (z Uint) String() string {
	return z.u.ToBig().String()
}

// Format implements fmt.Formatter.
func (z Uint) Format(s fmt.State, ch rune) {
	z.u.Format(s, ch)
}

// Bytes returns the internal representation of the Uint as a
// big endian [32]byte array.
func (z Uint) Bytes() [32]byte {
	return z.u.Bytes32()
}

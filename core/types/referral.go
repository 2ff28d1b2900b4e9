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

package types

import (
	"github.com/kaiachai/hydration-node/libs/num"
)

type (
	// PartyID identifies an account on the ledger.
	PartyID string
	// AssetID identifies a fungible asset on the ledger.
	AssetID string
	// ReferralCode is an upper-cased alphanumeric code identifying a referrer.
	ReferralCode string
)

func (p PartyID) String() string {
	return string(p)
}

func (a AssetID) String() string {
	return string(a)
}

func (c ReferralCode) String() string {
	return string(c)
}

// Level is the volume based standing of a referrer. It determines which
// reward percentages apply to the fees generated by their traders.
// LevelNone is reserved for traders without a referrer and never advances.
type Level int32

const (
	LevelNone Level = iota
	LevelTier0
	LevelTier1
	LevelTier2
	LevelTier3
	LevelTier4
)

var levelNames = map[Level]string{
	LevelNone:  "none",
	LevelTier0: "tier0",
	LevelTier1: "tier1",
	LevelTier2: "tier2",
	LevelTier3: "tier3",
	LevelTier4: "tier4",
}

func (l Level) String() string {
	name, ok := levelNames[l]
	if !ok {
		return "unknown"
	}
	return name
}

// IsMaxLevel reports whether the level is the tier ceiling.
func (l Level) IsMaxLevel() bool {
	return l == LevelTier4
}

// NextLevel returns the level above the current one. LevelNone and the
// tier ceiling return themselves.
func (l Level) NextLevel() Level {
	switch l {
	case LevelTier0, LevelTier1, LevelTier2, LevelTier3:
		return l + 1
	default:
		return l
	}
}

// AllLevels lists every level in ascending order. Used for deterministic
// iteration over per-level configuration.
func AllLevels() []Level {
	return []Level{LevelNone, LevelTier0, LevelTier1, LevelTier2, LevelTier3, LevelTier4}
}

// FeeDistribution is the split of a trade fee between the referrer, the
// trader and an optional external beneficiary. Fractions are in [0, 1] and
// their sum must not exceed 1, enforced when the distribution is set.
type FeeDistribution struct {
	Referrer num.Decimal
	Trader   num.Decimal
	External num.Decimal
}

// EmptyFeeDistribution keeps everything with the protocol.
func EmptyFeeDistribution() FeeDistribution {
	return FeeDistribution{
		Referrer: num.DecimalZero(),
		Trader:   num.DecimalZero(),
		External: num.DecimalZero(),
	}
}

// Valid reports whether every fraction is in [0, 1] and the total does not
// exceed 1.
func (d FeeDistribution) Valid() bool {
	one := num.DecimalOne()
	for _, f := range []num.Decimal{d.Referrer, d.Trader, d.External} {
		if f.IsNegative() || f.GreaterThan(one) {
			return false
		}
	}
	return !d.Referrer.Add(d.Trader).Add(d.External).GreaterThan(one)
}

// ReferrerStats tracks a referrer's standing: the current level and the
// rewards accumulated over time, which unlock the next level.
type ReferrerStats struct {
	Level        Level
	TotalRewards *num.Uint
}

func (s *ReferrerStats) Clone() *ReferrerStats {
	return &ReferrerStats{
		Level:        s.Level,
		TotalRewards: s.TotalRewards.Clone(),
	}
}

// AssetAmount pairs an asset with an amount, used in conversion events.
type AssetAmount struct {
	Asset  AssetID
	Amount *num.Uint
}

// Price is a rational price between two assets.
type Price struct {
	N *num.Uint
	D *num.Uint
}

func NewPrice(n, d uint64) Price {
	return Price{N: num.NewUint(n), D: num.NewUint(d)}
}

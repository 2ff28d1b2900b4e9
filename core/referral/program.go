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

package referral

import (
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"

	"github.com/pkg/errors"
)

// TierBenefit pairs the cumulative reward volume required to reach a level
// with the global fee distribution applied at that level.
type TierBenefit struct {
	RequiredVolume *num.Uint
	Rewards        types.FeeDistribution
}

// StaticTierPolicy is a fixed tier table. It is the production TierPolicy,
// fed from the network configuration at start up.
type StaticTierPolicy struct {
	tiers map[types.Level]TierBenefit
}

func NewStaticTierPolicy(tiers map[types.Level]TierBenefit) *StaticTierPolicy {
	cpy := make(map[types.Level]TierBenefit, len(tiers))
	for level, benefit := range tiers {
		cpy[level] = TierBenefit{
			RequiredVolume: benefit.RequiredVolume.Clone(),
			Rewards:        benefit.Rewards,
		}
	}
	return &StaticTierPolicy{tiers: cpy}
}

// VolumeAndRewards returns the required volume and fee distribution for the
// given level. Unknown levels get an unreachable volume and an empty
// distribution.
func (p *StaticTierPolicy) VolumeAndRewards(level types.Level) (*num.Uint, types.FeeDistribution) {
	benefit, ok := p.tiers[level]
	if !ok {
		return num.MaxUint(), types.EmptyFeeDistribution()
	}
	return benefit.RequiredVolume.Clone(), benefit.Rewards
}

// TiersFromConfig parses the configured tier ladder into a tier table.
// The first entry is the entry tier, ordering is preserved.
func TiersFromConfig(config Config) (map[types.Level]TierBenefit, error) {
	tiers := make(map[types.Level]TierBenefit, len(config.Tiers))
	level := types.LevelTier0
	for i, tier := range config.Tiers {
		volume, overflow := num.UintFromString(tier.RequiredVolume)
		if overflow {
			return nil, errors.Errorf("invalid required volume %q for tier %d", tier.RequiredVolume, i)
		}
		rewards, err := parseTierRewards(tier)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid rewards for tier %d", i)
		}
		if !rewards.Valid() {
			return nil, errors.Errorf("rewards for tier %d exceed 100%%", i)
		}
		tiers[level] = TierBenefit{RequiredVolume: volume, Rewards: rewards}
		if level.IsMaxLevel() {
			break
		}
		level = level.NextLevel()
	}
	return tiers, nil
}

func parseTierRewards(tier TierConfig) (types.FeeDistribution, error) {
	referrer, err := num.DecimalFromString(tier.Referrer)
	if err != nil {
		return types.FeeDistribution{}, err
	}
	trader, err := num.DecimalFromString(tier.Trader)
	if err != nil {
		return types.FeeDistribution{}, err
	}
	external, err := num.DecimalFromString(tier.External)
	if err != nil {
		return types.FeeDistribution{}, err
	}
	return types.FeeDistribution{
		Referrer: referrer,
		Trader:   trader,
		External: external,
	}, nil
}

// advanceLevel walks the tier ladder upwards while the cumulative reward
// total meets the next tier threshold, so one large claim can jump several
// tiers at once. Only the resulting level is reported to the caller.
// LevelNone never advances, it is the channel for traders without a
// referrer.
func advanceLevel(current types.Level, total *num.Uint, tiers TierPolicy) types.Level {
	if current == types.LevelNone {
		return current
	}
	for !current.IsMaxLevel() {
		next := current.NextLevel()
		required, _ := tiers.VolumeAndRewards(next)
		if total.LT(required) {
			break
		}
		current = next
	}
	return current
}

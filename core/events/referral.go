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

package events

import (
	"context"

	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
)

// CodeRegistered is emitted when a referral code has been registered.
type CodeRegistered struct {
	*Base
	code  types.ReferralCode
	party types.PartyID
}

func NewCodeRegisteredEvent(ctx context.Context, code types.ReferralCode, party types.PartyID) *CodeRegistered {
	return &CodeRegistered{
		Base:  newBase(ctx, CodeRegisteredEvent),
		code:  code,
		party: party,
	}
}

func (e CodeRegistered) Code() types.ReferralCode {
	return e.code
}

func (e CodeRegistered) Party() types.PartyID {
	return e.party
}

// CodeLinked is emitted when a trader account has been linked to a
// referral code.
type CodeLinked struct {
	*Base
	party    types.PartyID
	code     types.ReferralCode
	referrer types.PartyID
}

func NewCodeLinkedEvent(ctx context.Context, party types.PartyID, code types.ReferralCode, referrer types.PartyID) *CodeLinked {
	return &CodeLinked{
		Base:     newBase(ctx, CodeLinkedEvent),
		party:    party,
		code:     code,
		referrer: referrer,
	}
}

func (e CodeLinked) Party() types.PartyID {
	return e.party
}

func (e CodeLinked) Code() types.ReferralCode {
	return e.code
}

func (e CodeLinked) Referrer() types.PartyID {
	return e.referrer
}

// Converted is emitted when an asset held by the reward pot has been
// converted to the reward asset.
type Converted struct {
	*Base
	from types.AssetAmount
	to   types.AssetAmount
}

func NewConvertedEvent(ctx context.Context, from, to types.AssetAmount) *Converted {
	return &Converted{
		Base: newBase(ctx, ConvertedEvent),
		from: from,
		to:   to,
	}
}

func (e Converted) From() types.AssetAmount {
	return e.from
}

func (e Converted) To() types.AssetAmount {
	return e.to
}

// Claimed is emitted when accumulated rewards have been claimed.
type Claimed struct {
	*Base
	party           types.PartyID
	referrerRewards *num.Uint
	traderRewards   *num.Uint
}

func NewClaimedEvent(ctx context.Context, party types.PartyID, referrerRewards, traderRewards *num.Uint) *Claimed {
	return &Claimed{
		Base:            newBase(ctx, ClaimedEvent),
		party:           party,
		referrerRewards: referrerRewards.Clone(),
		traderRewards:   traderRewards.Clone(),
	}
}

func (e Claimed) Party() types.PartyID {
	return e.party
}

func (e Claimed) ReferrerRewards() *num.Uint {
	return e.referrerRewards.Clone()
}

func (e Claimed) TraderRewards() *num.Uint {
	return e.traderRewards.Clone()
}

// RewardsUpdated is emitted when new asset reward percentages have been set.
type RewardsUpdated struct {
	*Base
	asset        types.AssetID
	level        types.Level
	distribution types.FeeDistribution
}

func NewRewardsUpdatedEvent(ctx context.Context, asset types.AssetID, level types.Level, distribution types.FeeDistribution) *RewardsUpdated {
	return &RewardsUpdated{
		Base:         newBase(ctx, RewardsUpdatedEvent),
		asset:        asset,
		level:        level,
		distribution: distribution,
	}
}

func (e RewardsUpdated) Asset() types.AssetID {
	return e.asset
}

func (e RewardsUpdated) Level() types.Level {
	return e.level
}

func (e RewardsUpdated) Distribution() types.FeeDistribution {
	return e.distribution
}

// LevelUp is emitted when a referrer reaches a new level.
type LevelUp struct {
	*Base
	party types.PartyID
	level types.Level
}

func NewLevelUpEvent(ctx context.Context, party types.PartyID, level types.Level) *LevelUp {
	return &LevelUp{
		Base:  newBase(ctx, LevelUpEvent),
		party: party,
		level: level,
	}
}

func (e LevelUp) Party() types.PartyID {
	return e.party
}

func (e LevelUp) Level() types.Level {
	return e.level
}

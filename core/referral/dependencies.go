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
	"github.com/kaiachai/hydration-node/core/events"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
)

// Collateral is used to move fees into the reward pot and rewards out of it.
type Collateral interface {
	Transfer(asset types.AssetID, from, to types.PartyID, amount *num.Uint, keepAlive bool) error
	Balance(party types.PartyID, asset types.AssetID) *num.Uint
}

// Converter exchanges an asset held by the reward pot into the reward
// asset. Implementations distinguish the two negligible-amount failures
// (types.ErrConversionMinTradingAmountNotReached and
// types.ErrConversionZeroAmountReceived) from all other errors.
type Converter interface {
	Convert(account types.PartyID, assetIn, assetOut types.AssetID, amount *num.Uint) (*num.Uint, error)
}

// PriceProvider resolves the rational price used to value a fee cut in the
// reward asset when minting shares.
type PriceProvider interface {
	GetPrice(a, b types.AssetID) (types.Price, bool)
}

// TierPolicy provides, per level, the cumulative reward volume required to
// reach it and the fee distribution used when no explicit per-asset
// override is set.
type TierPolicy interface {
	VolumeAndRewards(level types.Level) (*num.Uint, types.FeeDistribution)
}

// Broker is used to notify referral activity.
type Broker interface {
	Send(event events.Event)
}

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

package pricing

import (
	"errors"

	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"
)

// ErrInvalidPrice is returned when setting a price with a zero denominator
// or a zero numerator.
var ErrInvalidPrice = errors.New("invalid price")

type pair struct {
	a types.AssetID
	b types.AssetID
}

// Engine is the price provider. Prices are rational numbers fed
// administratively (in production by the price oracle of the host chain)
// and looked up by ordered asset pair. A missing pair is not an error,
// consumers treat it as "asset not integrated yet".
type Engine struct {
	log    *logging.Logger
	prices map[pair]types.Price
}

func New(log *logging.Logger, config Config) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:    log,
		prices: map[pair]types.Price{},
	}
}

// SetPrice records the price of b denominated in a as the fraction n/d.
func (e *Engine) SetPrice(a, b types.AssetID, price types.Price) error {
	if price.N == nil || price.D == nil || price.N.IsZero() || price.D.IsZero() {
		return ErrInvalidPrice
	}
	e.prices[pair{a: a, b: b}] = types.Price{N: price.N.Clone(), D: price.D.Clone()}
	e.log.Info("price updated",
		logging.String("asset-a", a.String()),
		logging.String("asset-b", b.String()),
		logging.String("numerator", price.N.String()),
		logging.String("denominator", price.D.String()),
	)
	return nil
}

// GetPrice returns the price for the ordered pair (a, b) and whether it is
// known.
func (e *Engine) GetPrice(a, b types.AssetID) (types.Price, bool) {
	if a == b {
		one := num.NewUint(1)
		return types.Price{N: one, D: one.Clone()}, true
	}
	price, ok := e.prices[pair{a: a, b: b}]
	if !ok {
		return types.Price{}, false
	}
	return types.Price{N: price.N.Clone(), D: price.D.Clone()}, true
}

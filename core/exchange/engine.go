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

package exchange

import (
	"errors"

	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"
)

var (
	// ErrNoPriceForPair is returned when no price is known for the asset
	// pair to convert between. Unlike the negligible-amount failures this
	// one is a hard error for the callers.
	ErrNoPriceForPair = errors.New("no price for asset pair")

	// ErrConversionOverflow is returned when the converted amount does not
	// fit the balance type.
	ErrConversionOverflow = errors.New("conversion amount overflow")
)

// Collateral is the ledger the conversion legs settle on.
type Collateral interface {
	Balance(party types.PartyID, asset types.AssetID) *num.Uint
	Withdraw(party types.PartyID, asset types.AssetID, amount *num.Uint) error
	Deposit(party types.PartyID, asset types.AssetID, amount *num.Uint) error
}

// PriceProvider resolves the rational price between two assets.
type PriceProvider interface {
	GetPrice(a, b types.AssetID) (types.Price, bool)
}

// Engine converts an asset held on an account into another asset at the
// provided price. It stands in for the host chain trading venue: the two
// legs settle atomically on the collateral ledger.
type Engine struct {
	log        *logging.Logger
	collateral Collateral
	prices     PriceProvider

	// conversions below this input amount are rejected as economically
	// negligible.
	minTradingAmount *num.Uint
}

func New(log *logging.Logger, config Config, collateral Collateral, prices PriceProvider) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	minAmount, overflow := num.UintFromString(config.MinTradingAmount)
	if overflow {
		log.Warn("invalid minimum trading amount, using zero",
			logging.String("min-trading-amount", config.MinTradingAmount),
		)
		minAmount = num.UintZero()
	}

	return &Engine{
		log:              log,
		collateral:       collateral,
		prices:           prices,
		minTradingAmount: minAmount,
	}
}

// OnMinTradingAmountUpdate updates the minimum convertible amount.
func (e *Engine) OnMinTradingAmountUpdate(amount *num.Uint) {
	e.minTradingAmount = amount.Clone()
}

// Convert exchanges amount of assetIn held by the account into assetOut,
// credited to the same account. Returns the amount received.
func (e *Engine) Convert(account types.PartyID, assetIn, assetOut types.AssetID, amount *num.Uint) (*num.Uint, error) {
	if amount.LT(e.minTradingAmount) {
		return nil, types.ErrConversionMinTradingAmountNotReached
	}

	price, ok := e.prices.GetPrice(assetOut, assetIn)
	if !ok {
		return nil, ErrNoPriceForPair
	}

	amountOut, overflow := num.MulDiv(amount, price.N, price.D)
	if overflow {
		return nil, ErrConversionOverflow
	}
	if amountOut.IsZero() {
		return nil, types.ErrConversionZeroAmountReceived
	}

	if err := e.collateral.Withdraw(account, assetIn, amount); err != nil {
		return nil, err
	}
	if err := e.collateral.Deposit(account, assetOut, amountOut); err != nil {
		// restore the leg already settled
		if rerr := e.collateral.Deposit(account, assetIn, amount); rerr != nil {
			e.log.Error("could not restore conversion leg",
				logging.String("account", account.String()),
				logging.String("asset", assetIn.String()),
				logging.Error(rerr),
			)
		}
		return nil, err
	}

	if e.log.IsDebug() {
		e.log.Debug("converted",
			logging.String("account", account.String()),
			logging.String("asset-in", assetIn.String()),
			logging.String("asset-out", assetOut.String()),
			logging.String("amount-in", amount.String()),
			logging.String("amount-out", amountOut.String()),
		)
	}
	return amountOut, nil
}

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

package collateral

import (
	"errors"
	"fmt"

	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"
)

var (
	// ErrInsufficientFunds is returned when the source account does not hold
	// enough of the asset to perform the transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountWouldBeDead is returned when a keep-alive transfer would
	// leave the source account below the asset existential deposit.
	ErrAccountWouldBeDead = errors.New("transfer would leave the source account below the existential deposit")

	// ErrAssetNotEnabled is returned when the asset has not been enabled in
	// the ledger.
	ErrAssetNotEnabled = errors.New("asset not enabled")

	// ErrBalanceOverflow is returned when crediting an account would
	// overflow its balance.
	ErrBalanceOverflow = errors.New("account balance overflow")
)

// Engine is the asset-transfer ledger. It tracks fungible balances per
// party and asset and moves them atomically. Every engine holding value on
// behalf of the protocol (the referral reward pot among them) is an account
// like any other here.
type Engine struct {
	log *logging.Logger

	// balances indexed by party then asset.
	balances map[types.PartyID]map[types.AssetID]*num.Uint

	// existential deposit per enabled asset. A keep-alive transfer must
	// leave at least this amount behind on the source account.
	existential map[types.AssetID]*num.Uint
}

func New(log *logging.Logger, config Config) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Engine{
		log:         log,
		balances:    map[types.PartyID]map[types.AssetID]*num.Uint{},
		existential: map[types.AssetID]*num.Uint{},
	}
}

// EnableAsset registers an asset with its existential deposit. Enabling an
// already enabled asset updates the deposit.
func (e *Engine) EnableAsset(asset types.AssetID, existentialDeposit *num.Uint) {
	e.existential[asset] = existentialDeposit.Clone()
	e.log.Info("asset enabled",
		logging.String("asset", asset.String()),
		logging.String("existential-deposit", existentialDeposit.String()),
	)
}

// AssetEnabled reports whether the asset has been enabled in the ledger.
func (e *Engine) AssetEnabled(asset types.AssetID) bool {
	_, ok := e.existential[asset]
	return ok
}

// Deposit credits the party account with the given amount.
func (e *Engine) Deposit(party types.PartyID, asset types.AssetID, amount *num.Uint) error {
	if !e.AssetEnabled(asset) {
		return fmt.Errorf("could not deposit %s: %w", asset, ErrAssetNotEnabled)
	}
	return e.credit(party, asset, amount)
}

// Withdraw debits the party account with the given amount, the account may
// be left below the existential deposit.
func (e *Engine) Withdraw(party types.PartyID, asset types.AssetID, amount *num.Uint) error {
	if !e.AssetEnabled(asset) {
		return fmt.Errorf("could not withdraw %s: %w", asset, ErrAssetNotEnabled)
	}
	if amount.IsZero() {
		return nil
	}
	balance := e.Balance(party, asset)
	if balance.LT(amount) {
		return ErrInsufficientFunds
	}
	e.balances[party][asset] = num.UintZero().Sub(balance, amount)
	return nil
}

// Balance returns the balance held by the party in the given asset. Unknown
// accounts hold zero.
func (e *Engine) Balance(party types.PartyID, asset types.AssetID) *num.Uint {
	byAsset, ok := e.balances[party]
	if !ok {
		return num.UintZero()
	}
	balance, ok := byAsset[asset]
	if !ok {
		return num.UintZero()
	}
	return balance.Clone()
}

// Transfer moves amount of asset from one party to the other as a single
// atomic operation. With keepAlive set, the source account must retain at
// least the asset existential deposit after the move.
func (e *Engine) Transfer(asset types.AssetID, from, to types.PartyID, amount *num.Uint, keepAlive bool) error {
	if !e.AssetEnabled(asset) {
		return fmt.Errorf("could not transfer %s: %w", asset, ErrAssetNotEnabled)
	}
	if amount.IsZero() {
		return nil
	}

	balance := e.Balance(from, asset)
	if balance.LT(amount) {
		return ErrInsufficientFunds
	}
	remaining := num.UintZero().Sub(balance, amount)
	if keepAlive && remaining.LT(e.existential[asset]) {
		return ErrAccountWouldBeDead
	}

	// No mutation can fail past this point, the move is atomic.
	e.balances[from][asset] = remaining
	if err := e.credit(to, asset, amount); err != nil {
		// restore the debit, the destination was left untouched
		e.balances[from][asset] = balance
		return err
	}

	if e.log.IsDebug() {
		e.log.Debug("transfer",
			logging.String("asset", asset.String()),
			logging.String("from", from.String()),
			logging.String("to", to.String()),
			logging.String("amount", amount.String()),
			logging.Bool("keep-alive", keepAlive),
		)
	}
	return nil
}

func (e *Engine) credit(party types.PartyID, asset types.AssetID, amount *num.Uint) error {
	byAsset, ok := e.balances[party]
	if !ok {
		byAsset = map[types.AssetID]*num.Uint{}
		e.balances[party] = byAsset
	}
	balance, ok := byAsset[asset]
	if !ok {
		balance = num.UintZero()
	}
	updated, overflow := num.UintZero().AddOverflow(balance, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	byAsset[asset] = updated
	return nil
}

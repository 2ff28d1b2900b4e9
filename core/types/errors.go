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

import "errors"

// Conversion failures shared between the exchange engine and its consumers.
// The referral engine tolerates exactly these two kinds during a claim, any
// other conversion failure aborts the claim. They are defined here so a
// different conversion backend can return the same kinds.
var (
	// ErrConversionMinTradingAmountNotReached is returned when the amount to
	// convert is below the minimum tradable amount.
	ErrConversionMinTradingAmountNotReached = errors.New("minimum trading amount for conversion has not been reached")

	// ErrConversionZeroAmountReceived is returned when a conversion would
	// produce a zero output amount.
	ErrConversionZeroAmountReceived = errors.New("zero amount received from conversion")
)

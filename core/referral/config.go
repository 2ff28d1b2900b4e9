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
	"time"

	"github.com/kaiachai/hydration-node/config/encoding"
	"github.com/kaiachai/hydration-node/logging"
)

const namedLogger = "referral"

// Config represents the configuration of the referral engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// RewardAsset is the single asset all claims are paid out in.
	RewardAsset string `long:"reward-asset" description:"The asset rewards are paid out in"`

	// PotAccount is the protocol owned account accumulating fee cuts until
	// they are claimed.
	PotAccount string `long:"pot-account" description:"The account holding not yet claimed rewards"`

	// SeedAmount is the reward asset balance that always stays in the pot
	// so the account is never deactivated.
	SeedAmount string `long:"seed-amount" description:"The reward asset floor kept in the pot"`

	// ExternalAccount optionally receives the external cut of every fee.
	ExternalAccount string `long:"external-account" description:"The optional external fee beneficiary"`

	RegistrationFeeAsset       string `long:"registration-fee-asset" description:"The asset the code registration fee is paid in"`
	RegistrationFeeAmount      string `long:"registration-fee-amount" description:"The code registration fee"`
	RegistrationFeeBeneficiary string `long:"registration-fee-beneficiary" description:"The account receiving registration fees"`

	MinCodeLength int `long:"min-code-length" description:"The minimum referral code length"`
	CodeLength    int `long:"code-length" description:"The maximum referral code length"`

	// CostPerConversion is the work unit cost of converting one pending
	// asset, bounding the background drain.
	CostPerConversion uint64 `long:"cost-per-conversion" description:"The work units one pending conversion consumes"`

	// DrainInterval and DrainBudget drive the periodic background drain of
	// the pending conversion queue.
	DrainInterval encoding.Duration `long:"drain-interval" description:"How often the pending conversion queue is drained"`
	DrainBudget   uint64            `long:"drain-budget" description:"The work units one drain cycle may consume"`

	// Tiers is the ladder of tier benefits, first entry is the entry tier.
	Tiers []TierConfig `group:"Tiers" namespace:"tiers"`
}

// TierConfig is the configuration of one tier of the ladder: the
// cumulative rewards required to reach it and the default fee fractions
// applied at it.
type TierConfig struct {
	RequiredVolume string `long:"required-volume" description:"The cumulative rewards required to reach the tier"`
	Referrer       string `long:"referrer" description:"The referrer fee fraction"`
	Trader         string `long:"trader" description:"The trader fee fraction"`
	External       string `long:"external" description:"The external beneficiary fee fraction"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:                      encoding.LogLevel{Level: logging.InfoLevel},
		RewardAsset:                "HDX",
		PotAccount:                 "reward-pot",
		SeedAmount:                 "1000000000000",
		ExternalAccount:            "",
		RegistrationFeeAsset:       "HDX",
		RegistrationFeeAmount:      "222000000000000",
		RegistrationFeeBeneficiary: "treasury",
		MinCodeLength:              4,
		CodeLength:                 10,
		CostPerConversion:          1,
		DrainInterval:              encoding.Duration{Duration: 10 * time.Second},
		DrainBudget:                10,
		Tiers: []TierConfig{
			{RequiredVolume: "0", Referrer: "0.05", Trader: "0.02", External: "0"},
			{RequiredVolume: "305000000000000000", Referrer: "0.1", Trader: "0.05", External: "0"},
			{RequiredVolume: "4583000000000000000", Referrer: "0.15", Trader: "0.07", External: "0"},
			{RequiredVolume: "61038000000000000000", Referrer: "0.2", Trader: "0.09", External: "0"},
			{RequiredVolume: "763975000000000000000", Referrer: "0.25", Trader: "0.1", External: "0"},
		},
	}
}

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
	"context"
	"strings"

	"github.com/kaiachai/hydration-node/core/events"
	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"
	"github.com/kaiachai/hydration-node/logging"
	"github.com/kaiachai/hydration-node/metrics"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	// ErrCodeTooLong is returned when a referral code exceeds the maximum
	// length.
	ErrCodeTooLong = errors.New("referral code is too long")

	// ErrCodeTooShort is returned when a referral code is below the minimum
	// length.
	ErrCodeTooShort = errors.New("referral code is too short")

	// ErrInvalidCharacter is returned when a referral code contains a
	// character outside [A-Z0-9].
	ErrInvalidCharacter = errors.New("referral code contains an invalid character")

	// ErrAlreadyRegistered is returned when a party registering a code
	// already owns one.
	ErrAlreadyRegistered = errors.New("party already registered a referral code")

	// ErrCodeAlreadyExists is returned when the referral code is taken by
	// another party.
	ErrCodeAlreadyExists = errors.New("referral code already exists")

	// ErrInvalidCode is returned when linking to a code nobody registered.
	ErrInvalidCode = errors.New("unknown referral code")

	// ErrAlreadyLinked is returned when a party linking to a code is
	// already linked to one. Links are created once and never overwritten.
	ErrAlreadyLinked = errors.New("party is already linked to a referral code")

	// ErrLinkNotAllowed is returned when a party links to their own code.
	ErrLinkNotAllowed = errors.New("cannot link to own referral code")

	// ErrIncorrectRewardCalculation is returned when computed rewards
	// exceed the amount they are carved from. It guards against
	// misconfigured percentages and arithmetic drift, and should be
	// unreachable with a valid policy table.
	ErrIncorrectRewardCalculation = errors.New("incorrect reward calculation")

	// ErrIncorrectRewardPercentage is returned when a fee distribution
	// update does not keep the fractions within [0, 1] summing to at most 1.
	ErrIncorrectRewardPercentage = errors.New("incorrect reward percentage")

	// ErrZeroAmount is returned when an explicit conversion finds nothing
	// to convert.
	ErrZeroAmount = errors.New("zero amount to convert")

	// ErrOverflow is returned when reward or share math does not fit the
	// balance type. The reward path never silently saturates.
	ErrOverflow = errors.New("math overflow")
)

// Engine is the referral reward ledger. It tracks proportional claims
// against the shared reward pot as shares, queues non reward assets held
// by the pot for conversion, settles claims and advances referrers through
// volume based tiers. Every mutation is deterministic so replicas running
// the same sequence of entry points hold bit for bit identical state.
type Engine struct {
	log    *logging.Logger
	broker Broker

	collateral Collateral
	converter  Converter
	prices     PriceProvider
	tiers      TierPolicy

	rewardAsset types.AssetID
	pot         types.PartyID
	// seed stays behind in the pot so the account survives payouts.
	seed *num.Uint
	// external receives the external cut of every fee, accounted in the
	// trader shares bucket. Empty when no beneficiary is configured.
	external types.PartyID

	registrationFeeAsset       types.AssetID
	registrationFeeAmount      *num.Uint
	registrationFeeBeneficiary types.PartyID

	minCodeLength int
	maxCodeLength int

	// costPerConversion is the work unit price of one pending conversion,
	// used to bound the background drain.
	costPerConversion uint64

	codeOwners map[types.ReferralCode]types.PartyID
	partyCodes map[types.PartyID]types.ReferralCode
	links      map[types.PartyID]types.PartyID
	referrers  map[types.PartyID]*types.ReferrerStats

	referrerShares map[types.PartyID]*num.Uint
	traderShares   map[types.PartyID]*num.Uint
	totalShares    *num.Uint

	// assetRewards holds the per asset overrides of the fee distribution.
	// Resolution falls back to the tier policy global when absent.
	assetRewards map[types.AssetID]map[types.Level]types.FeeDistribution

	// pending is the set of assets held by the pot awaiting conversion
	// into the reward asset. Always iterated in sorted order.
	pending map[types.AssetID]struct{}
}

func New(
	log *logging.Logger,
	config Config,
	collateral Collateral,
	converter Converter,
	prices PriceProvider,
	tiers TierPolicy,
	broker Broker,
) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	seed, overflow := num.UintFromString(config.SeedAmount)
	if overflow {
		log.Warn("invalid pot seed amount, using zero",
			logging.String("seed-amount", config.SeedAmount),
		)
		seed = num.UintZero()
	}
	registrationFee, overflow := num.UintFromString(config.RegistrationFeeAmount)
	if overflow {
		log.Warn("invalid registration fee amount, using zero",
			logging.String("registration-fee-amount", config.RegistrationFeeAmount),
		)
		registrationFee = num.UintZero()
	}

	return &Engine{
		log:                        log,
		broker:                     broker,
		collateral:                 collateral,
		converter:                  converter,
		prices:                     prices,
		tiers:                      tiers,
		rewardAsset:                types.AssetID(config.RewardAsset),
		pot:                        types.PartyID(config.PotAccount),
		seed:                       seed,
		external:                   types.PartyID(config.ExternalAccount),
		registrationFeeAsset:       types.AssetID(config.RegistrationFeeAsset),
		registrationFeeAmount:      registrationFee,
		registrationFeeBeneficiary: types.PartyID(config.RegistrationFeeBeneficiary),
		minCodeLength:              config.MinCodeLength,
		maxCodeLength:              config.CodeLength,
		costPerConversion:          config.CostPerConversion,
		codeOwners:                 map[types.ReferralCode]types.PartyID{},
		partyCodes:                 map[types.PartyID]types.ReferralCode{},
		links:                      map[types.PartyID]types.PartyID{},
		referrers:                  map[types.PartyID]*types.ReferrerStats{},
		referrerShares:             map[types.PartyID]*num.Uint{},
		traderShares:               map[types.PartyID]*num.Uint{},
		totalShares:                num.UintZero(),
		assetRewards:               map[types.AssetID]map[types.Level]types.FeeDistribution{},
		pending:                    map[types.AssetID]struct{}{},
	}
}

// RegisterCode registers a referral code for the party. The code is upper
// cased before any validation. Registration charges the configured fee
// from the party, keeping the party account alive, and creates the
// referrer record at the entry tier.
func (e *Engine) RegisterCode(ctx context.Context, party types.PartyID, code types.ReferralCode) error {
	normalized, err := e.normalizeCode(code)
	if err != nil {
		return err
	}
	if _, ok := e.partyCodes[party]; ok {
		return ErrAlreadyRegistered
	}
	if _, ok := e.codeOwners[normalized]; ok {
		return ErrCodeAlreadyExists
	}

	if !e.registrationFeeAmount.IsZero() {
		if err := e.collateral.Transfer(
			e.registrationFeeAsset,
			party,
			e.registrationFeeBeneficiary,
			e.registrationFeeAmount,
			true,
		); err != nil {
			return errors.Wrap(err, "could not charge the registration fee")
		}
	}

	e.codeOwners[normalized] = party
	e.partyCodes[party] = normalized
	e.referrers[party] = &types.ReferrerStats{
		Level:        types.LevelTier0,
		TotalRewards: num.UintZero(),
	}

	e.broker.Send(events.NewCodeRegisteredEvent(ctx, normalized, party))
	return nil
}

// LinkCode links the party to the referrer owning the code. A party links
// at most once, and never to their own code.
func (e *Engine) LinkCode(ctx context.Context, party types.PartyID, code types.ReferralCode) error {
	normalized := types.ReferralCode(strings.ToUpper(code.String()))
	referrer, ok := e.codeOwners[normalized]
	if !ok {
		return ErrInvalidCode
	}
	if _, ok := e.links[party]; ok {
		return ErrAlreadyLinked
	}
	if referrer == party {
		return ErrLinkNotAllowed
	}

	e.links[party] = referrer

	e.broker.Send(events.NewCodeLinkedEvent(ctx, party, normalized, referrer))
	return nil
}

// ProcessTradeFee redirects a cut of a trade fee into the reward pot and
// mints the matching shares. Returns the amount taken from the source.
//
// Fees in assets without a price against the reward asset are left alone,
// the call is a no-op returning zero. Same when a linked trader's referrer
// has no record, which is unreachable by construction and only logged.
func (e *Engine) ProcessTradeFee(ctx context.Context, source, trader types.PartyID, asset types.AssetID, amount *num.Uint) (*num.Uint, error) {
	price, ok := e.prices.GetPrice(e.rewardAsset, asset)
	if !ok {
		return num.UintZero(), nil
	}

	level := types.LevelNone
	referrer, linked := e.links[trader]
	if linked {
		stats, ok := e.referrers[referrer]
		if !ok {
			e.log.Warn("linked trader has a referrer without a record",
				logging.String("trader", trader.String()),
				logging.String("referrer", referrer.String()),
			)
			return num.UintZero(), nil
		}
		level = stats.Level
	}

	distribution := e.resolveDistribution(asset, level)

	referrerReward := num.UintZero()
	if linked {
		referrerReward = floorFraction(distribution.Referrer, amount)
	}
	traderReward := floorFraction(distribution.Trader, amount)
	externalReward := num.UintZero()
	if e.external != "" {
		externalReward = floorFraction(distribution.External, amount)
	}

	totalTaken := num.Sum(referrerReward, traderReward, externalReward)
	if totalTaken.GT(amount) {
		return nil, ErrIncorrectRewardCalculation
	}
	if totalTaken.IsZero() {
		return num.UintZero(), nil
	}

	// Shares are minted at the reward asset value of each cut. Computed
	// before the pot transfer so nothing can fail once the balance moved.
	referrerShares, overflow := num.MulDiv(referrerReward, price.N, price.D)
	if overflow {
		return nil, ErrOverflow
	}
	traderShares, overflow := num.MulDiv(traderReward, price.N, price.D)
	if overflow {
		return nil, ErrOverflow
	}
	externalShares, overflow := num.MulDiv(externalReward, price.N, price.D)
	if overflow {
		return nil, ErrOverflow
	}

	if err := e.collateral.Transfer(asset, source, e.pot, totalTaken, true); err != nil {
		return nil, errors.Wrap(err, "could not move the fee cut into the reward pot")
	}

	e.totalShares.AddSum(referrerShares, traderShares, externalShares)
	if linked && !referrerShares.IsZero() {
		e.creditShares(e.referrerShares, referrer, referrerShares)
	}
	if !traderShares.IsZero() {
		e.creditShares(e.traderShares, trader, traderShares)
	}
	if e.external != "" && !externalShares.IsZero() {
		e.creditShares(e.traderShares, e.external, externalShares)
	}

	if asset != e.rewardAsset {
		e.pending[asset] = struct{}{}
	}

	metrics.TradeFeeCounterInc()

	if e.log.IsDebug() {
		e.log.Debug("trade fee processed",
			logging.String("trader", trader.String()),
			logging.String("asset", asset.String()),
			logging.String("amount", amount.String()),
			logging.String("taken", totalTaken.String()),
		)
	}
	return totalTaken, nil
}

// Convert exchanges the pot's whole balance of the asset into the reward
// asset. Caller triggered, so it fails loudly: a zero balance and any
// conversion error surface, and the asset leaves the pending set only when
// the conversion went through.
func (e *Engine) Convert(ctx context.Context, asset types.AssetID) error {
	balance := e.collateral.Balance(e.pot, asset)
	if balance.IsZero() {
		return ErrZeroAmount
	}

	received, err := e.converter.Convert(e.pot, asset, e.rewardAsset, balance)
	if err != nil {
		metrics.ConversionCounterInc("failed")
		return err
	}
	delete(e.pending, asset)

	metrics.ConversionCounterInc("ok")
	e.broker.Send(events.NewConvertedEvent(ctx,
		types.AssetAmount{Asset: asset, Amount: balance},
		types.AssetAmount{Asset: e.rewardAsset, Amount: received},
	))
	return nil
}

// DrainPending converts as many pending assets as the work budget covers
// and reports the work consumed. At most budget / costPerConversion assets
// are attempted, in sorted order. Conversion failures are swallowed and
// the asset stays pending for a future cycle, this path never fails the
// encompassing cycle.
func (e *Engine) DrainPending(ctx context.Context, budget uint64) uint64 {
	if e.costPerConversion == 0 {
		return 0
	}
	allowed := budget / e.costPerConversion
	if allowed == 0 {
		return 0
	}

	attempted := uint64(0)
	for _, asset := range e.sortedPendingAssets() {
		if attempted == allowed {
			break
		}
		attempted++

		balance := e.collateral.Balance(e.pot, asset)
		received, err := e.converter.Convert(e.pot, asset, e.rewardAsset, balance)
		if err != nil {
			metrics.ConversionCounterInc("failed")
			if e.log.IsDebug() {
				e.log.Debug("pending conversion left for a future cycle",
					logging.String("asset", asset.String()),
					logging.Error(err),
				)
			}
			continue
		}
		delete(e.pending, asset)

		metrics.ConversionCounterInc("ok")
		e.broker.Send(events.NewConvertedEvent(ctx,
			types.AssetAmount{Asset: asset, Amount: balance},
			types.AssetAmount{Asset: e.rewardAsset, Amount: received},
		))
	}
	return attempted * e.costPerConversion
}

// ClaimRewards burns the claimant's shares for their proportional slice of
// the pot's distributable reward balance. The whole pending set is drained
// first so the pot value is denominated in the reward asset. A claimant
// without shares is a no-op success.
func (e *Engine) ClaimRewards(ctx context.Context, party types.PartyID) error {
	if err := e.drainForClaim(ctx); err != nil {
		return err
	}

	refShares := num.UintZero()
	if s, ok := e.referrerShares[party]; ok {
		refShares = s
	}
	trdShares := num.UintZero()
	if s, ok := e.traderShares[party]; ok {
		trdShares = s
	}
	claimantShares := num.Sum(refShares, trdShares)
	if claimantShares.IsZero() {
		return nil
	}

	// Snapshot and clear the claimant's shares. They go back as they were
	// if anything below fails, so a failed claim leaves no trace.
	delete(e.referrerShares, party)
	delete(e.traderShares, party)
	restore := func() {
		if !refShares.IsZero() {
			e.referrerShares[party] = refShares
		}
		if !trdShares.IsZero() {
			e.traderShares[party] = trdShares
		}
	}

	potBalance := e.collateral.Balance(e.pot, e.rewardAsset)
	distributable := num.UintZero().SaturatingSub(potBalance, e.seed)

	referrerRewards, overflow := num.MulDiv(refShares, distributable, e.totalShares)
	if overflow {
		restore()
		return ErrOverflow
	}
	traderRewards, overflow := num.MulDiv(trdShares, distributable, e.totalShares)
	if overflow {
		restore()
		return ErrOverflow
	}
	totalRewards := num.Sum(referrerRewards, traderRewards)
	if totalRewards.GT(distributable) {
		restore()
		return ErrIncorrectRewardCalculation
	}

	// The last claimant standing may empty the pot below its seed, nobody
	// is owed anything afterwards.
	keepPotAlive := claimantShares.NEQ(e.totalShares)
	if err := e.collateral.Transfer(e.rewardAsset, e.pot, party, totalRewards, keepPotAlive); err != nil {
		restore()
		return errors.Wrap(err, "could not pay the claim out of the reward pot")
	}

	e.totalShares.Sub(e.totalShares, claimantShares)

	if stats, ok := e.referrers[party]; ok {
		stats.TotalRewards.AddSum(referrerRewards)
		newLevel := advanceLevel(stats.Level, stats.TotalRewards, e.tiers)
		if newLevel != stats.Level {
			stats.Level = newLevel
			e.broker.Send(events.NewLevelUpEvent(ctx, party, newLevel))
		}
	}

	metrics.ClaimCounterInc()
	e.broker.Send(events.NewClaimedEvent(ctx, party, referrerRewards, traderRewards))
	return nil
}

// SetRewardPercentage sets the fee distribution override for the asset and
// level. The fractions must sum to at most 1, enforced here at write time
// so resolution never has to check.
func (e *Engine) SetRewardPercentage(ctx context.Context, asset types.AssetID, level types.Level, distribution types.FeeDistribution) error {
	if !distribution.Valid() {
		return ErrIncorrectRewardPercentage
	}

	byLevel, ok := e.assetRewards[asset]
	if !ok {
		byLevel = map[types.Level]types.FeeDistribution{}
		e.assetRewards[asset] = byLevel
	}
	byLevel[level] = distribution

	e.broker.Send(events.NewRewardsUpdatedEvent(ctx, asset, level, distribution))
	return nil
}

// drainForClaim converts every pending asset ahead of a claim settlement.
// Claims are user initiated and pay for their own cost, so no budget
// applies. The two negligible amount failures are tolerated, the asset
// stays pending with its dust, any other conversion error fails the claim.
func (e *Engine) drainForClaim(ctx context.Context) error {
	for _, asset := range e.sortedPendingAssets() {
		balance := e.collateral.Balance(e.pot, asset)
		received, err := e.converter.Convert(e.pot, asset, e.rewardAsset, balance)
		if err != nil {
			if errors.Is(err, types.ErrConversionMinTradingAmountNotReached) ||
				errors.Is(err, types.ErrConversionZeroAmountReceived) {
				continue
			}
			metrics.ConversionCounterInc("failed")
			return errors.Wrap(err, "could not convert a pending asset for the claim")
		}
		delete(e.pending, asset)

		metrics.ConversionCounterInc("ok")
		e.broker.Send(events.NewConvertedEvent(ctx,
			types.AssetAmount{Asset: asset, Amount: balance},
			types.AssetAmount{Asset: e.rewardAsset, Amount: received},
		))
	}
	return nil
}

// resolveDistribution returns the explicit override for the asset and
// level, falling back to the per level global.
func (e *Engine) resolveDistribution(asset types.AssetID, level types.Level) types.FeeDistribution {
	if byLevel, ok := e.assetRewards[asset]; ok {
		if distribution, ok := byLevel[level]; ok {
			return distribution
		}
	}
	_, distribution := e.tiers.VolumeAndRewards(level)
	return distribution
}

func (e *Engine) normalizeCode(code types.ReferralCode) (types.ReferralCode, error) {
	normalized := strings.ToUpper(code.String())
	if len(normalized) > e.maxCodeLength {
		return "", ErrCodeTooLong
	}
	if len(normalized) < e.minCodeLength {
		return "", ErrCodeTooShort
	}
	for _, c := range normalized {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return "", ErrInvalidCharacter
		}
	}
	return types.ReferralCode(normalized), nil
}

func (e *Engine) creditShares(ledger map[types.PartyID]*num.Uint, party types.PartyID, amount *num.Uint) {
	current, ok := ledger[party]
	if !ok {
		current = num.UintZero()
		ledger[party] = current
	}
	current.AddSum(amount)
}

func (e *Engine) sortedPendingAssets() []types.AssetID {
	assets := maps.Keys(e.pending)
	slices.Sort(assets)
	return assets
}

// CodeOwner returns the party owning the code, if registered.
func (e *Engine) CodeOwner(code types.ReferralCode) (types.PartyID, bool) {
	owner, ok := e.codeOwners[types.ReferralCode(strings.ToUpper(code.String()))]
	return owner, ok
}

// Referrer returns the referrer the party is linked to, if any.
func (e *Engine) Referrer(party types.PartyID) (types.PartyID, bool) {
	referrer, ok := e.links[party]
	return referrer, ok
}

// ReferrerStats returns a copy of the referrer's standing.
func (e *Engine) ReferrerStats(party types.PartyID) (*types.ReferrerStats, bool) {
	stats, ok := e.referrers[party]
	if !ok {
		return nil, false
	}
	return stats.Clone(), true
}

// Shares returns the party's referrer and trader share balances.
func (e *Engine) Shares(party types.PartyID) (*num.Uint, *num.Uint) {
	referrer := num.UintZero()
	if s, ok := e.referrerShares[party]; ok {
		referrer = s.Clone()
	}
	trader := num.UintZero()
	if s, ok := e.traderShares[party]; ok {
		trader = s.Clone()
	}
	return referrer, trader
}

// TotalShares returns the global share issuance.
func (e *Engine) TotalShares() *num.Uint {
	return e.totalShares.Clone()
}

// IsPending reports whether the asset awaits conversion.
func (e *Engine) IsPending(asset types.AssetID) bool {
	_, ok := e.pending[asset]
	return ok
}

// PendingAssets lists the assets awaiting conversion in sorted order.
func (e *Engine) PendingAssets() []types.AssetID {
	return e.sortedPendingAssets()
}

func floorFraction(fraction num.Decimal, amount *num.Uint) *num.Uint {
	reward, _ := num.UintFromDecimal(fraction.Mul(amount.ToDecimal()).Floor())
	return reward
}

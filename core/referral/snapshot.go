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
	"encoding/json"
	"sort"

	"github.com/kaiachai/hydration-node/core/types"
	"github.com/kaiachai/hydration-node/libs/num"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

var (
	// ErrSnapshotKeyDoesNotExist is returned when the requested state key
	// is not provided by this engine.
	ErrSnapshotKeyDoesNotExist = errors.New("unknown snapshot key")
)

const ledgerSnapshotKey = "ledger"

// SnapshottedEngine wraps the referral engine with deterministic state
// serialisation. Every collection is flattened into sorted slices so two
// replicas holding the same state produce byte for byte identical
// snapshots regardless of map iteration order.
type SnapshottedEngine struct {
	*Engine

	stopped bool
}

func NewSnapshottedEngine(engine *Engine) *SnapshottedEngine {
	return &SnapshottedEngine{
		Engine: engine,
	}
}

func (e *SnapshottedEngine) Namespace() string {
	return namedLogger
}

func (e *SnapshottedEngine) Keys() []string {
	return []string{ledgerSnapshotKey}
}

func (e *SnapshottedEngine) GetState(k string) ([]byte, error) {
	if k != ledgerSnapshotKey {
		return nil, ErrSnapshotKeyDoesNotExist
	}
	if e.stopped {
		return nil, nil
	}
	return e.serialiseLedger()
}

func (e *SnapshottedEngine) LoadState(k string, data []byte) error {
	if k != ledgerSnapshotKey {
		return ErrSnapshotKeyDoesNotExist
	}
	return e.loadLedger(data)
}

func (e *SnapshottedEngine) Stopped() bool {
	return e.stopped
}

func (e *SnapshottedEngine) StopSnapshots() {
	e.stopped = true
}

type ledgerState struct {
	Codes          []codeState        `json:"codes"`
	Links          []linkState        `json:"links"`
	Referrers      []referrerState    `json:"referrers"`
	ReferrerShares []shareState       `json:"referrerShares"`
	TraderShares   []shareState       `json:"traderShares"`
	TotalShares    string             `json:"totalShares"`
	AssetRewards   []assetRewardState `json:"assetRewards"`
	Pending        []string           `json:"pending"`
}

type codeState struct {
	Code  string `json:"code"`
	Owner string `json:"owner"`
}

type linkState struct {
	Party    string `json:"party"`
	Referrer string `json:"referrer"`
}

type referrerState struct {
	Party        string `json:"party"`
	Level        int32  `json:"level"`
	TotalRewards string `json:"totalRewards"`
}

type shareState struct {
	Party  string `json:"party"`
	Amount string `json:"amount"`
}

type assetRewardState struct {
	Asset    string `json:"asset"`
	Level    int32  `json:"level"`
	Referrer string `json:"referrer"`
	Trader   string `json:"trader"`
	External string `json:"external"`
}

func (e *SnapshottedEngine) serialiseLedger() ([]byte, error) {
	state := ledgerState{
		Codes:          make([]codeState, 0, len(e.codeOwners)),
		Links:          make([]linkState, 0, len(e.links)),
		Referrers:      make([]referrerState, 0, len(e.referrers)),
		ReferrerShares: serialiseShares(e.referrerShares),
		TraderShares:   serialiseShares(e.traderShares),
		TotalShares:    e.totalShares.String(),
		Pending:        make([]string, 0, len(e.pending)),
	}

	codes := maps.Keys(e.codeOwners)
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, code := range codes {
		state.Codes = append(state.Codes, codeState{
			Code:  code.String(),
			Owner: e.codeOwners[code].String(),
		})
	}

	traders := maps.Keys(e.links)
	sort.Slice(traders, func(i, j int) bool { return traders[i] < traders[j] })
	for _, trader := range traders {
		state.Links = append(state.Links, linkState{
			Party:    trader.String(),
			Referrer: e.links[trader].String(),
		})
	}

	referrers := maps.Keys(e.referrers)
	sort.Slice(referrers, func(i, j int) bool { return referrers[i] < referrers[j] })
	for _, referrer := range referrers {
		stats := e.referrers[referrer]
		state.Referrers = append(state.Referrers, referrerState{
			Party:        referrer.String(),
			Level:        int32(stats.Level),
			TotalRewards: stats.TotalRewards.String(),
		})
	}

	assets := maps.Keys(e.assetRewards)
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })
	for _, asset := range assets {
		byLevel := e.assetRewards[asset]
		levels := maps.Keys(byLevel)
		sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
		for _, level := range levels {
			distribution := byLevel[level]
			state.AssetRewards = append(state.AssetRewards, assetRewardState{
				Asset:    asset.String(),
				Level:    int32(level),
				Referrer: distribution.Referrer.String(),
				Trader:   distribution.Trader.String(),
				External: distribution.External.String(),
			})
		}
	}

	for _, asset := range e.sortedPendingAssets() {
		state.Pending = append(state.Pending, asset.String())
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Wrap(err, "could not serialise the referral ledger")
	}
	return data, nil
}

func (e *SnapshottedEngine) loadLedger(data []byte) error {
	state := ledgerState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrap(err, "could not deserialise the referral ledger")
	}

	e.codeOwners = make(map[types.ReferralCode]types.PartyID, len(state.Codes))
	e.partyCodes = make(map[types.PartyID]types.ReferralCode, len(state.Codes))
	for _, c := range state.Codes {
		e.codeOwners[types.ReferralCode(c.Code)] = types.PartyID(c.Owner)
		e.partyCodes[types.PartyID(c.Owner)] = types.ReferralCode(c.Code)
	}

	e.links = make(map[types.PartyID]types.PartyID, len(state.Links))
	for _, l := range state.Links {
		e.links[types.PartyID(l.Party)] = types.PartyID(l.Referrer)
	}

	e.referrers = make(map[types.PartyID]*types.ReferrerStats, len(state.Referrers))
	for _, r := range state.Referrers {
		rewards, overflow := num.UintFromString(r.TotalRewards)
		if overflow {
			return errors.Errorf("invalid cumulative rewards %q for %q", r.TotalRewards, r.Party)
		}
		e.referrers[types.PartyID(r.Party)] = &types.ReferrerStats{
			Level:        types.Level(r.Level),
			TotalRewards: rewards,
		}
	}

	var err error
	if e.referrerShares, err = loadShares(state.ReferrerShares); err != nil {
		return err
	}
	if e.traderShares, err = loadShares(state.TraderShares); err != nil {
		return err
	}

	totalShares, overflow := num.UintFromString(state.TotalShares)
	if overflow {
		return errors.Errorf("invalid total shares %q", state.TotalShares)
	}
	e.totalShares = totalShares

	e.assetRewards = map[types.AssetID]map[types.Level]types.FeeDistribution{}
	for _, r := range state.AssetRewards {
		distribution, err := parseDistribution(r)
		if err != nil {
			return err
		}
		asset := types.AssetID(r.Asset)
		byLevel, ok := e.assetRewards[asset]
		if !ok {
			byLevel = map[types.Level]types.FeeDistribution{}
			e.assetRewards[asset] = byLevel
		}
		byLevel[types.Level(r.Level)] = distribution
	}

	e.pending = make(map[types.AssetID]struct{}, len(state.Pending))
	for _, asset := range state.Pending {
		e.pending[types.AssetID(asset)] = struct{}{}
	}
	return nil
}

func serialiseShares(ledger map[types.PartyID]*num.Uint) []shareState {
	parties := maps.Keys(ledger)
	sort.Slice(parties, func(i, j int) bool { return parties[i] < parties[j] })

	out := make([]shareState, 0, len(parties))
	for _, party := range parties {
		out = append(out, shareState{
			Party:  party.String(),
			Amount: ledger[party].String(),
		})
	}
	return out
}

func loadShares(states []shareState) (map[types.PartyID]*num.Uint, error) {
	ledger := make(map[types.PartyID]*num.Uint, len(states))
	for _, s := range states {
		amount, overflow := num.UintFromString(s.Amount)
		if overflow {
			return nil, errors.Errorf("invalid share amount %q for %q", s.Amount, s.Party)
		}
		ledger[types.PartyID(s.Party)] = amount
	}
	return ledger, nil
}

func parseDistribution(state assetRewardState) (types.FeeDistribution, error) {
	referrer, err := num.DecimalFromString(state.Referrer)
	if err != nil {
		return types.FeeDistribution{}, errors.Wrapf(err, "invalid referrer fraction for asset %q", state.Asset)
	}
	trader, err := num.DecimalFromString(state.Trader)
	if err != nil {
		return types.FeeDistribution{}, errors.Wrapf(err, "invalid trader fraction for asset %q", state.Asset)
	}
	external, err := num.DecimalFromString(state.External)
	if err != nil {
		return types.FeeDistribution{}, errors.Wrapf(err, "invalid external fraction for asset %q", state.Asset)
	}
	return types.FeeDistribution{
		Referrer: referrer,
		Trader:   trader,
		External: external,
	}, nil
}

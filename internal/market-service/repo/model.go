package repo

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// marketRow é o formato persistido de um mercado. Valores uint64 vão como
// texto para colunas NUMERIC(20,0); listas vão como JSONB.
type marketRow struct {
	Address         string
	Admin           string
	League          string
	Season          string
	Outcomes        []byte
	Odds            []byte
	Resolved        bool
	WinningIndex    sql.NullInt16
	Closed          bool
	Policy          string
	MaxStake        string
	SlotsRemaining  int64
	Reserve         string
	TotalStaked     string
	Vault           string
	BetCount        int64
	PayoutByOutcome []byte
	UnclaimedPayout string
	Version         int64
	CreatedAt       time.Time
	ResolvedAt      sql.NullTime
	ClosedAt        sql.NullTime
	Bump            int16
}

// betRow é o formato persistido de uma aposta
type betRow struct {
	Address      string
	Bettor       string
	Market       string
	OutcomeIndex int16
	Amount       string
	Payout       string
	Claimed      bool
	PlacedAt     time.Time
	ClaimedAt    sql.NullTime
	Bump         int16
}

func toMarketRow(m *engine.Market) (marketRow, error) {
	r := marketRow{
		Address:         m.Address.String(),
		Admin:           m.Admin,
		League:          m.League,
		Season:          m.Season,
		Resolved:        m.Resolved,
		Closed:          m.Closed,
		Policy:          string(m.Funding.Kind()),
		MaxStake:        "0",
		Reserve:         "0",
		TotalStaked:     "0",
		Vault:           m.Vault.String(),
		BetCount:        int64(m.BetCount),
		UnclaimedPayout: strconv.FormatUint(m.UnclaimedPayout, 10),
		Version:         int64(m.Version),
		CreatedAt:       m.CreatedAt,
		ResolvedAt:      nullTime(m.ResolvedAt),
		ClosedAt:        nullTime(m.ClosedAt),
		Bump:            int16(m.Bump),
	}
	if m.WinningIndex != nil {
		r.WinningIndex = sql.NullInt16{Int16: int16(*m.WinningIndex), Valid: true}
	}
	switch f := m.Funding.(type) {
	case *engine.BoundedFunding:
		r.MaxStake = strconv.FormatUint(f.MaxStake, 10)
		r.SlotsRemaining = int64(f.SlotsRemaining)
		r.Reserve = strconv.FormatUint(f.Reserve, 10)
	case *engine.AccumulatingFunding:
		r.TotalStaked = strconv.FormatUint(f.TotalStaked, 10)
	}

	var err error
	if r.Outcomes, err = json.Marshal(m.Outcomes); err != nil {
		return r, errors.Wrap(err, "marshal outcomes")
	}
	if r.Odds, err = json.Marshal(m.Odds); err != nil {
		return r, errors.Wrap(err, "marshal odds")
	}
	if r.PayoutByOutcome, err = json.Marshal(m.PayoutByOutcome); err != nil {
		return r, errors.Wrap(err, "marshal payouts")
	}
	return r, nil
}

func (r marketRow) toMarket() (*engine.Market, error) {
	addr, err := keys.ParseAddress(r.Address)
	if err != nil {
		return nil, errors.Wrap(err, "market address")
	}
	vault, err := keys.ParseAddress(r.Vault)
	if err != nil {
		return nil, errors.Wrap(err, "vault address")
	}
	m := &engine.Market{
		Address:    addr,
		Admin:      r.Admin,
		League:     r.League,
		Season:     r.Season,
		Resolved:   r.Resolved,
		Closed:     r.Closed,
		Vault:      vault,
		BetCount:   uint32(r.BetCount),
		Version:    uint64(r.Version),
		CreatedAt:  r.CreatedAt.UTC(),
		ResolvedAt: timePtr(r.ResolvedAt),
		ClosedAt:   timePtr(r.ClosedAt),
		Bump:       uint8(r.Bump),
	}
	if r.WinningIndex.Valid {
		w := uint8(r.WinningIndex.Int16)
		m.WinningIndex = &w
	}
	if err := json.Unmarshal(r.Outcomes, &m.Outcomes); err != nil {
		return nil, errors.Wrap(err, "unmarshal outcomes")
	}
	if err := json.Unmarshal(r.Odds, &m.Odds); err != nil {
		return nil, errors.Wrap(err, "unmarshal odds")
	}
	if err := json.Unmarshal(r.PayoutByOutcome, &m.PayoutByOutcome); err != nil {
		return nil, errors.Wrap(err, "unmarshal payouts")
	}
	if m.UnclaimedPayout, err = parseUint(r.UnclaimedPayout); err != nil {
		return nil, err
	}

	switch engine.PolicyKind(r.Policy) {
	case engine.PolicyBounded:
		f := &engine.BoundedFunding{SlotsRemaining: uint32(r.SlotsRemaining)}
		if f.MaxStake, err = parseUint(r.MaxStake); err != nil {
			return nil, err
		}
		if f.Reserve, err = parseUint(r.Reserve); err != nil {
			return nil, err
		}
		m.Funding = f
	case engine.PolicyAccumulating:
		f := &engine.AccumulatingFunding{}
		if f.TotalStaked, err = parseUint(r.TotalStaked); err != nil {
			return nil, err
		}
		m.Funding = f
	default:
		return nil, errors.Errorf("market %s has unknown policy %q", r.Address, r.Policy)
	}
	return m, nil
}

func toBetRow(b *engine.Bet) betRow {
	return betRow{
		Address:      b.Address.String(),
		Bettor:       b.Bettor,
		Market:       b.Market.String(),
		OutcomeIndex: int16(b.OutcomeIndex),
		Amount:       strconv.FormatUint(b.Amount, 10),
		Payout:       strconv.FormatUint(b.Payout, 10),
		Claimed:      b.Claimed,
		PlacedAt:     b.PlacedAt,
		ClaimedAt:    nullTime(b.ClaimedAt),
		Bump:         int16(b.Bump),
	}
}

func (r betRow) toBet() (*engine.Bet, error) {
	addr, err := keys.ParseAddress(r.Address)
	if err != nil {
		return nil, errors.Wrap(err, "bet address")
	}
	market, err := keys.ParseAddress(r.Market)
	if err != nil {
		return nil, errors.Wrap(err, "bet market address")
	}
	b := &engine.Bet{
		Address:      addr,
		Bettor:       r.Bettor,
		Market:       market,
		OutcomeIndex: uint8(r.OutcomeIndex),
		Claimed:      r.Claimed,
		PlacedAt:     r.PlacedAt.UTC(),
		ClaimedAt:    timePtr(r.ClaimedAt),
		Bump:         uint8(r.Bump),
	}
	if b.Amount, err = parseUint(r.Amount); err != nil {
		return nil, err
	}
	if b.Payout, err = parseUint(r.Payout); err != nil {
		return nil, err
	}
	return b, nil
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}
	return v, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

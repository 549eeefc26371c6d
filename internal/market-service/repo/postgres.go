package repo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
	"github.com/radieske/escrow-bet-market/internal/shared/ledger"
)

// Postgres implementa engine.Store: cada unidade de trabalho é uma transação
// e toda leitura de registro usa lock pessimista (FOR UPDATE)
type Postgres struct{ db *sql.DB }

// NewPostgres retorna o store de mercados e apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Atomically abre a transação, roda fn e confirma só se fn não falhar
func (p *Postgres) Atomically(ctx context.Context, fn func(tx engine.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(&pgTx{Postgres: ledger.OnTx(tx), tx: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// pgTx combina o ledger com os registros de mercado e aposta na mesma transação
type pgTx struct {
	*ledger.Postgres
	tx *sql.Tx
}

const marketColumns = `address, admin, league, season, outcomes, odds, resolved, winning_index, closed,
	policy, max_stake::text, slots_remaining, reserve::text, total_staked::text,
	vault, bet_count, payout_by_outcome, unclaimed_payout::text, version, created_at, resolved_at, closed_at, bump`

func (t *pgTx) Market(ctx context.Context, addr keys.Address) (*engine.Market, error) {
	var r marketRow
	err := t.tx.QueryRowContext(ctx, `SELECT `+marketColumns+` FROM markets WHERE address=$1 FOR UPDATE`, addr.String()).Scan(
		&r.Address, &r.Admin, &r.League, &r.Season, &r.Outcomes, &r.Odds, &r.Resolved, &r.WinningIndex, &r.Closed,
		&r.Policy, &r.MaxStake, &r.SlotsRemaining, &r.Reserve, &r.TotalStaked,
		&r.Vault, &r.BetCount, &r.PayoutByOutcome, &r.UnclaimedPayout, &r.Version, &r.CreatedAt, &r.ResolvedAt, &r.ClosedAt, &r.Bump,
	)
	if err == sql.ErrNoRows {
		return nil, engine.ErrMarketNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select market %s", addr)
	}
	return r.toMarket()
}

func (t *pgTx) InsertMarket(ctx context.Context, m *engine.Market) error {
	r, err := toMarketRow(m)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO markets (address, admin, league, season, outcomes, odds, resolved, winning_index, closed,
			policy, max_stake, slots_remaining, reserve, total_staked,
			vault, bet_count, payout_by_outcome, unclaimed_payout, version, created_at, resolved_at, closed_at, bump)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11::numeric,$12,$13::numeric,$14::numeric,$15,$16,$17,$18::numeric,$19,$20,$21,$22,$23)
		ON CONFLICT DO NOTHING`,
		r.Address, r.Admin, r.League, r.Season, r.Outcomes, r.Odds, r.Resolved, r.WinningIndex, r.Closed,
		r.Policy, r.MaxStake, r.SlotsRemaining, r.Reserve, r.TotalStaked,
		r.Vault, r.BetCount, r.PayoutByOutcome, r.UnclaimedPayout, r.Version, r.CreatedAt, r.ResolvedAt, r.ClosedAt, r.Bump,
	)
	if err != nil {
		return errors.Wrap(err, "insert market")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrMarketExists
	}
	return nil
}

func (t *pgTx) UpdateMarket(ctx context.Context, m *engine.Market) error {
	r, err := toMarketRow(m)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE markets SET resolved=$2, winning_index=$3, closed=$4,
			slots_remaining=$5, total_staked=$6::numeric, bet_count=$7, payout_by_outcome=$8,
			unclaimed_payout=$9::numeric, resolved_at=$10, closed_at=$11, version=$12, updated_at=now()
		WHERE address=$1`,
		r.Address, r.Resolved, r.WinningIndex, r.Closed,
		r.SlotsRemaining, r.TotalStaked, r.BetCount, r.PayoutByOutcome,
		r.UnclaimedPayout, r.ResolvedAt, r.ClosedAt, r.Version,
	)
	if err != nil {
		return errors.Wrap(err, "update market")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrMarketNotFound
	}
	return nil
}

func (t *pgTx) Bet(ctx context.Context, addr keys.Address) (*engine.Bet, error) {
	var r betRow
	err := t.tx.QueryRowContext(ctx, `
		SELECT address, bettor, market, outcome_index, amount::text, payout::text, claimed, placed_at, claimed_at, bump
		FROM bets WHERE address=$1 FOR UPDATE`, addr.String()).Scan(
		&r.Address, &r.Bettor, &r.Market, &r.OutcomeIndex, &r.Amount, &r.Payout, &r.Claimed, &r.PlacedAt, &r.ClaimedAt, &r.Bump,
	)
	if err == sql.ErrNoRows {
		return nil, engine.ErrBetNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select bet %s", addr)
	}
	return r.toBet()
}

func (t *pgTx) InsertBet(ctx context.Context, b *engine.Bet) error {
	r := toBetRow(b)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO bets (address, bettor, market, outcome_index, amount, payout, claimed, placed_at, claimed_at, bump)
		VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7,$8,$9,$10)
		ON CONFLICT DO NOTHING`,
		r.Address, r.Bettor, r.Market, r.OutcomeIndex, r.Amount, r.Payout, r.Claimed, r.PlacedAt, r.ClaimedAt, r.Bump,
	)
	if err != nil {
		return errors.Wrap(err, "insert bet")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrBetExists
	}
	return nil
}

func (t *pgTx) UpdateBet(ctx context.Context, b *engine.Bet) error {
	r := toBetRow(b)
	res, err := t.tx.ExecContext(ctx,
		`UPDATE bets SET claimed=$2, claimed_at=$3, updated_at=now() WHERE address=$1`,
		r.Address, r.Claimed, r.ClaimedAt)
	if err != nil {
		return errors.Wrap(err, "update bet")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrBetNotFound
	}
	return nil
}

var _ engine.Store = (*Postgres)(nil)

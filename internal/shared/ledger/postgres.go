// Package ledger implementa o ledger da moeda de liquidação sobre Postgres.
// Todas as operações rodam dentro de uma transação do chamador; saldos ficam
// em NUMERIC(20,0) e trafegam como texto porque database/sql não aceita
// uint64 acima de MaxInt64.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/radieske/escrow-bet-market/internal/engine"
)

// Querier é o subconjunto de *sql.Tx usado pelo ledger
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres implementa engine.Ledger em cima de uma transação aberta
type Postgres struct{ q Querier }

func OnTx(q Querier) *Postgres { return &Postgres{q: q} }

// Account lê a conta com lock de linha
func (p *Postgres) Account(ctx context.Context, addr string) (engine.Account, bool, error) {
	var owner, bal string
	err := p.q.QueryRowContext(ctx,
		`SELECT owner, balance::text FROM ledger_accounts WHERE address=$1 FOR UPDATE`, addr).Scan(&owner, &bal)
	if err == sql.ErrNoRows {
		return engine.Account{}, false, nil
	}
	if err != nil {
		return engine.Account{}, false, errors.Wrapf(err, "select account %s", addr)
	}
	n, err := parseAmount(bal)
	if err != nil {
		return engine.Account{}, false, err
	}
	return engine.Account{Address: addr, Owner: owner, Balance: n}, true, nil
}

func (p *Postgres) Balance(ctx context.Context, addr string) (uint64, error) {
	a, _, err := p.Account(ctx, addr)
	return a.Balance, err
}

func (p *Postgres) OpenAccount(ctx context.Context, addr, owner string) error {
	res, err := p.q.ExecContext(ctx,
		`INSERT INTO ledger_accounts(address, owner, balance) VALUES($1,$2,0) ON CONFLICT (address) DO NOTHING`,
		addr, owner)
	if err != nil {
		return errors.Wrapf(err, "insert account %s", addr)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return engine.ErrAccountExists
	}
	return nil
}

// AdoptAccount abre a conta para owner ou assume uma conta ainda sem dono
// atribuído, mantendo o saldo
func (p *Postgres) AdoptAccount(ctx context.Context, addr, owner string) error {
	a, ok, err := p.Account(ctx, addr)
	if err != nil {
		return err
	}
	if !ok {
		return p.OpenAccount(ctx, addr, owner)
	}
	if a.Owner != addr {
		return engine.ErrAccountExists
	}
	if _, err := p.q.ExecContext(ctx,
		`UPDATE ledger_accounts SET owner=$1, version=version+1 WHERE address=$2`, owner, addr); err != nil {
		return errors.Wrapf(err, "adopt account %s", addr)
	}
	return nil
}

// Transfer trava as duas contas em ordem de endereço para evitar deadlock
func (p *Postgres) Transfer(ctx context.Context, from, to string, amount uint64, signer, memo string) error {
	order := []string{from, to}
	sort.Strings(order)
	got := make(map[string]engine.Account, 2)
	for _, addr := range order {
		a, ok, err := p.Account(ctx, addr)
		if err != nil {
			return err
		}
		if ok {
			got[addr] = a
		}
	}

	src, ok := got[from]
	if !ok {
		return &engine.Error{Code: engine.CodeAccountNotFound, Message: from}
	}
	if src.Owner != signer {
		return &engine.Error{Code: engine.CodeUnauthorized, Message: fmt.Sprintf("%s cannot sign for %s", signer, from)}
	}
	if src.Balance < amount {
		return engine.ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	dst, ok := got[to]
	if !ok {
		if err := p.OpenAccount(ctx, to, to); err != nil {
			return err
		}
		dst = engine.Account{Address: to, Owner: to}
	}
	if dst.Balance+amount < dst.Balance {
		return engine.ErrMathOverflow
	}

	if err := p.setBalance(ctx, from, src.Balance-amount); err != nil {
		return err
	}
	if err := p.setBalance(ctx, to, dst.Balance+amount); err != nil {
		return err
	}
	return p.journal(ctx, from, to, amount, memo)
}

func (p *Postgres) CloseAccount(ctx context.Context, addr, signer string) error {
	a, ok, err := p.Account(ctx, addr)
	if err != nil {
		return err
	}
	if !ok {
		return &engine.Error{Code: engine.CodeAccountNotFound, Message: addr}
	}
	if a.Owner != signer {
		return &engine.Error{Code: engine.CodeUnauthorized, Message: fmt.Sprintf("%s cannot close %s", signer, addr)}
	}
	if a.Balance != 0 {
		return engine.ErrAccountNotEmpty
	}
	if _, err := p.q.ExecContext(ctx, `DELETE FROM ledger_accounts WHERE address=$1`, addr); err != nil {
		return errors.Wrapf(err, "delete account %s", addr)
	}
	return nil
}

// Deposit credita moeda vinda de fora do sistema; cria a conta se preciso
func (p *Postgres) Deposit(ctx context.Context, addr string, amount uint64, ref string) (uint64, error) {
	a, ok, err := p.Account(ctx, addr)
	if err != nil {
		return 0, err
	}
	if !ok {
		if err := p.OpenAccount(ctx, addr, addr); err != nil {
			return 0, err
		}
		a = engine.Account{Address: addr, Owner: addr}
	}
	if a.Balance+amount < a.Balance {
		return 0, engine.ErrMathOverflow
	}
	bal := a.Balance + amount
	if err := p.setBalance(ctx, addr, bal); err != nil {
		return 0, err
	}
	if err := p.entry(ctx, addr, "CREDIT", amount, "deposit:"+ref); err != nil {
		return 0, err
	}
	return bal, nil
}

func (p *Postgres) setBalance(ctx context.Context, addr string, bal uint64) error {
	if _, err := p.q.ExecContext(ctx,
		`UPDATE ledger_accounts SET balance=$1::numeric, version=version+1 WHERE address=$2`,
		formatAmount(bal), addr); err != nil {
		return errors.Wrapf(err, "update balance %s", addr)
	}
	return nil
}

// journal registra débito e crédito com o mesmo transfer_id
func (p *Postgres) journal(ctx context.Context, from, to string, amount uint64, memo string) error {
	id := uuid.New().String()
	const q = `INSERT INTO ledger_entries(id, transfer_id, account, operation_type, amount, memo)
		VALUES($1,$2,$3,$4,$5::numeric,$6)`
	if _, err := p.q.ExecContext(ctx, q, uuid.New().String(), id, from, "DEBIT", formatAmount(amount), memo); err != nil {
		return errors.Wrap(err, "insert debit entry")
	}
	if _, err := p.q.ExecContext(ctx, q, uuid.New().String(), id, to, "CREDIT", formatAmount(amount), memo); err != nil {
		return errors.Wrap(err, "insert credit entry")
	}
	return nil
}

func (p *Postgres) entry(ctx context.Context, addr, op string, amount uint64, memo string) error {
	if _, err := p.q.ExecContext(ctx,
		`INSERT INTO ledger_entries(id, transfer_id, account, operation_type, amount, memo) VALUES($1,$2,$3,$4,$5::numeric,$6)`,
		uuid.New().String(), uuid.New().String(), addr, op, formatAmount(amount), memo); err != nil {
		return errors.Wrapf(err, "insert %s entry", op)
	}
	return nil
}

func formatAmount(v uint64) string { return strconv.FormatUint(v, 10) }

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", s)
	}
	return v, nil
}

var _ engine.Ledger = (*Postgres)(nil)

package repo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/shared/ledger"
)

// Postgres implementa operações de carteira sobre o ledger compartilhado
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// withTx roda fn numa transação com o ledger ligado a ela
func (p *Postgres) withTx(ctx context.Context, fn func(l *ledger.Postgres) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(ledger.OnTx(tx)); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

// GetAccount retorna a conta; contas nunca creditadas não existem
func (p *Postgres) GetAccount(ctx context.Context, account string) (acc engine.Account, found bool, err error) {
	err = p.withTx(ctx, func(l *ledger.Postgres) error {
		acc, found, err = l.Account(ctx, account)
		return err
	})
	return acc, found, err
}

// Deposit credita o valor e registra no ledger_entries
// Cria a conta na primeira vez, com o próprio endereço como dono
func (p *Postgres) Deposit(ctx context.Context, account string, amount uint64, externalRef string) (newBalance uint64, err error) {
	err = p.withTx(ctx, func(l *ledger.Postgres) error {
		newBalance, err = l.Deposit(ctx, account, amount, externalRef)
		return err
	})
	return newBalance, err
}

// Transfer move saldo entre participantes; signer precisa ser o dono da origem
func (p *Postgres) Transfer(ctx context.Context, from, to string, amount uint64, signer, memo string) error {
	return p.withTx(ctx, func(l *ledger.Postgres) error {
		return l.Transfer(ctx, from, to, amount, signer, "transfer:"+memo)
	})
}

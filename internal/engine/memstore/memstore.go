// Package memstore é um Store em memória: serializa as unidades de trabalho com
// um mutex e só aplica as escritas quando a função retorna sem erro.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// Store guarda mercados, apostas e contas do ledger em mapas
type Store struct {
	mu       sync.Mutex
	markets  map[keys.Address]*engine.Market
	bets     map[keys.Address]*engine.Bet
	accounts map[string]*engine.Account
}

func New() *Store {
	return &Store{
		markets:  make(map[keys.Address]*engine.Market),
		bets:     make(map[keys.Address]*engine.Bet),
		accounts: make(map[string]*engine.Account),
	}
}

// Atomically roda fn com escritas em overlay; erro descarta tudo
func (s *Store) Atomically(ctx context.Context, fn func(tx engine.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &tx{
		s:        s,
		markets:  make(map[keys.Address]*engine.Market),
		bets:     make(map[keys.Address]*engine.Bet),
		accounts: make(map[string]*engine.Account),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Deposit credita saldo direto numa conta (entrada de moeda de fora do sistema)
func (s *Store) Deposit(account string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[account]
	if !ok {
		a = &engine.Account{Address: account, Owner: account}
		s.accounts[account] = a
	}
	if a.Balance+amount < a.Balance {
		return engine.ErrMathOverflow
	}
	a.Balance += amount
	return nil
}

// Account devolve uma cópia da conta, se existir
func (s *Store) Account(account string) (engine.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[account]
	if !ok {
		return engine.Account{}, false
	}
	return *a, true
}

// tx mantém as escritas pendentes; nil no overlay de contas marca remoção
type tx struct {
	s        *Store
	markets  map[keys.Address]*engine.Market
	bets     map[keys.Address]*engine.Bet
	accounts map[string]*engine.Account
}

func (t *tx) commit() {
	for k, m := range t.markets {
		t.s.markets[k] = m
	}
	for k, b := range t.bets {
		t.s.bets[k] = b
	}
	for k, a := range t.accounts {
		if a == nil {
			delete(t.s.accounts, k)
			continue
		}
		t.s.accounts[k] = a
	}
}

func (t *tx) Market(_ context.Context, addr keys.Address) (*engine.Market, error) {
	if m, ok := t.markets[addr]; ok {
		return m.Clone(), nil
	}
	if m, ok := t.s.markets[addr]; ok {
		return m.Clone(), nil
	}
	return nil, engine.ErrMarketNotFound
}

func (t *tx) InsertMarket(ctx context.Context, m *engine.Market) error {
	if _, err := t.Market(ctx, m.Address); err == nil {
		return engine.ErrMarketExists
	}
	t.markets[m.Address] = m.Clone()
	return nil
}

func (t *tx) UpdateMarket(ctx context.Context, m *engine.Market) error {
	if _, err := t.Market(ctx, m.Address); err != nil {
		return err
	}
	t.markets[m.Address] = m.Clone()
	return nil
}

func (t *tx) Bet(_ context.Context, addr keys.Address) (*engine.Bet, error) {
	if b, ok := t.bets[addr]; ok {
		return b.Clone(), nil
	}
	if b, ok := t.s.bets[addr]; ok {
		return b.Clone(), nil
	}
	return nil, engine.ErrBetNotFound
}

func (t *tx) InsertBet(ctx context.Context, b *engine.Bet) error {
	if _, err := t.Bet(ctx, b.Address); err == nil {
		return engine.ErrBetExists
	}
	t.bets[b.Address] = b.Clone()
	return nil
}

func (t *tx) UpdateBet(ctx context.Context, b *engine.Bet) error {
	if _, err := t.Bet(ctx, b.Address); err != nil {
		return err
	}
	t.bets[b.Address] = b.Clone()
	return nil
}

// account lê a conta considerando o overlay; ok=false se não existe ou foi removida
func (t *tx) account(addr string) (engine.Account, bool) {
	if a, ok := t.accounts[addr]; ok {
		if a == nil {
			return engine.Account{}, false
		}
		return *a, true
	}
	if a, ok := t.s.accounts[addr]; ok {
		return *a, true
	}
	return engine.Account{}, false
}

func (t *tx) put(a engine.Account) { t.accounts[a.Address] = &a }

func (t *tx) Balance(_ context.Context, addr string) (uint64, error) {
	a, _ := t.account(addr)
	return a.Balance, nil
}

func (t *tx) OpenAccount(_ context.Context, addr, owner string) error {
	if _, ok := t.account(addr); ok {
		return engine.ErrAccountExists
	}
	t.put(engine.Account{Address: addr, Owner: owner})
	return nil
}

func (t *tx) AdoptAccount(ctx context.Context, addr, owner string) error {
	a, ok := t.account(addr)
	if !ok {
		return t.OpenAccount(ctx, addr, owner)
	}
	if a.Owner != addr {
		return engine.ErrAccountExists
	}
	a.Owner = owner
	t.put(a)
	return nil
}

func (t *tx) Transfer(_ context.Context, from, to string, amount uint64, signer, _ string) error {
	src, ok := t.account(from)
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
	dst, ok := t.account(to)
	if !ok {
		dst = engine.Account{Address: to, Owner: to}
	}
	if dst.Balance+amount < dst.Balance {
		return engine.ErrMathOverflow
	}
	src.Balance -= amount
	dst.Balance += amount
	t.put(src)
	t.put(dst)
	return nil
}

func (t *tx) CloseAccount(_ context.Context, addr, signer string) error {
	a, ok := t.account(addr)
	if !ok {
		return &engine.Error{Code: engine.CodeAccountNotFound, Message: addr}
	}
	if a.Owner != signer {
		return &engine.Error{Code: engine.CodeUnauthorized, Message: fmt.Sprintf("%s cannot close %s", signer, addr)}
	}
	if a.Balance != 0 {
		return engine.ErrAccountNotEmpty
	}
	t.accounts[addr] = nil
	return nil
}

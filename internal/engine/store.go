package engine

import (
	"context"

	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

// Account é uma conta do ledger da moeda de liquidação.
// Owner é a identidade que pode autorizar saídas da conta.
type Account struct {
	Address string
	Owner   string
	Balance uint64
}

// Ledger é o primitivo externo de movimentação de valor.
// Todas as operações acontecem dentro da unidade de trabalho corrente.
type Ledger interface {
	// Balance retorna o saldo; conta inexistente tem saldo zero
	Balance(ctx context.Context, account string) (uint64, error)
	// OpenAccount cria conta zerada; ErrAccountExists se já existir
	OpenAccount(ctx context.Context, account, owner string) error
	// AdoptAccount abre a conta para owner. Se ela já existe sem dono atribuído
	// (criada por um crédito, Owner == endereço), a posse passa para owner e o
	// saldo é mantido; com outro dono retorna ErrAccountExists.
	AdoptAccount(ctx context.Context, account, owner string) error
	// Transfer debita from e credita to. signer precisa ser o Owner de from.
	// Contas de destino inexistentes são criadas com o próprio endereço como dono.
	Transfer(ctx context.Context, from, to string, amount uint64, signer, memo string) error
	// CloseAccount remove uma conta zerada; signer precisa ser o Owner
	CloseAccount(ctx context.Context, account, signer string) error
}

// Tx é a visão transacional dos registros. Leituras para atualização
// bloqueiam o registro até o fim da unidade de trabalho.
type Tx interface {
	Ledger

	Market(ctx context.Context, addr keys.Address) (*Market, error) // ErrMarketNotFound
	InsertMarket(ctx context.Context, m *Market) error              // ErrMarketExists
	UpdateMarket(ctx context.Context, m *Market) error

	Bet(ctx context.Context, addr keys.Address) (*Bet, error) // ErrBetNotFound
	InsertBet(ctx context.Context, b *Bet) error              // ErrBetExists
	UpdateBet(ctx context.Context, b *Bet) error
}

// Store executa fn como uma unidade atômica: ou tudo é confirmado, ou nada.
type Store interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

package engine

import (
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

func requireAdmin(m *Market, caller string) error {
	if m.Admin != caller {
		return &Error{Code: CodeUnauthorized, Message: "caller is not the market admin"}
	}
	return nil
}

// requireBettor confere o dono da aposta e se o endereço realmente deriva de
// (bet, apostador, mercado) com o bump armazenado
func (e *Engine) requireBettor(b *Bet, caller string) error {
	if b.Bettor != caller {
		return &Error{Code: CodeUnauthorized, Message: "caller does not own the bet"}
	}
	if !e.keys.Verify(b.Address, b.Bump, keys.BetSeeds(b.Bettor, b.Market)...) {
		return &Error{Code: CodeUnauthorized, Message: "bet address does not derive from bettor and market"}
	}
	return nil
}

// marketAuthority re-deriva o endereço do mercado a partir das seeds e do bump.
// Só esse endereço assina saídas da custódia; ninguém guarda chave para ele.
func (e *Engine) marketAuthority(m *Market) (string, error) {
	if !e.keys.Verify(m.Address, m.Bump, keys.MarketSeeds(m.League, m.Season)...) {
		return "", &Error{Code: CodeUnauthorized, Message: "market authority does not re-derive"}
	}
	return m.Address.String(), nil
}

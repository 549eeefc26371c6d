package engine

import (
	"fmt"
	"strings"
)

// PolicyKind define como a custódia de um mercado é financiada.
// Um deployment escolhe uma única política.
type PolicyKind string

const (
	// PolicyBounded pré-financia o pior caso: max_stake × max(odds) × vagas.
	// Garante que todo payout vencedor pode ser pago.
	PolicyBounded PolicyKind = "bounded"
	// PolicyAccumulating não reserva nada; a custódia cresce com as apostas.
	// Não há garantia de que todos os vencedores possam sacar.
	PolicyAccumulating PolicyKind = "accumulating"
)

// ParsePolicy converte o valor de configuração
func ParsePolicy(s string) (PolicyKind, error) {
	switch PolicyKind(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyBounded:
		return PolicyBounded, nil
	case PolicyAccumulating:
		return PolicyAccumulating, nil
	}
	return "", fmt.Errorf("unknown funding policy %q", s)
}

// Funding é o estado da política de financiamento de um mercado.
// Implementado por *BoundedFunding e *AccumulatingFunding, nunca os dois.
type Funding interface {
	Kind() PolicyKind
	clone() Funding
}

// BoundedFunding limita o valor de cada aposta e o número de apostadores
type BoundedFunding struct {
	MaxStake       uint64
	SlotsRemaining uint32
	Reserve        uint64 // valor pré-financiado pelo admin na abertura
}

func (*BoundedFunding) Kind() PolicyKind { return PolicyBounded }
func (f *BoundedFunding) clone() Funding { c := *f; return &c }

// AccumulatingFunding apenas soma o total apostado
type AccumulatingFunding struct {
	TotalStaked uint64
}

func (*AccumulatingFunding) Kind() PolicyKind { return PolicyAccumulating }
func (f *AccumulatingFunding) clone() Funding { c := *f; return &c }

// Limits são os parâmetros opcionais de abertura da política bounded
type Limits struct {
	MaxStake uint64
	Slots    uint32
}

// newFunding valida os limites contra a política do deployment e calcula a reserva
func newFunding(policy PolicyKind, limits *Limits, odds []uint64) (Funding, uint64, error) {
	switch policy {
	case PolicyBounded:
		if limits == nil || limits.MaxStake == 0 || limits.Slots == 0 {
			return nil, 0, &Error{Code: CodeInvalidLimits, Message: "bounded policy requires max_stake and slots"}
		}
		perBet, err := checkedMul(limits.MaxStake, maxOf(odds))
		if err != nil {
			return nil, 0, err
		}
		reserve, err := checkedMul(perBet, uint64(limits.Slots))
		if err != nil {
			return nil, 0, err
		}
		return &BoundedFunding{MaxStake: limits.MaxStake, SlotsRemaining: limits.Slots, Reserve: reserve}, reserve, nil
	case PolicyAccumulating:
		if limits != nil && (limits.MaxStake != 0 || limits.Slots != 0) {
			return nil, 0, &Error{Code: CodeInvalidLimits, Message: "accumulating policy takes no limits"}
		}
		return &AccumulatingFunding{}, 0, nil
	}
	return nil, 0, &Error{Code: CodeInvalidLimits, Message: fmt.Sprintf("unknown policy %q", policy)}
}

// admit aplica as checagens de política na ordem definida para uma aposta
func admit(f Funding, amount uint64) error {
	b, ok := f.(*BoundedFunding)
	if !ok {
		return nil
	}
	if b.SlotsRemaining == 0 {
		return ErrAllowedBettorsLimitExceeded
	}
	if amount > b.MaxStake {
		return &Error{Code: CodeInvalidBetAmount, Message: fmt.Sprintf("amount %d above max stake %d", amount, b.MaxStake)}
	}
	return nil
}

// record consome uma vaga (bounded) ou soma ao total apostado (accumulating)
func record(f Funding, amount uint64) error {
	switch v := f.(type) {
	case *BoundedFunding:
		left, err := checkedSub(uint64(v.SlotsRemaining), 1)
		if err != nil {
			return err
		}
		v.SlotsRemaining = uint32(left)
	case *AccumulatingFunding:
		total, err := checkedAdd(v.TotalStaked, amount)
		if err != nil {
			return err
		}
		v.TotalStaked = total
	}
	return nil
}

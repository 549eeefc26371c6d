package events

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de evento publicados no tópico "market_events"
const (
	TypeMarketOpened   = "market_opened"
	TypeBetPlaced      = "bet_placed"
	TypeMarketResolved = "market_resolved"
	TypePayoutClaimed  = "payout_claimed"
	TypeMarketClosed   = "market_closed"
)

// MarketEvent é o envelope de toda transição confirmada de um mercado.
// A chave da mensagem Kafka é o MarketID, então a ordem por mercado é preservada.
type MarketEvent struct {
	EventID  string         `json:"event_id"`
	Type     string         `json:"type"`
	MarketID string         `json:"market_id"`
	Actor    string         `json:"actor"`
	Snapshot MarketSnapshot `json:"snapshot"`
	Bet      *BetSnapshot   `json:"bet,omitempty"`
	Amount   string         `json:"amount,omitempty"` // reserva, aposta, payout ou valor drenado
	Ts       time.Time      `json:"ts"`
}

// NewMarketEvent preenche id e timestamp
func NewMarketEvent(typ, actor string, snap MarketSnapshot) MarketEvent {
	return MarketEvent{
		EventID:  uuid.NewString(),
		Type:     typ,
		MarketID: snap.MarketID,
		Actor:    actor,
		Snapshot: snap,
		Ts:       time.Now().UTC(),
	}
}

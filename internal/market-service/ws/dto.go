package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MarketID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type     string `json:"type"`
	MarketID string `json:"marketId"`
}

// MarketUpdate é o que os clientes inscritos num mercado recebem
type MarketUpdate struct {
	MarketID string      `json:"marketId"`
	Type     string      `json:"type"`
	Payload  interface{} `json:"payload"`
}

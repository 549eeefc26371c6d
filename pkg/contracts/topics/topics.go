package topics

const (
	// Mercados: abertura, apostas, resolução, saques e fechamento
	MarketEvents = "market_events"

	// DLQs
	MarketEventsDLQ = "market_events_dlq"
)

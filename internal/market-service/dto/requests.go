package dto

// OpenMarketRequest abre um mercado; max_stake/slots só na política bounded
type OpenMarketRequest struct {
	League   string   `json:"league"`
	Season   string   `json:"season"`
	Outcomes []string `json:"outcomes"`
	Odds     []uint64 `json:"odds"`
	MaxStake *uint64  `json:"max_stake,omitempty"`
	Slots    *uint32  `json:"slots,omitempty"`
}

type PlaceBetRequest struct {
	OutcomeIndex *uint8 `json:"outcome_index"`
	Amount       uint64 `json:"amount"`
}

type ResolveMarketRequest struct {
	WinningIndex *uint8 `json:"winning_index"`
}

package dto

// DepositRequest credita a conta do chamador
type DepositRequest struct {
	Amount      uint64 `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ rastreio
}

// TransferRequest move saldo do chamador para outra conta
type TransferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
	Memo   string `json:"memo,omitempty"`
}

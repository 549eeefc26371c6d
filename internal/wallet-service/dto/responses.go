package dto

type AccountResponse struct {
	Account string `json:"account"`
	Owner   string `json:"owner,omitempty"`
	Balance string `json:"balance"`
}

type TransferResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

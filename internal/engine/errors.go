package engine

// Code identifica a condição que fez uma operação falhar.
// É o valor que o chamador enxerga (HTTP, eventos, logs).
type Code string

const (
	CodeMarketResolved              Code = "MarketResolved"
	CodeMarketNotResolved           Code = "MarketNotResolved"
	CodeMarketClosed                Code = "MarketClosed"
	CodeMarketExists                Code = "MarketExists"
	CodeMarketNotFound              Code = "MarketNotFound"
	CodeBetExists                   Code = "BetExists"
	CodeBetNotFound                 Code = "BetNotFound"
	CodeBetMarketMismatch           Code = "BetMarketMismatch"
	CodeInvalidOutcomes             Code = "InvalidOutcomes"
	CodeInvalidOdds                 Code = "InvalidOdds"
	CodeNameTooLong                 Code = "NameTooLong"
	CodeInvalidLimits               Code = "InvalidLimits"
	CodeInvalidTeamIndex            Code = "InvalidTeamIndex"
	CodeInvalidBetAmount            Code = "InvalidBetAmount"
	CodeAllowedBettorsLimitExceeded Code = "AllowedBettorsLimitExceeded"
	CodeInsufficientBalance         Code = "InsufficientBalance"
	CodeUnauthorized                Code = "Unauthorized"
	CodeBetClaimed                  Code = "BetClaimed"
	CodeBetNotWon                   Code = "BetNotWon"
	CodeClaimsOutstanding           Code = "ClaimsOutstanding"
	CodeEscrowUnderfunded           Code = "EscrowUnderfunded"
	CodeMathOverflow                Code = "MathOverflow"
	CodeMathUnderflow               Code = "MathUnderflow"
	CodeAccountExists               Code = "AccountExists"
	CodeAccountNotFound             Code = "AccountNotFound"
	CodeAccountNotEmpty             Code = "AccountNotEmpty"
)

// Error é o erro de domínio do engine. Dois erros com o mesmo Code são
// equivalentes para errors.Is, então o Message pode carregar contexto.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// Is compara pelo Code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newErr(code Code, msg string) *Error { return &Error{Code: code, Message: msg} }

// Sentinelas para uso com errors.Is
var (
	ErrMarketResolved              = newErr(CodeMarketResolved, "market has already been resolved")
	ErrMarketNotResolved           = newErr(CodeMarketNotResolved, "market has not been resolved")
	ErrMarketClosed                = newErr(CodeMarketClosed, "market is closed")
	ErrMarketExists                = newErr(CodeMarketExists, "market already exists for league and season")
	ErrMarketNotFound              = newErr(CodeMarketNotFound, "market not found")
	ErrBetExists                   = newErr(CodeBetExists, "bettor already has a bet on this market")
	ErrBetNotFound                 = newErr(CodeBetNotFound, "bet not found")
	ErrBetMarketMismatch           = newErr(CodeBetMarketMismatch, "bet does not belong to market")
	ErrInvalidOutcomes             = newErr(CodeInvalidOutcomes, "outcomes and odds must have the same length and at least two entries")
	ErrInvalidOdds                 = newErr(CodeInvalidOdds, "odds must be positive")
	ErrNameTooLong                 = newErr(CodeNameTooLong, "name exceeds maximum length")
	ErrInvalidLimits               = newErr(CodeInvalidLimits, "limits do not match funding policy")
	ErrInvalidTeamIndex            = newErr(CodeInvalidTeamIndex, "invalid team index")
	ErrInvalidBetAmount            = newErr(CodeInvalidBetAmount, "bet amount must be greater than zero and within the stake limit")
	ErrAllowedBettorsLimitExceeded = newErr(CodeAllowedBettorsLimitExceeded, "allowed bettors limit exceeded")
	ErrInsufficientBalance         = newErr(CodeInsufficientBalance, "insufficient balance")
	ErrUnauthorized                = newErr(CodeUnauthorized, "caller does not own the record")
	ErrBetClaimed                  = newErr(CodeBetClaimed, "bet has already been claimed")
	ErrBetNotWon                   = newErr(CodeBetNotWon, "bet did not win")
	ErrClaimsOutstanding           = newErr(CodeClaimsOutstanding, "winning payouts still unclaimed")
	ErrEscrowUnderfunded           = newErr(CodeEscrowUnderfunded, "escrow does not cover outstanding payouts")
	ErrMathOverflow                = newErr(CodeMathOverflow, "mathematical overflow")
	ErrMathUnderflow               = newErr(CodeMathUnderflow, "mathematical underflow")
	ErrAccountExists               = newErr(CodeAccountExists, "account already exists")
	ErrAccountNotFound             = newErr(CodeAccountNotFound, "account not found")
	ErrAccountNotEmpty             = newErr(CodeAccountNotEmpty, "account balance is not zero")
)

// CodeOf extrai o Code de um erro de domínio; vazio para erros de infraestrutura
func CodeOf(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			// pkg/errors expõe Cause em vez de Unwrap em versões antigas
			c, ok := err.(interface{ Cause() error })
			if !ok {
				return ""
			}
			err = c.Cause()
			continue
		}
		err = u.Unwrap()
	}
	return ""
}

package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/market-service/dto"
)

// statusFor mapeia o código de domínio para o status HTTP
func statusFor(code engine.Code) int {
	switch code {
	case engine.CodeMarketNotFound, engine.CodeBetNotFound, engine.CodeAccountNotFound:
		return http.StatusNotFound
	case engine.CodeUnauthorized:
		return http.StatusForbidden
	case engine.CodeMarketResolved, engine.CodeMarketNotResolved, engine.CodeMarketClosed,
		engine.CodeMarketExists, engine.CodeBetExists, engine.CodeBetMarketMismatch,
		engine.CodeBetClaimed, engine.CodeBetNotWon, engine.CodeClaimsOutstanding,
		engine.CodeEscrowUnderfunded, engine.CodeAllowedBettorsLimitExceeded,
		engine.CodeAccountExists, engine.CodeAccountNotEmpty:
		return http.StatusConflict
	case engine.CodeInvalidOutcomes, engine.CodeInvalidOdds, engine.CodeNameTooLong,
		engine.CodeInvalidLimits, engine.CodeInvalidTeamIndex, engine.CodeInvalidBetAmount,
		engine.CodeInsufficientBalance, engine.CodeMathOverflow, engine.CodeMathUnderflow:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError responde {"error": code, "message": msg}; erro de infraestrutura vira 500 genérico
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	code := engine.CodeOf(err)
	status := statusFor(code)
	s.metrics.observe(op, string(code))
	if code == "" {
		s.log.Error(op+" failed", zap.Error(err))
		writeJSON(w, status, dto.ErrorResponse{Error: "Internal", Message: "internal error"})
		return
	}
	writeJSON(w, status, dto.ErrorResponse{Error: string(code), Message: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "BadRequest", Message: msg})
}

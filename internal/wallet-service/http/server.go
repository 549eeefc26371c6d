package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/shared/auth"
	"github.com/radieske/escrow-bet-market/internal/wallet-service/dto"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetAccount(ctx context.Context, account string) (engine.Account, bool, error)
	Deposit(ctx context.Context, account string, amount uint64, externalRef string) (uint64, error)
	Transfer(ctx context.Context, from, to string, amount uint64, signer, memo string) error
}

// Server expõe endpoints HTTP para operações de carteira (wallet)
type Server struct {
	log  *zap.Logger
	repo Repo
	jwt  auth.JWT
}

// NewServer instancia o servidor HTTP de wallet
func NewServer(log *zap.Logger, repo Repo, jwt auth.JWT) *Server {
	return &Server{log: log, repo: repo, jwt: jwt}
}

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	protect := auth.Middleware(s.jwt)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /wallet", s.getWallet) // ?account=...
	mux.Handle("POST /wallet/deposit", protect(http.HandlerFunc(s.deposit)))
	mux.Handle("POST /wallet/transfer", protect(http.HandlerFunc(s.transfer)))
	return mux
}

// getWallet retorna saldo e dono de uma conta do ledger (custódias incluídas)
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "BadRequest", "account required")
		return
	}
	acc, ok, err := s.repo.GetAccount(r.Context(), account)
	if err != nil {
		s.log.Error("get account", zap.String("account", account), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal", "internal error")
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, dto.AccountResponse{Account: account, Balance: "0"})
		return
	}
	writeJSON(w, http.StatusOK, dto.AccountResponse{Account: account, Owner: acc.Owner, Balance: amount(acc.Balance)})
}

// deposit credita a conta do chamador
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad json")
		return
	}
	if req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "BadRequest", "amount must be positive")
		return
	}
	caller := auth.CallerFromContext(r.Context())
	bal, err := s.repo.Deposit(r.Context(), caller, req.Amount, req.ExternalRef)
	if err != nil {
		s.domainError(w, "deposit", err)
		return
	}
	s.log.Info("deposit", zap.String("account", caller), zap.Uint64("amount", req.Amount))
	writeJSON(w, http.StatusOK, dto.AccountResponse{Account: caller, Owner: caller, Balance: amount(bal)})
}

// transfer move saldo do chamador para outro participante
func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "bad json")
		return
	}
	if req.To == "" || req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "BadRequest", "invalid payload")
		return
	}
	caller := auth.CallerFromContext(r.Context())
	if err := s.repo.Transfer(r.Context(), caller, req.To, req.Amount, caller, req.Memo); err != nil {
		s.domainError(w, "transfer", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TransferResponse{From: caller, To: req.To, Amount: amount(req.Amount)})
}

func (s *Server) domainError(w http.ResponseWriter, op string, err error) {
	switch engine.CodeOf(err) {
	case engine.CodeAccountNotFound:
		writeError(w, http.StatusNotFound, string(engine.CodeAccountNotFound), err.Error())
	case engine.CodeUnauthorized:
		writeError(w, http.StatusForbidden, string(engine.CodeUnauthorized), err.Error())
	case engine.CodeInsufficientBalance, engine.CodeMathOverflow:
		writeError(w, http.StatusUnprocessableEntity, string(engine.CodeOf(err)), err.Error())
	default:
		s.log.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal", "internal error")
	}
}

func amount(v uint64) string { return strconv.FormatUint(v, 10) }

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: code, Message: msg})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
	"github.com/radieske/escrow-bet-market/internal/market-service/dto"
	"github.com/radieske/escrow-bet-market/internal/shared/auth"
	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

// Engine é o que a API usa do engine de mercados
type Engine interface {
	OpenMarket(ctx context.Context, p engine.OpenMarketParams) (*engine.Market, error)
	PlaceBet(ctx context.Context, p engine.PlaceBetParams) (*engine.Bet, error)
	ResolveMarket(ctx context.Context, admin string, market keys.Address, winningIndex uint8) (*engine.Market, error)
	CloseMarket(ctx context.Context, admin string, market keys.Address) (*engine.CloseResult, error)
	ClaimPayout(ctx context.Context, bettor string, market, bet keys.Address) (*engine.Bet, error)
	Market(ctx context.Context, addr keys.Address) (*engine.Market, error)
	Bet(ctx context.Context, addr keys.Address) (*engine.Bet, error)
	EscrowReport(ctx context.Context, market keys.Address) (*engine.EscrowReport, error)
}

// Publisher publica as transições confirmadas
type Publisher interface {
	Publish(ctx context.Context, e events.MarketEvent) error
}

// SnapshotCache é o cache read-through dos snapshots de mercado
type SnapshotCache interface {
	Get(ctx context.Context, marketID string) (events.MarketSnapshot, bool, error)
	Set(ctx context.Context, s events.MarketSnapshot) error
}

// Server expõe o ciclo de vida de mercados e apostas via HTTP
type Server struct {
	log     *zap.Logger
	eng     Engine
	publ    Publisher
	cache   SnapshotCache
	jwt     auth.JWT
	ws      http.HandlerFunc
	metrics *Metrics
}

// Option configura dependências opcionais do Server
type Option func(*Server)

func WithWebsocket(h http.HandlerFunc) Option { return func(s *Server) { s.ws = h } }
func WithMetrics(m *Metrics) Option { return func(s *Server) { s.metrics = m } }

func NewServer(log *zap.Logger, eng Engine, publ Publisher, cache SnapshotCache, jwt auth.JWT, opts ...Option) *Server {
	s := &Server{log: log, eng: eng, publ: publ, cache: cache, jwt: jwt}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router monta as rotas; leituras são públicas, transições exigem token
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/v1/markets/{id}", s.getMarket)
	r.Get("/v1/markets/{id}/escrow", s.getEscrow)
	r.Get("/v1/markets/{id}/bets/{betId}", s.getBet)
	if s.ws != nil {
		r.Get("/ws", s.ws)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.jwt))
		r.Post("/v1/markets", s.openMarket)
		r.Post("/v1/markets/{id}/bets", s.placeBet)
		r.Post("/v1/markets/{id}/resolve", s.resolveMarket)
		r.Post("/v1/markets/{id}/close", s.closeMarket)
		r.Post("/v1/markets/{id}/bets/{betId}/claim", s.claimPayout)
	})
	return r
}

func (s *Server) openMarket(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "bad json")
		return
	}
	admin := auth.CallerFromContext(r.Context())

	p := engine.OpenMarketParams{
		Admin:    admin,
		League:   req.League,
		Season:   req.Season,
		Outcomes: req.Outcomes,
		Odds:     req.Odds,
	}
	if req.MaxStake != nil || req.Slots != nil {
		p.Limits = &engine.Limits{}
		if req.MaxStake != nil {
			p.Limits.MaxStake = *req.MaxStake
		}
		if req.Slots != nil {
			p.Limits.Slots = *req.Slots
		}
	}

	m, err := s.eng.OpenMarket(r.Context(), p)
	if err != nil {
		s.writeError(w, "open_market", err)
		return
	}
	s.metrics.ok("open_market")

	snap := dto.FromMarket(m)
	ev := events.NewMarketEvent(events.TypeMarketOpened, admin, snap)
	ev.Amount = snap.Reserve
	s.afterCommit(r.Context(), ev)

	reserve := snap.Reserve
	if reserve == "" {
		reserve = "0"
	}
	writeJSON(w, http.StatusCreated, dto.OpenMarketResponse{MarketID: snap.MarketID, Vault: snap.Vault, Reserve: reserve})
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	market, ok := pathAddress(w, r, "id")
	if !ok {
		return
	}
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "bad json")
		return
	}
	if req.OutcomeIndex == nil {
		badRequest(w, "outcome_index required")
		return
	}
	bettor := auth.CallerFromContext(r.Context())

	b, err := s.eng.PlaceBet(r.Context(), engine.PlaceBetParams{
		Bettor:       bettor,
		Market:       market,
		OutcomeIndex: *req.OutcomeIndex,
		Amount:       req.Amount,
	})
	if err != nil {
		s.writeError(w, "place_bet", err)
		return
	}
	s.metrics.ok("place_bet")

	if m, err := s.eng.Market(r.Context(), market); err == nil {
		ev := events.NewMarketEvent(events.TypeBetPlaced, bettor, dto.FromMarket(m))
		ev.Bet = dto.FromBet(b)
		ev.Amount = dto.Amount(b.Amount)
		s.afterCommit(r.Context(), ev)
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{BetID: b.Address.String(), Payout: dto.Amount(b.Payout)})
}

func (s *Server) resolveMarket(w http.ResponseWriter, r *http.Request) {
	market, ok := pathAddress(w, r, "id")
	if !ok {
		return
	}
	var req dto.ResolveMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "bad json")
		return
	}
	if req.WinningIndex == nil {
		badRequest(w, "winning_index required")
		return
	}
	admin := auth.CallerFromContext(r.Context())

	m, err := s.eng.ResolveMarket(r.Context(), admin, market, *req.WinningIndex)
	if err != nil {
		s.writeError(w, "resolve_market", err)
		return
	}
	s.metrics.ok("resolve_market")

	snap := dto.FromMarket(m)
	s.afterCommit(r.Context(), events.NewMarketEvent(events.TypeMarketResolved, admin, snap))
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) closeMarket(w http.ResponseWriter, r *http.Request) {
	market, ok := pathAddress(w, r, "id")
	if !ok {
		return
	}
	admin := auth.CallerFromContext(r.Context())

	res, err := s.eng.CloseMarket(r.Context(), admin, market)
	if err != nil {
		s.writeError(w, "close_market", err)
		return
	}
	s.metrics.ok("close_market")

	snap := dto.FromMarket(res.Market)
	ev := events.NewMarketEvent(events.TypeMarketClosed, admin, snap)
	ev.Amount = dto.Amount(res.Drained)
	s.afterCommit(r.Context(), ev)
	writeJSON(w, http.StatusOK, dto.CloseMarketResponse{MarketID: snap.MarketID, Drained: ev.Amount})
}

func (s *Server) claimPayout(w http.ResponseWriter, r *http.Request) {
	market, ok := pathAddress(w, r, "id")
	if !ok {
		return
	}
	bet, ok := pathAddress(w, r, "betId")
	if !ok {
		return
	}
	bettor := auth.CallerFromContext(r.Context())

	b, err := s.eng.ClaimPayout(r.Context(), bettor, market, bet)
	if err != nil {
		s.writeError(w, "claim_payout", err)
		return
	}
	s.metrics.ok("claim_payout")

	betSnap := dto.FromBet(b)
	if m, err := s.eng.Market(r.Context(), market); err == nil {
		ev := events.NewMarketEvent(events.TypePayoutClaimed, bettor, dto.FromMarket(m))
		ev.Bet = betSnap
		ev.Amount = betSnap.Payout
		s.afterCommit(r.Context(), ev)
	}
	writeJSON(w, http.StatusOK, betSnap)
}

// getMarket lê do cache e cai no store em caso de miss
func (s *Server) getMarket(w http.ResponseWriter, r *http.Request) {
	market, ok := pathAddress(w, r, "id")
	if !ok {
		return
	}
	id := market.String()
	if snap, hit, err := s.cache.Get(r.Context(), id); err == nil && hit {
		writeJSON(w, http.StatusOK, snap)
		return
	} else if err != nil {
		s.log.Warn("market cache get failed", zap.String("market", id), zap.Error(err))
	}

	m, err := s.eng.Market(r.Context(), market)
	if err != nil {
		s.writeError(w, "get_market", err)
		return
	}
	snap := dto.FromMarket(m)
	if err := s.cache.Set(r.Context(), snap); err != nil {
		s.log.Warn("market cache set failed", zap.String("market", id), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getEscrow(w http.ResponseWriter, r *http.Request) {
	market, ok := pathAddress(w, r, "id")
	if !ok {
		return
	}
	rep, err := s.eng.EscrowReport(r.Context(), market)
	if err != nil {
		s.writeError(w, "escrow_report", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEscrow(rep))
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	market, ok := pathAddress(w, r, "id")
	if !ok {
		return
	}
	betAddr, ok := pathAddress(w, r, "betId")
	if !ok {
		return
	}
	b, err := s.eng.Bet(r.Context(), betAddr)
	if err != nil {
		s.writeError(w, "get_bet", err)
		return
	}
	if b.Market != market {
		s.writeError(w, "get_bet", engine.ErrBetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromBet(b))
}

// afterCommit atualiza o cache e publica o evento; falhas só são logadas
// porque a transição já foi confirmada no store
func (s *Server) afterCommit(ctx context.Context, ev events.MarketEvent) {
	if err := s.cache.Set(ctx, ev.Snapshot); err != nil {
		s.log.Warn("market cache set failed", zap.String("market", ev.MarketID), zap.Error(err))
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.publ.Publish(pctx, ev); err != nil {
		s.log.Warn("publish market event failed",
			zap.String("market", ev.MarketID), zap.String("type", ev.Type), zap.Error(err))
	}
}

func pathAddress(w http.ResponseWriter, r *http.Request, param string) (keys.Address, bool) {
	a, err := keys.ParseAddress(chi.URLParam(r, param))
	if err != nil {
		badRequest(w, "invalid "+param)
		return keys.Address{}, false
	}
	return a, true
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

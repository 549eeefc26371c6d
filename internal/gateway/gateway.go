// Package gateway roteia /api/markets/* e /api/wallet/* para os serviços
package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Targets são as URLs base dos serviços atrás do gateway
type Targets struct {
	Market string
	Wallet string
}

func proxy(to string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(to)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid target %q", to)
	}
	rp := httputil.NewSingleHostReverseProxy(u)
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed", zap.String("target", to), zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
	}
	return rp, nil
}

// New monta o handler com CORS liberado para o front
func New(t Targets, log *zap.Logger) (http.Handler, error) {
	market, err := proxy(t.Market, log)
	if err != nil {
		return nil, err
	}
	wallet, err := proxy(t.Wallet, log)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	// /api/markets/* -> market-service /v1/markets/*
	mux.Handle("/api/markets", http.StripPrefix("/api", rewrite("/v1", market)))
	mux.Handle("/api/markets/", http.StripPrefix("/api", rewrite("/v1", market)))
	// /api/ws -> market-service /ws
	mux.Handle("/api/ws", http.StripPrefix("/api", market))
	// /api/wallet/* -> wallet-service /wallet/*
	mux.Handle("/api/wallet", http.StripPrefix("/api", wallet))
	mux.Handle("/api/wallet/", http.StripPrefix("/api", wallet))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(mux), nil
}

// rewrite prefixa o path antes de repassar
func rewrite(prefix string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r2 := r.Clone(r.Context())
		r2.URL.Path = prefix + r.URL.Path
		r2.URL.RawPath = ""
		h.ServeHTTP(w, r2)
	})
}

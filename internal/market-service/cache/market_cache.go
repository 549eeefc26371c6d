package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/radieske/escrow-bet-market/pkg/contracts/events"
)

// setIfNewer grava o snapshot só se a versão em cache não for maior.
// KEYS[1]=chave, ARGV[1]=json, ARGV[2]=versão, ARGV[3]=ttl em ms (0 = sem expiração)
const setIfNewerLua = `
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, old = pcall(cjson.decode, cur)
  if ok and type(old) == 'table' and tonumber(old['version'] or 0) > tonumber(ARGV[2]) then
    return 0
  end
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`

// MarketCache guarda o snapshot público de cada mercado no Redis.
// Vários processos escrevem (API no commit, projector no consumo); a versão
// do snapshot impede que um escritor atrasado sobrescreva um estado mais novo.
type MarketCache struct {
	R   *redis.Client
	TTL time.Duration

	setIfNewer *redis.Script
}

func New(r *redis.Client, ttl time.Duration) *MarketCache {
	return &MarketCache{R: r, TTL: ttl, setIfNewer: redis.NewScript(setIfNewerLua)}
}

func Key(marketID string) string { return "market:snapshot:" + marketID }

func (c *MarketCache) Get(ctx context.Context, marketID string) (events.MarketSnapshot, bool, error) {
	var s events.MarketSnapshot
	b, err := c.R.Get(ctx, Key(marketID)).Bytes()
	if err == redis.Nil {
		return s, false, nil
	}
	if err != nil {
		return s, false, errors.Wrap(err, "redis get")
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, false, errors.Wrap(err, "decode snapshot")
	}
	return s, true, nil
}

// Set grava o snapshot; se o cache já tem uma versão maior, nada muda
func (c *MarketCache) Set(ctx context.Context, s events.MarketSnapshot) error {
	_, err := c.SetIfNewer(ctx, s)
	return err
}

// SetIfNewer grava o snapshot e informa se ele foi aceito
func (c *MarketCache) SetIfNewer(ctx context.Context, s events.MarketSnapshot) (bool, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return false, errors.Wrap(err, "encode snapshot")
	}
	n, err := c.setIfNewer.Run(ctx, c.R, []string{Key(s.MarketID)}, b, s.Version, c.TTL.Milliseconds()).Int()
	if err != nil {
		return false, errors.Wrap(err, "redis set")
	}
	return n == 1, nil
}

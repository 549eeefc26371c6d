package keys

import "crypto/sha256"

// Tags fixas que prefixam cada chave composta
const (
	TagMarket = "market"
	TagBet    = "bet"
	TagVault  = "vault"
)

// MarketSeeds monta as seeds do mercado: (market, liga, temporada)
func MarketSeeds(league, season string) [][]byte {
	return [][]byte{[]byte(TagMarket), []byte(league), []byte(season)}
}

// BetSeeds monta as seeds da aposta: (bet, apostador, mercado).
// A chave só permite uma aposta por apostador por mercado.
// A identidade do apostador entra como hash para caber no limite de seed.
func BetSeeds(bettor string, market Address) [][]byte {
	id := IdentityHash(bettor)
	return [][]byte{[]byte(TagBet), id[:], market[:]}
}

// IdentityHash reduz uma identidade de tamanho arbitrário a 32 bytes
func IdentityHash(identity string) [32]byte {
	return sha256.Sum256([]byte("identity:" + identity))
}

// VaultSeeds monta as seeds da conta de custódia do mercado
func VaultSeeds(market Address) [][]byte {
	return [][]byte{[]byte(TagVault), market[:]}
}

// MarketAddress deriva o endereço do mercado
func (d *Deriver) MarketAddress(league, season string) (Address, uint8, error) {
	return d.FindAddress(MarketSeeds(league, season)...)
}

// BetAddress deriva o endereço da aposta de um apostador num mercado
func (d *Deriver) BetAddress(bettor string, market Address) (Address, uint8, error) {
	return d.FindAddress(BetSeeds(bettor, market)...)
}

// VaultAddress deriva o endereço da conta de custódia do mercado
func (d *Deriver) VaultAddress(market Address) (Address, uint8, error) {
	return d.FindAddress(VaultSeeds(market)...)
}

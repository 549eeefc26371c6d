package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	lru "github.com/hashicorp/golang-lru"
	"github.com/mr-tron/base58"
)

// AddressLength é o tamanho em bytes de um endereço derivado
const AddressLength = 32

// MaxSeedLength limita cada seed individual (mesmo limite usado pelo runtime on-chain)
const MaxSeedLength = 32

const pdaMarker = "ProgramDerivedAddress"

var (
	ErrSeedTooLong   = errors.New("seed too long")
	ErrNoValidBump   = errors.New("no off-curve address for seeds")
	ErrOnCurve       = errors.New("derived address is on the ed25519 curve")
	ErrInvalidBase58 = errors.New("invalid address encoding")
)

// Address é um identificador de 32 bytes, exibido em base58
type Address [AddressLength]byte

func (a Address) String() string { return base58.Encode(a[:]) }

// IsZero indica endereço não inicializado
func (a Address) IsZero() bool { return a == Address{} }

// ParseAddress decodifica um endereço base58
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := base58.Decode(s)
	if err != nil || len(b) != AddressLength {
		return a, ErrInvalidBase58
	}
	copy(a[:], b)
	return a, nil
}

// ProgramID identifica o "programa" dono dos endereços derivados.
// Dois deployments com ProgramID diferentes nunca colidem.
func ProgramID(name string) Address {
	return Address(sha256.Sum256([]byte("program:" + name)))
}

// CreateAddress deriva o endereço para as seeds e o bump informados, sem busca.
// Cada seed entra no hash precedida do seu tamanho, então ["ab","c"] e ["a","bc"]
// geram endereços distintos.
// Retorna ErrOnCurve se o hash cair sobre a curva (endereço com possível chave privada).
func CreateAddress(seeds [][]byte, bump uint8, program Address) (Address, error) {
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return Address{}, fmt.Errorf("%w: %d bytes", ErrSeedTooLong, len(s))
		}
		h.Write([]byte{byte(len(s))})
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(program[:])
	h.Write([]byte(pdaMarker))

	var out Address
	copy(out[:], h.Sum(nil))
	if onCurve(out) {
		return Address{}, ErrOnCurve
	}
	return out, nil
}

// onCurve retorna true quando os bytes decodificam para um ponto ed25519 válido
func onCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// Deriver encontra endereços derivados (bump 255..0) e mantém cache dos resultados,
// já que a busca pode custar várias rodadas de hash
type Deriver struct {
	program Address
	cache   *lru.Cache
}

// NewDeriver cria um Deriver para o programa com cache LRU do tamanho informado
func NewDeriver(program Address, cacheSize int) (*Deriver, error) {
	c, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Deriver{program: program, cache: c}, nil
}

// Program retorna o ProgramID do deriver
func (d *Deriver) Program() Address { return d.program }

type derived struct {
	addr Address
	bump uint8
}

// FindAddress busca o primeiro bump (de 255 para baixo) cujo endereço fica fora da curva
func (d *Deriver) FindAddress(seeds ...[]byte) (Address, uint8, error) {
	ck := cacheKey(seeds)
	if v, ok := d.cache.Get(ck); ok {
		r := v.(derived)
		return r.addr, r.bump, nil
	}
	for b := 255; b >= 0; b-- {
		addr, err := CreateAddress(seeds, uint8(b), d.program)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return Address{}, 0, err
		}
		d.cache.Add(ck, derived{addr: addr, bump: uint8(b)})
		return addr, uint8(b), nil
	}
	return Address{}, 0, ErrNoValidBump
}

// Verify re-deriva o endereço a partir das seeds + bump armazenado e compara com o esperado
func (d *Deriver) Verify(expected Address, bump uint8, seeds ...[]byte) bool {
	addr, err := CreateAddress(seeds, bump, d.program)
	return err == nil && addr == expected
}

// cacheKey serializa as seeds com prefixo de tamanho, evitando colisão entre
// ["ab","c"] e ["a","bc"]
func cacheKey(seeds [][]byte) string {
	buf := make([]byte, 0, 64)
	for _, s := range seeds {
		buf = append(buf, byte(len(s)))
		buf = append(buf, s...)
	}
	return string(buf)
}

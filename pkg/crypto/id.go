package crypto

import (
	"crypto/rand"
	"errors"
	"math/bits"
)

// defaultIDAlphabet is URL-safe: digits, letters, underscore and hyphen.
const defaultIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz-"

// defaultIDLength gives 22*6 = 132 bits of entropy over a 64-character
// alphabet, a shade more than a UUID in fewer characters.
const defaultIDLength = 22

var (
	ErrAlphabetTooLong  = errors.New("alphabet longer than 255 characters")
	ErrAlphabetTooShort = errors.New("alphabet needs at least 8 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must be ASCII")
)

// IDGenerator produces short random identifiers over a fixed alphabet,
// nanoid-style: random bytes are masked down to the alphabet's bit width
// and out-of-range values are discarded, so every character stays
// uniformly distributed.
type IDGenerator struct {
	alphabet string
	mask     byte
}

// NewIDGenerator builds a generator over a custom alphabet. The alphabet
// must be ASCII because generation indexes it by byte.
func NewIDGenerator(alphabet string) (*IDGenerator, error) {
	if len(alphabet) > 255 {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < 8 {
		return nil, ErrAlphabetTooShort
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}

	mask := byte(1<<bits.Len(uint(len(alphabet)-1)) - 1)
	return &IDGenerator{alphabet: alphabet, mask: mask}, nil
}

// DefaultIDGenerator returns a generator over the URL-safe alphabet.
func DefaultIDGenerator() *IDGenerator {
	gen, err := NewIDGenerator(defaultIDAlphabet)
	if err != nil {
		panic(err) // the default alphabet is always valid
	}
	return gen
}

// NewID returns a fresh identifier of the default length.
func (g *IDGenerator) NewID() (string, error) {
	return g.NewIDLen(defaultIDLength)
}

// NewIDLen returns a fresh identifier of n characters.
func (g *IDGenerator) NewIDLen(n int) (string, error) {
	if n <= 0 {
		n = defaultIDLength
	}

	id := make([]byte, 0, n)
	buf := make([]byte, n+n/2)

	for len(id) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & g.mask)
			if idx < len(g.alphabet) {
				id = append(id, g.alphabet[idx])
				if len(id) == n {
					break
				}
			}
		}
	}

	return string(id), nil
}

// Package gameid mints the identifiers games are stored and addressed under.
// An ID is a UUIDv7 rendered as 26 characters of Crockford base32, so IDs
// sort by creation time.
package gameid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded ID.
const Length = 26

// Generator handles game ID generation with configurable randomness
type Generator struct {
	entropy io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new game ID using crypto/rand entropy.
func Generate() string {
	id, err := NewGenerator(nil).Generate()
	if err != nil {
		panic("gameid: failed to generate id: " + err.Error())
	}
	return id
}

// Generate creates a new game ID.
func (g *Generator) Generate() (string, error) {
	var (
		u   uuid.UUID
		err error
	)
	if g.entropy != nil {
		u, err = uuid.NewV7FromReader(g.entropy)
	} else {
		u, err = uuid.NewV7()
	}
	if err != nil {
		return "", fmt.Errorf("gameid: %w", err)
	}
	return encodeBase32(u), nil
}

// encodeBase32 encodes the 128 bits as 26 base32 characters. The value is
// treated as a 130-bit number with two leading zero bits, so the first
// character is always 0-7.
func encodeBase32(data uuid.UUID) string {
	result := make([]byte, Length)
	// Walk the 130-bit big-endian value five bits at a time, most significant first.
	for i := 0; i < Length; i++ {
		var value uint8
		for b := 0; b < 5; b++ {
			bit := i*5 + b - 2 // first two bits are padding
			value <<= 1
			if bit >= 0 {
				value |= (data[bit/8] >> (7 - bit%8)) & 1
			}
		}
		result[i] = alphabet[value]
	}
	return string(result)
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	// First character carries only three significant bits.
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}

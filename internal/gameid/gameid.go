// Package gameid generates the identifiers given to boards and server
// sessions: a UUIDv7 rendered as 26 characters of Crockford base32, so IDs
// sort by creation time.
package gameid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Crockford's base32, lower case.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an ID.
const Length = 26

// RandSource supplies the random part of an ID. *rand.Rand from
// math/rand/v2 satisfies it.
type RandSource interface {
	Uint64() uint64
}

// New returns an ID whose random bits come from src. A nil src uses
// crypto/rand.
func New(src RandSource) string {
	return NewAt(src, time.Now())
}

// NewAt is New with an explicit timestamp.
func NewAt(src RandSource, now time.Time) string {
	var id [16]byte
	binary.BigEndian.PutUint64(id[0:8], uint64(now.UnixMilli())<<16)

	if src != nil {
		binary.BigEndian.PutUint16(id[6:8], uint16(src.Uint64()))
		binary.BigEndian.PutUint64(id[8:16], src.Uint64())
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("gameid: failed to read random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // variant 10
	return encode(id)
}

// encode writes the 128 bits as 26 five-bit groups, most significant
// first, behind two zero pad bits.
func encode(id [16]byte) string {
	out := make([]byte, Length)
	for i := range out {
		var v byte
		for b := 0; b < 5; b++ {
			bit := i*5 + b - 2
			v <<= 1
			if bit >= 0 && id[bit/8]&(0x80>>(bit%8)) != 0 {
				v |= 1
			}
		}
		out[i] = alphabet[v]
	}
	return string(out)
}

// Validate checks that id is 26 base32 characters encoding at most 128
// bits.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}

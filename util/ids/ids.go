package ids

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"
)

// TransferIdBytes is the amount of entropy in a transfer ID: 48 bits, or 8 url-safe characters.
const TransferIdBytes = 6

var errExhausted = errors.New("fixed generator exhausted")

var validTransferId = regexp.MustCompile(`^[A-Za-z0-9_-]{8}$`)

// Generator produces identifiers for new transfers. Tests substitute a fixed sequence.
type Generator interface {
	NewTransferId() (string, error)
}

type randomGenerator struct{}

func NewRandomGenerator() Generator {
	return randomGenerator{}
}

func (randomGenerator) NewTransferId() (string, error) {
	return NewTransferId()
}

// NewTransferId returns an unpadded url-safe base64 encoding of 6 random bytes.
func NewTransferId() (string, error) {
	b := make([]byte, TransferIdBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// IsValidTransferId reports whether the value has the shape of an ID this package produces. It is
// used to reject garbage before it reaches the object store.
func IsValidTransferId(id string) bool {
	return validTransferId.MatchString(id)
}

// FixedGenerator hands out the given IDs in order, then fails.
type FixedGenerator struct {
	Ids []string
	pos int
}

func (g *FixedGenerator) NewTransferId() (string, error) {
	if g.pos >= len(g.Ids) {
		return "", errExhausted
	}
	id := g.Ids[g.pos]
	g.pos++
	return id, nil
}

package crypto

import "github.com/google/uuid"

// IDGenerator mints identifiers for users and schedule documents. Services
// take it as a dependency so tests can pin IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator produces random (v4) UUID strings.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}

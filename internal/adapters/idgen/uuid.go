// Package idgen provides message ID generation.
package idgen

import "github.com/google/uuid"

// UUIDGenerator implements ports.IDGenerator with time-ordered UUIDv7 values,
// so IDs sort in the order they were generated.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Only fails when the random source does; a v4 is still unique.
		return uuid.NewString()
	}
	return id.String()
}

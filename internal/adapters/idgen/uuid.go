package idgen

import "github.com/google/uuid"

// UUIDGenerator issues random version 4 UUIDs as record ids
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

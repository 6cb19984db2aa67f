// Package memory provides an in-memory Repository implementation for
// tests and local development.
package memory

import (
	"github.com/equitylens/strata/pkg/domain/interfaces"
)

type Memory struct {
	chunk *chunkRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		chunk: newChunkRepository(),
	}
}

func (m *Memory) Chunk() interfaces.ChunkRepository {
	return m.chunk
}

func (m *Memory) Close() error {
	return nil
}

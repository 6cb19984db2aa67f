package types

import "fmt"

// ChunkLevel represents the level of a chunk in the two-level hierarchy
type ChunkLevel string

const (
	// LevelSummary is a multi-sentence passage covering a broad topic
	LevelSummary ChunkLevel = "SUMMARY"
	// LevelDetail is a single sentence carrying a specific claim
	LevelDetail ChunkLevel = "DETAIL"
)

// AllChunkLevels returns all valid chunk levels
func AllChunkLevels() []ChunkLevel {
	return []ChunkLevel{
		LevelSummary,
		LevelDetail,
	}
}

// IsValid checks if the chunk level is valid
func (l ChunkLevel) IsValid() bool {
	switch l {
	case LevelSummary, LevelDetail:
		return true
	default:
		return false
	}
}

// String returns the string representation of the chunk level
func (l ChunkLevel) String() string {
	return string(l)
}

// ParseChunkLevel parses a string into a ChunkLevel
func ParseChunkLevel(s string) (ChunkLevel, error) {
	level := ChunkLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid chunk level: %s", s)
	}
	return level, nil
}

package config

// NewChunkingForTest creates a Chunking config for testing purposes
func NewChunkingForTest(configPath string, summaryFlush, paragraphFlush, minSentenceRunes int) *Chunking {
	return &Chunking{
		configPath:       configPath,
		summaryFlush:     summaryFlush,
		paragraphFlush:   paragraphFlush,
		minSentenceRunes: minSentenceRunes,
	}
}

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

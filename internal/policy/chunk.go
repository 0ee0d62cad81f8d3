package policy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Chunk is the unit of retrieval: one paragraph of handbook/policy text with
// its section metadata. Chunks are loaded once at startup and never mutated.
type Chunk struct {
	ID       string  `json:"id"`
	Section  string  `json:"section"`
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	Source   string  `json:"source,omitempty"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
}

// Reference is a citation handed back to the caller, either synthesized by
// the rule engine or derived from a similarity match.
type Reference struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// LoadChunks reads the chunked policy corpus from a JSON file. A missing
// file is not an error: the index simply stays not-ready.
func LoadChunks(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy chunks: %w", err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode policy chunks: %w", err)
	}

	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = fmt.Sprintf("policy-%d", i)
		}
		if chunks[i].Section == "" {
			chunks[i].Section = "?"
		}
		if chunks[i].Title == "" {
			chunks[i].Title = "Policy"
		}
		if chunks[i].Category == "" {
			chunks[i].Category = "UNKNOWN"
		}
		if chunks[i].Weight == 0 {
			chunks[i].Weight = 1.0
		}
	}
	return chunks, nil
}

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"threadscraper/pkg/models"
)

// RunInfo describes the scrape that produced a set of records
type RunInfo struct {
	TargetURL      string    `json:"target_url"`
	StorageMode    string    `json:"storage_mode"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	AuthOutcome    string    `json:"auth_outcome,omitempty"`
	StopReason     string    `json:"stop_reason,omitempty"`
	ScrollAttempts int       `json:"scroll_attempts"`
	PostsFound     int       `json:"posts_found"`
	ImagesStored   int       `json:"images_stored"`
	ImagesFailed   int       `json:"images_failed"`
}

// Sidecar is the JSON document written next to the tables
type Sidecar struct {
	Run   RunInfo             `json:"run"`
	Posts []models.PostRecord `json:"posts"`
}

// WriteJSON writes the records and run metadata as indented JSON
func WriteJSON(path string, records []models.PostRecord, run RunInfo) error {
	if records == nil {
		records = []models.PostRecord{}
	}
	data, err := json.MarshalIndent(Sidecar{Run: run, Posts: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sidecar: %w", err)
	}

	return replaceFile(path, func(f *os.File) error {
		_, err := f.Write(append(data, '\n'))
		return err
	})
}

// LoadJSON reads a sidecar written by WriteJSON
func LoadJSON(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar: %w", err)
	}

	var s Sidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sidecar: %w", err)
	}
	return &s, nil
}

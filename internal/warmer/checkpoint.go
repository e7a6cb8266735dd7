package warmer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint is the saved position of a warming run
type Checkpoint struct {
	LastTerm  string    `json:"last_term"`
	Index     int       `json:"index"`
	StartedAt time.Time `json:"started_at"`
	SavedAt   time.Time `json:"saved_at"`
	Stats     struct {
		Success int `json:"success"`
		Failed  int `json:"failed"`
		Skipped int `json:"skipped"`
	} `json:"stats"`
}

// CheckpointManager handles saving and loading warmer state
type CheckpointManager struct {
	filePath string
}

func NewCheckpointManager(filePath string) *CheckpointManager {
	return &CheckpointManager{filePath: filePath}
}

// Save writes the checkpoint atomically through a temp file
func (c *CheckpointManager) Save(lastTerm string, index int, progress *ProgressTracker) error {
	snapshot := progress.GetSnapshot()

	checkpoint := Checkpoint{
		LastTerm:  lastTerm,
		Index:     index,
		StartedAt: snapshot.StartedAt,
		SavedAt:   time.Now(),
	}
	checkpoint.Stats.Success = snapshot.Success
	checkpoint.Stats.Failed = snapshot.Failed
	checkpoint.Stats.Skipped = snapshot.Skipped

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.filePath), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.filePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}
	return nil
}

// Load returns the saved checkpoint, or nil when there is none
func (c *CheckpointManager) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}

	return &checkpoint, nil
}

// Delete removes the checkpoint file
func (c *CheckpointManager) Delete() error {
	if err := os.Remove(c.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

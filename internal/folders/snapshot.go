package folders

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

func LoadSnapshot(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s model.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}

	return &s, nil
}

func SaveSnapshot(path string, s *model.Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

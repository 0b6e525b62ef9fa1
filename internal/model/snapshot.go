package model

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the folder state of an account as returned by the server and as
// written by backups.
type Snapshot struct {
	TagsEnabled bool
	Filters     []Folder
}

type snapshotJson struct {
	TagsEnabled bool              `json:"tags_enabled"`
	Filters     []json.RawMessage `json:"filters"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJson{TagsEnabled: s.TagsEnabled, Filters: make([]json.RawMessage, 0, len(s.Filters))}
	for i, f := range s.Filters {
		raw, err := MarshalFolder(f)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		out.Filters = append(out.Filters, raw)
	}

	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJson
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	filters := make([]Folder, 0, len(in.Filters))
	for i, raw := range in.Filters {
		f, err := UnmarshalFolder(raw)
		if err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
		filters = append(filters, f)
	}
	s.TagsEnabled = in.TagsEnabled
	s.Filters = filters

	return nil
}

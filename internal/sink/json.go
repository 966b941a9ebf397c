package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"capescraper/internal/cape"
)

// GroupedJSON keeps an object mapping each department id (or subject code) to its records. The whole
// document is rewritten on every flush so the file on disk is always complete.
type GroupedJSON struct {
	path   string
	groups map[string][]cape.EvaluationRecord
	dirty  bool
}

func NewGroupedJSON(path string) *GroupedJSON {
	return &GroupedJSON{
		path:   path,
		groups: map[string][]cape.EvaluationRecord{},
	}
}

func (s *GroupedJSON) Write(_ context.Context, query cape.Query, records []cape.EvaluationRecord) error {
	group := query.Group()
	s.groups[group] = append(s.groups[group], slices.Clone(records)...)
	s.dirty = true
	return nil
}

func (s *GroupedJSON) Flush() error {
	if !s.dirty {
		return nil
	}
	serialized, err := json.MarshalIndent(s.groups, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(serialized)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	err = os.Rename(tmp.Name(), s.path)
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	s.dirty = false
	return nil
}

func (s *GroupedJSON) Close() error {
	if len(s.groups) == 0 {
		// an empty run still leaves a valid document behind
		s.dirty = true
	}
	return s.Flush()
}

// ReadGroupedJSON reads a document written by GroupedJSON.
func ReadGroupedJSON(path string) (map[string][]cape.EvaluationRecord, error) {
	serialized, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var groups map[string][]cape.EvaluationRecord
	err = json.Unmarshal(serialized, &groups)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

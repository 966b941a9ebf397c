package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"capescraper/internal/cape"
)

// TSV writes one tab separated line per record, in cape.FieldNames order.
type TSV struct {
	file   io.Closer
	writer *csv.Writer
}

func newTSVWriter(w io.Writer) *csv.Writer {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	return writer
}

// NewTSV writes to w, closing w on Close if it is an io.Closer.
func NewTSV(w io.Writer, header bool) (*TSV, error) {
	sink := &TSV{writer: newTSVWriter(w)}
	if closer, ok := w.(io.Closer); ok {
		sink.file = closer
	}
	if header {
		err := sink.writer.Write(cape.FieldNames)
		if err != nil {
			return nil, err
		}
	}
	return sink, nil
}

// CreateTSV truncates (or creates) the file at path.
func CreateTSV(path string, header bool) (*TSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	sink, err := NewTSV(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}
	return sink, nil
}

func (s *TSV) Write(_ context.Context, _ cape.Query, records []cape.EvaluationRecord) error {
	for _, r := range records {
		err := s.writer.Write(r.Fields())
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TSV) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

func (s *TSV) Close() error {
	err := s.Flush()
	if s.file != nil {
		err = errors.Join(err, s.file.Close())
	}
	return err
}

// ReadTSV reads back what TSV wrote, with or without the header line.
func ReadTSV(r io.Reader) ([]cape.EvaluationRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = len(cape.FieldNames)
	reader.ReuseRecord = true

	var out []cape.EvaluationRecord
	for line := 1; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && slices.Equal(fields, cape.FieldNames) {
			continue
		}
		record, err := cape.RecordFromFields(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, record)
	}
}

// ReadTSVFile is ReadTSV on the file at path.
func ReadTSVFile(path string) ([]cape.EvaluationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTSV(f)
}

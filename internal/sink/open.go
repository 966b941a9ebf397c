package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"capescraper/internal/cape"
	"capescraper/internal/chrono"
	configlibsql "capescraper/lib/configutil/libsql"
)

const (
	FormatTSV    = "tsv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
	FormatXLSX   = "xlsx"
)

// Output is one configured destination.
type Output struct {
	Format string `json:"format"`
	// Path is the output file, for sqlite Database may be used instead.
	Path string `json:"path"`
	// Header writes the field names as the first tsv line.
	Header   bool                `json:"header"`
	Database configlibsql.Struct `json:"database"`
}

// Open opens every output, a single output is returned as is.
func Open(ctx context.Context, outputs []Output, clock chrono.TimeAPI) (cape.Sink, error) {
	if len(outputs) == 0 {
		return nil, fmt.Errorf("no outputs configured")
	}

	var opened Multi
	for _, out := range outputs {
		s, err := openOne(ctx, out, clock)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("open %s output: %w", out.Format, err),
				opened.Close(),
			)
		}
		opened = append(opened, s)
	}
	if len(opened) == 1 {
		return opened[0], nil
	}
	return opened, nil
}

func ensureDir(path string) error {
	if path == "" {
		return fmt.Errorf("a path was not specified")
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}

func openOne(ctx context.Context, out Output, clock chrono.TimeAPI) (cape.Sink, error) {
	switch out.Format {
	case FormatTSV, "":
		err := ensureDir(out.Path)
		if err != nil {
			return nil, err
		}
		return CreateTSV(out.Path, out.Header)
	case FormatJSON:
		err := ensureDir(out.Path)
		if err != nil {
			return nil, err
		}
		return NewGroupedJSON(out.Path), nil
	case FormatXLSX:
		err := ensureDir(out.Path)
		if err != nil {
			return nil, err
		}
		return NewXLSX(out.Path)
	case FormatSQLite:
		database := out.Database
		if database.File == "" && database.Url == "" {
			database.File = out.Path
		}
		conn, err := database.OpenDB()
		if err != nil {
			return nil, err
		}
		s, err := NewSQLite(ctx, conn, clock, true)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown output format %q", out.Format)
}

package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "capescraper_test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetupFromEnvMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	_, err = SetupFromEnv(context.Background(), "capescraper_test")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "telemetry.json5"), []byte(`{
		// nothing to export to
		otlp: {},
	}`), 0600))
	tel, err := SetupFromEnv(context.Background(), "capescraper_test")
	require.NoError(t, err)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitSlog(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	InitSlog(&buf, false)
	slog.Debug("hidden")
	slog.Info("shown", "query", "CSE")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	InitSlog(&buf, true)
	slog.Debug("visible now")
	require.Contains(t, buf.String(), "visible now")
}

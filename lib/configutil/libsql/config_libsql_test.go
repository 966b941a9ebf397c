package configlibsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenDB(t *testing.T) {
	_, err := Struct{}.OpenDB()
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "nested", "cape.db")
	db, err := Struct{File: path}.OpenDB()
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)
	require.FileExists(t, path)
}

func TestRemoteDSN(t *testing.T) {
	require.Equal(t, "libsql://cape.turso.io", Struct{Url: "libsql://cape.turso.io"}.remoteDSN())
	require.Equal(t,
		"libsql://cape.turso.io?authToken=secret",
		Struct{Url: "libsql://cape.turso.io", AuthToken: "secret"}.remoteDSN(),
	)
	require.Equal(t,
		"http://127.0.0.1:8080?tls=0&authToken=secret",
		Struct{Url: "http://127.0.0.1:8080?tls=0", AuthToken: "secret"}.remoteDSN(),
	)
}

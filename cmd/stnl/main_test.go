package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joacominatel/stnl/internal/config"
	"github.com/joacominatel/stnl/internal/database"
	"github.com/joacominatel/stnl/internal/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementBuffer(t *testing.T) {
	var buf statementBuffer
	assert.True(t, buf.Empty())

	_, ok := buf.Feed("SELECT id,")
	assert.False(t, ok)
	assert.False(t, buf.Empty())

	stmt, ok := buf.Feed("  name FROM product;  ")
	require.True(t, ok)
	assert.Equal(t, "SELECT id,\n  name FROM product;", stmt)
	assert.True(t, buf.Empty())

	stmt, ok = buf.Feed("SELECT 1;")
	require.True(t, ok)
	assert.Equal(t, "SELECT 1;", stmt)
}

func TestIsExit(t *testing.T) {
	for _, s := range []string{"exit", "QUIT", `\q`, `\quit`} {
		assert.True(t, isExit(s), s)
	}
	assert.False(t, isExit("exit;"))
}

func TestShellFormatCommand(t *testing.T) {
	var out bytes.Buffer
	sh := &shell{out: &out, format: formatTable}

	sh.command(`\format csv`)
	assert.Equal(t, formatCSV, sh.format)

	sh.command(`\format yaml`)
	assert.Equal(t, formatCSV, sh.format)
	assert.Contains(t, out.String(), "unknown format yaml")

	sh.command(`\describe`)
	assert.Contains(t, out.String(), `unknown command \describe`)
}

func sampleResult() postgres.QResult {
	return postgres.QResult{
		OK:     true,
		Fields: []pgconn.FieldDescription{{Name: "id"}, {Name: "name"}},
		Rows:   [][]any{{int64(1), "Widget"}, {int64(2), nil}},
	}
}

func TestWriteResultCSV(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeResult(context.Background(), &out, nil, sampleResult(), formatCSV))
	assert.Equal(t, "id,name\n1,Widget\n2,NULL\n", out.String())

	out.Reset()
	require.NoError(t, writeResult(context.Background(), &out, nil, postgres.QResult{Msg: "syntax error"}, formatCSV))
	assert.Equal(t, "syntax error\n", out.String())
}

func TestWriteResultTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeResult(context.Background(), &out, nil, sampleResult(), formatTable))
	assert.Contains(t, out.String(), "Widget")
	assert.Contains(t, out.String(), "(2 row(s))")

	out.Reset()
	require.NoError(t, writeResult(context.Background(), &out, nil, postgres.QResult{Msg: "boom"}, formatTable))
	assert.Contains(t, out.String(), "Error: boom")
}

func TestWriteEnvelope(t *testing.T) {
	var out bytes.Buffer
	env := postgres.Envelope{OK: true, Data: []map[string]any{{"id": int64(1)}}}
	require.NoError(t, writeEnvelope(&out, env))
	assert.JSONEq(t, `{"ok":true,"msg":"","data":[{"id":1}]}`, out.String())
}

func TestInitProfile(t *testing.T) {
	c := &InitCmd{DSN: "postgres://app:pw@db.local/shop", Port: 6543, Workers: 2}
	db, err := c.profile("reports")
	require.NoError(t, err)
	assert.Equal(t, "reports", db.Alias)
	assert.Equal(t, "shop", db.Name)
	assert.Equal(t, "pw", db.Password)
	assert.Equal(t, 6543, db.Port)
	assert.Equal(t, 2, db.Workers)

	_, err = (&InitCmd{User: "app"}).profile("default")
	assert.Error(t, err)
}

func TestInitRunWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	g := &Globals{Config: path, Alias: "default"}

	require.NoError(t, (&InitCmd{Name: "shop", User: "app"}).Run(g))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	db, ok := cfg.Database("default")
	require.True(t, ok)
	assert.Equal(t, "shop", db.Name)
	assert.Equal(t, config.DefaultHost, db.Host)
}

func TestApplySchemas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  - name: tag\n    columns:\n      - name: label\n        type: text\n"), 0o600))

	m := database.NewMigration()
	require.NoError(t, applySchemas(m, []string{path}))
	_, ok := m.Blueprint("tag")
	assert.True(t, ok)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tables:\n  - name: t\n    columns:\n      - name: a\n        type: money\n"), 0o600))
	assert.ErrorIs(t, applySchemas(database.NewMigration(), []string{bad}), config.ErrUnknownType)
}

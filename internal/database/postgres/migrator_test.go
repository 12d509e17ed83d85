package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/joacominatel/stnl/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDriver serves live blueprints from memory and records executed SQL.
type memDriver struct {
	tables   map[string]*database.Blueprint
	executed []string
	failOn   string
}

func newMemDriver(live ...*database.Blueprint) *memDriver {
	d := &memDriver{tables: make(map[string]*database.Blueprint)}
	for _, bp := range live {
		d.tables[strings.ToLower(bp.TableName())] = bp
	}
	return d
}

func (d *memDriver) TableExists(_ context.Context, table string) (bool, error) {
	_, ok := d.tables[strings.ToLower(table)]
	return ok, nil
}

func (d *memDriver) QueryBlueprint(_ context.Context, table string) (*database.Blueprint, error) {
	bp, ok := d.tables[strings.ToLower(table)]
	if !ok {
		return database.NewBlueprint(table), nil
	}
	return bp, nil
}

func (d *memDriver) ExecStatement(_ context.Context, sql string) error {
	if d.failOn != "" && strings.Contains(sql, d.failOn) {
		return errors.New("boom")
	}
	d.executed = append(d.executed, sql)
	return nil
}

func quietMigrator() *Migrator {
	return NewMigrator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMigrateCreatesMissingTable(t *testing.T) {
	drv := newMemDriver()
	m := database.NewMigration().Table("project", func(bp *database.Blueprint) {
		bp.BigInt("id").Identity().Index()
		bp.Varchar("name").NotNull()
		bp.Bit("active").NotNull().Default()
	})

	require.NoError(t, quietMigrator().Migrate(context.Background(), drv, m))

	want, err := CreateTableSQL(projectBlueprint())
	require.NoError(t, err)
	assert.Equal(t, want, drv.executed)
}

func TestMigrateUpToDateTableIsNoop(t *testing.T) {
	live := projectBlueprint()
	active, _ := live.Column("active")
	active.Default = `'1'::"bit"`

	drv := newMemDriver(live)
	m := database.NewMigration().Table("project", func(bp *database.Blueprint) {
		bp.BigInt("id").Identity().Index()
		bp.Varchar("name").NotNull()
		bp.Bit("active").NotNull().Default()
	})

	require.NoError(t, quietMigrator().Migrate(context.Background(), drv, m))
	assert.Empty(t, drv.executed)
}

func TestMigrateRestoresNotNull(t *testing.T) {
	live := projectBlueprint()
	name, _ := live.Column("name")
	name.Nullable = true

	drv := newMemDriver(live)
	err := quietMigrator().ApplyBlueprint(context.Background(), drv, projectBlueprint())
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTER TABLE project ALTER COLUMN name SET NOT NULL"}, drv.executed)
}

func TestDiffBlueprint(t *testing.T) {
	tests := []struct {
		name    string
		live    func(bp *database.Blueprint)
		desired func(bp *database.Blueprint)
		want    []string
	}{
		{
			name: "add column",
			live: func(bp *database.Blueprint) { bp.BigInt("id") },
			desired: func(bp *database.Blueprint) {
				bp.BigInt("id")
				bp.Timestamp("created_at").Default().Index()
			},
			want: []string{
				"ALTER TABLE t ADD COLUMN created_at TIMESTAMP(6) WITH TIME ZONE NOT NULL CONSTRAINT t_created_at_default DEFAULT CURRENT_TIMESTAMP",
				"CREATE INDEX CONCURRENTLY IF NOT EXISTS t_created_at_idx ON t (created_at)",
			},
		},
		{
			name:    "varchar length",
			live:    func(bp *database.Blueprint) { bp.Varchar("name").Length(100) },
			desired: func(bp *database.Blueprint) { bp.Varchar("name") },
			want:    []string{"ALTER TABLE t ALTER COLUMN name TYPE VARCHAR(255)"},
		},
		{
			name:    "numeric scale",
			live:    func(bp *database.Blueprint) { bp.Numeric("price") },
			desired: func(bp *database.Blueprint) { bp.Numeric("price").Precision(9).Scale(2) },
			want:    []string{"ALTER TABLE t ALTER COLUMN price TYPE NUMERIC(9,2)"},
		},
		{
			name:    "allow null",
			live:    func(bp *database.Blueprint) { bp.Text("note") },
			desired: func(bp *database.Blueprint) { bp.Text("note").Null() },
			want:    []string{"ALTER TABLE t ALTER COLUMN note DROP NOT NULL"},
		},
		{
			name:    "add identity",
			live:    func(bp *database.Blueprint) { bp.Integer("id") },
			desired: func(bp *database.Blueprint) { bp.Integer("id").Identity() },
			want:    []string{"ALTER TABLE t ALTER COLUMN id ADD GENERATED BY DEFAULT AS IDENTITY"},
		},
		{
			name:    "drop identity",
			live:    func(bp *database.Blueprint) { bp.Integer("id").Identity() },
			desired: func(bp *database.Blueprint) { bp.Integer("id") },
			want:    []string{"ALTER TABLE t ALTER COLUMN id DROP IDENTITY"},
		},
		{
			name:    "set default",
			live:    func(bp *database.Blueprint) { bp.Boolean("flag") },
			desired: func(bp *database.Blueprint) { bp.Boolean("flag").Default() },
			want:    []string{"ALTER TABLE t ALTER COLUMN flag SET DEFAULT true"},
		},
		{
			name:    "drop default",
			live:    func(bp *database.Blueprint) { bp.Varchar("code").Default("'x'::character varying") },
			desired: func(bp *database.Blueprint) { bp.Varchar("code") },
			want:    []string{"ALTER TABLE t ALTER COLUMN code DROP DEFAULT"},
		},
		{
			name:    "uuid identity default",
			live:    func(bp *database.Blueprint) { bp.UUID("uid") },
			desired: func(bp *database.Blueprint) { bp.UUID("uid").Identity() },
			want:    []string{"ALTER TABLE t ALTER COLUMN uid SET DEFAULT uuidv7()"},
		},
		{
			name:    "index to unique",
			live:    func(bp *database.Blueprint) { bp.Char("code").Index() },
			desired: func(bp *database.Blueprint) { bp.Char("code").Unique() },
			want: []string{
				"CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS t_code_key ON t (code)",
				"DROP INDEX CONCURRENTLY IF EXISTS t_code_idx",
			},
		},
		{
			name:    "unique to index",
			live:    func(bp *database.Blueprint) { bp.Char("code").Unique() },
			desired: func(bp *database.Blueprint) { bp.Char("code").Index() },
			want: []string{
				"DROP INDEX CONCURRENTLY IF EXISTS t_code_key",
				"CREATE INDEX CONCURRENTLY IF NOT EXISTS t_code_idx ON t (code)",
			},
		},
		{
			name:    "drop index",
			live:    func(bp *database.Blueprint) { bp.Date("day").Index() },
			desired: func(bp *database.Blueprint) { bp.Date("day") },
			want:    []string{"DROP INDEX CONCURRENTLY IF EXISTS t_day_idx"},
		},
		{
			name:    "unique and index stays",
			live:    func(bp *database.Blueprint) { bp.UUID("uid").Unique() },
			desired: func(bp *database.Blueprint) { bp.UUID("uid").Index().Unique() },
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := database.NewBlueprint("t")
			tt.live(live)
			desired := database.NewBlueprint("t")
			tt.desired(desired)

			got, err := DiffBlueprint(live, desired)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrateContinuesAfterFailure(t *testing.T) {
	drv := newMemDriver()
	drv.failOn = "CREATE TABLE broken"

	m := database.NewMigration().
		Table("broken", func(bp *database.Blueprint) { bp.BigInt("id") }).
		Table("fine", func(bp *database.Blueprint) { bp.BigInt("id") }).
		Procedure("touch", func(sp *database.ProcedureBlueprint) {
			sp.SetBody("UPDATE fine SET id = id")
		})

	err := quietMigrator().Migrate(context.Background(), drv, m)
	require.Error(t, err)

	var migErr *MigrationError
	require.True(t, errors.As(err, &migErr))
	assert.Equal(t, "broken", migErr.Name)
	assert.Contains(t, migErr.SQL, "CREATE TABLE broken")

	require.Len(t, drv.executed, 2)
	assert.Contains(t, drv.executed[0], "CREATE TABLE fine")
	assert.Contains(t, drv.executed[1], "CREATE OR REPLACE PROCEDURE touch()")
}

func TestMigrateUndefinedTypeFailsTable(t *testing.T) {
	drv := newMemDriver()
	m := database.NewMigration().Table("odd", func(bp *database.Blueprint) {
		bp.AddColumn(database.NewColumn("odd", "mystery"))
	})

	err := quietMigrator().Migrate(context.Background(), drv, m)
	assert.ErrorIs(t, err, database.ErrUndefinedType)
	assert.Empty(t, drv.executed)
}

func TestPlanDoesNotExecute(t *testing.T) {
	drv := newMemDriver()
	stmts, err := quietMigrator().Plan(context.Background(), drv, projectBlueprint())
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
	assert.Empty(t, drv.executed)
}

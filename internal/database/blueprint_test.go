package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlueprintTypeDefaults(t *testing.T) {
	bp := NewBlueprint("product")
	bp.Varchar("name")
	bp.Char("code")
	bp.Bit("active")
	bp.Numeric("price")
	bp.Timestamp("created")

	tests := []struct {
		column    string
		typ       ColumnType
		length    int
		precision int
		scale     int
	}{
		{"name", Varchar, DefaultVarcharLength, 0, 0},
		{"code", Char, DefaultCharLength, 0, 0},
		{"active", Bit, DefaultBitLength, 0, 0},
		{"price", Numeric, 0, DefaultNumericPrecision, 0},
		{"created", Timestamp, 0, DefaultTimestampPrecision, 0},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			col, ok := bp.Column(tt.column)
			require.True(t, ok)
			assert.Equal(t, tt.typ, col.Type)
			assert.Equal(t, tt.length, col.Length)
			assert.Equal(t, tt.precision, col.Precision)
			assert.Equal(t, tt.scale, col.Scale)
		})
	}
}

func TestBlueprintRedeclarationAccumulates(t *testing.T) {
	bp := NewBlueprint("product")
	bp.Varchar("Name").Length(80)
	bp.Varchar("name").NotNull().Unique()
	bp.BigInt("id").Identity()
	bp.BigInt("ID").Index()

	require.Equal(t, 2, bp.Len())
	assert.Equal(t, []string{"name", "id"}, bp.ColumnNames())

	name, ok := bp.Column("NAME")
	require.True(t, ok)
	assert.Equal(t, "Name", name.RealName)
	assert.Equal(t, 80, name.Length, "reopening the same type keeps earlier modifiers")
	assert.True(t, name.Unique)
	assert.False(t, name.Nullable)

	id, _ := bp.Column("id")
	assert.True(t, id.Identity)
	assert.True(t, id.Index)
}

func TestBlueprintColumnOrder(t *testing.T) {
	bp := NewBlueprint("project")
	bp.BigInt("id").Identity().Index()
	bp.UUID("uuid").NotNull().Default().Unique()
	bp.Varchar("name").NotNull()
	bp.Bit("active").N(1).NotNull().Default()

	var names []string
	for _, col := range bp.Columns() {
		names = append(names, col.RealName)
		assert.Equal(t, "project", col.TableName)
	}
	assert.Equal(t, []string{"id", "uuid", "name", "active"}, names)
}

func TestColumnDefaults(t *testing.T) {
	bp := NewBlueprint("t")

	assert.Equal(t, "uuidv7()", bp.UUID("u").Default().Column().Default)
	assert.Equal(t, "true", bp.Boolean("b").Default().Column().Default)
	assert.Equal(t, "CURRENT_TIMESTAMP", bp.Timestamp("ts").Default().Column().Default)
	assert.Equal(t, "CURRENT_DATE", bp.Date("d").Default().Column().Default)
	assert.Equal(t, "'1'", bp.Bit("bit").Default().Column().Default)
	assert.Equal(t, "'<empty>'", bp.Varchar("v").Default("'<empty>'").Column().Default)
	assert.Equal(t, "", bp.Text("txt").Default().Column().Default)
}

func TestEffectiveDefault(t *testing.T) {
	bp := NewBlueprint("t")
	key := bp.UUID("key").Identity().Column()
	assert.Equal(t, "", key.Default)
	assert.Equal(t, "uuidv7()", key.EffectiveDefault())

	explicit := bp.UUID("other").Identity().Default("gen_random_uuid()").Column()
	assert.Equal(t, "gen_random_uuid()", explicit.EffectiveDefault())

	plain := bp.UUID("plain").Column()
	assert.Equal(t, "", plain.EffectiveDefault())
}

func TestBlueprintAddColumnKeepsPosition(t *testing.T) {
	bp := NewBlueprint("t")
	bp.AddColumn(NewColumn("t", "a"))
	bp.AddColumn(NewColumn("t", "b"))

	replacement := NewColumn("t", "A")
	replacement.Nullable = true
	bp.AddColumn(replacement)

	assert.Equal(t, []string{"a", "b"}, bp.ColumnNames())
	col, _ := bp.Column("a")
	assert.True(t, col.Nullable)
}

func TestParseColumnType(t *testing.T) {
	assert.Equal(t, BigInt, ParseColumnType("BIGINT"))
	assert.Equal(t, Varchar, ParseColumnType("character varying"))
	assert.Equal(t, Timestamp, ParseColumnType("timestamptz"))
	assert.Equal(t, Undefined, ParseColumnType("jsonb"))
	assert.Equal(t, "varchar", Varchar.String())
}

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationTableAccumulates(t *testing.T) {
	m := NewMigration()
	m.Table("Product", func(bp *Blueprint) {
		bp.BigInt("id").Identity()
	})
	m.Table("category", func(bp *Blueprint) {
		bp.Varchar("name")
	})
	m.Table("product", func(bp *Blueprint) {
		bp.Varchar("name").NotNull()
	})

	assert.Equal(t, []string{"product", "category"}, m.TableNames())

	bp, ok := m.Blueprint("PRODUCT")
	require.True(t, ok)
	assert.Equal(t, "Product", bp.TableName())
	assert.Equal(t, []string{"id", "name"}, bp.ColumnNames())
}

func TestMigrationProcedure(t *testing.T) {
	m := NewMigration()
	assert.True(t, m.Empty())

	m.Procedure("add_product", func(sp *ProcedureBlueprint) {
		sp.Varchar("p_name").Length(100)
		sp.Numeric("p_price").Precision(9).Scale(2)
		sp.BigInt("p_id").Out()
		sp.SetBody("INSERT INTO product (name, price) VALUES (p_name, p_price)")
	})
	m.Procedure("ADD_PRODUCT", func(sp *ProcedureBlueprint) {
		sp.Integer("p_count").InOut().Default("0")
	})

	require.Equal(t, []string{"add_product"}, m.ProcedureNames())
	sp, ok := m.ProcedureBlueprint("add_product")
	require.True(t, ok)
	assert.Equal(t, DefaultProcedureLanguage, sp.Language)
	assert.Equal(t, []string{"p_name", "p_price", "p_id", "p_count"}, sp.ParamNames())

	params := sp.Params()
	assert.Equal(t, "IN", params[0].Mode())
	assert.Equal(t, 100, params[0].Length)
	assert.Equal(t, 2, params[1].Scale)
	assert.Equal(t, "OUT", params[2].Mode())
	assert.Equal(t, "INOUT", params[3].Mode())
	assert.Equal(t, "0", params[3].Default)
	assert.False(t, m.Empty())
}

func TestMigrationNilConfigure(t *testing.T) {
	m := NewMigration()
	m.Table("t", nil).Procedure("p", nil)
	assert.Equal(t, []string{"t"}, m.TableNames())
	assert.Equal(t, []string{"p"}, m.ProcedureNames())
}

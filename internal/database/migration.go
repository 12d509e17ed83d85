package database

import "strings"

// Migration is the desired state of one reconciliation run: the tables and
// stored procedures to converge, in declaration order.
//
// A Migration is not safe for concurrent registration. Declare everything
// during startup, before the migrator runs.
type Migration struct {
	tableNames []string
	blueprints map[string]*Blueprint

	procedureNames []string
	procedures     map[string]*ProcedureBlueprint
}

// NewMigration creates an empty migration.
func NewMigration() *Migration {
	return &Migration{
		blueprints: make(map[string]*Blueprint),
		procedures: make(map[string]*ProcedureBlueprint),
	}
}

// Table looks up or creates the blueprint for name and passes it to configure.
// Repeated declarations of the same table accumulate on one blueprint.
func (m *Migration) Table(name string, configure func(bp *Blueprint)) *Migration {
	key := strings.ToLower(name)
	bp, ok := m.blueprints[key]
	if !ok {
		bp = NewBlueprint(name)
		m.blueprints[key] = bp
		m.tableNames = append(m.tableNames, key)
	}
	if configure != nil {
		configure(bp)
	}
	return m
}

// Procedure is the stored-procedure counterpart of Table.
func (m *Migration) Procedure(name string, configure func(sp *ProcedureBlueprint)) *Migration {
	key := strings.ToLower(name)
	sp, ok := m.procedures[key]
	if !ok {
		sp = NewProcedureBlueprint(name)
		m.procedures[key] = sp
		m.procedureNames = append(m.procedureNames, key)
	}
	if configure != nil {
		configure(sp)
	}
	return m
}

// TableNames returns the lower-cased table keys in declaration order.
func (m *Migration) TableNames() []string {
	return m.tableNames
}

// Blueprint returns the declared blueprint for a table.
func (m *Migration) Blueprint(name string) (*Blueprint, bool) {
	bp, ok := m.blueprints[strings.ToLower(name)]
	return bp, ok
}

// ProcedureNames returns the lower-cased procedure keys in declaration order.
func (m *Migration) ProcedureNames() []string {
	return m.procedureNames
}

// ProcedureBlueprint returns the declared blueprint for a procedure.
func (m *Migration) ProcedureBlueprint(name string) (*ProcedureBlueprint, bool) {
	sp, ok := m.procedures[strings.ToLower(name)]
	return sp, ok
}

// Empty reports whether nothing has been declared.
func (m *Migration) Empty() bool {
	return len(m.tableNames) == 0 && len(m.procedureNames) == 0
}

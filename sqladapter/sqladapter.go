// Package sqladapter exposes an MPR file as a SQL foreign/virtual table
// (C7): an embedded-engine Module/Table/Cursor triad, and a remote-engine
// DDL generator for a CREATE SERVER/CREATE FOREIGN TABLE pair.
//
// Grounded on saferwall-pe's cmd/pedumper.go (a cobra-fronted command that
// opens one backing artifact and walks its structured fields) generalized
// from a one-shot dump to a re-openable cursor, and on spec.md §4.7's type
// map and BestIndex/Rowid contract.
package sqladapter

import (
	"fmt"

	"github.com/ambrydata/mpr/errs"
	"github.com/ambrydata/mpr/object"
	"github.com/ambrydata/mpr/rowstore"
)

// SQLType is a SQL column type name, as emitted in generated DDL.
type SQLType string

const (
	SQLInteger   SQLType = "INTEGER"
	SQLReal      SQLType = "REAL"
	SQLText      SQLType = "TEXT"
	SQLDate      SQLType = "DATE"
	SQLTimestamp SQLType = "TIMESTAMP WITHOUT TIME ZONE"
)

// SQLTypeFor maps a resolved MPR type to its SQL type, per spec.md §4.7's
// table. time renders as TEXT (ISO 8601), since SQL has no bare time-of-day
// type portable across engines.
func SQLTypeFor(t rowstore.ResolvedType) SQLType {
	switch t {
	case rowstore.TypeInt:
		return SQLInteger
	case rowstore.TypeFloat:
		return SQLReal
	case rowstore.TypeDate:
		return SQLDate
	case rowstore.TypeDateTime:
		return SQLTimestamp
	default:
		return SQLText
	}
}

// Module is the embedded SQL engine's registered module: it maps table
// names to open Tables, and treats a duplicate Create for an existing name
// as a no-op (spec.md §4.7).
type Module struct {
	tables map[string]*Table
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{tables: map[string]*Table{}}
}

// Create opens path as a virtual table named name. Re-creating an existing
// name returns the already-open Table rather than erroring.
func (m *Module) Create(name, path string) (*Table, error) {
	if t, ok := m.tables[name]; ok {
		return t, nil
	}
	r, err := rowstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sqladapter: open %s: %w", path, errs.VirtualTableError)
	}
	t := &Table{name: name, path: path, reader: r}
	m.tables[name] = t
	return t, nil
}

// Drop closes and forgets a table. Dropping an unknown name is a no-op.
func (m *Module) Drop(name string) error {
	t, ok := m.tables[name]
	if !ok {
		return nil
	}
	delete(m.tables, name)
	return t.reader.Close()
}

// Table is one open virtual table, backed by a rowstore.Reader.
type Table struct {
	name   string
	path   string
	reader *rowstore.Reader
}

// Name returns the table's SQL name.
func (t *Table) Name() string { return t.name }

// CreateTableSQL renders the CREATE TABLE shape the embedded engine's
// Create callback returns (spec.md §4.7).
func (t *Table) CreateTableSQL() string {
	cols := t.reader.Schema().Columns
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s %s", c.Name, SQLTypeFor(c.ResolvedType))
	}
	list := ""
	for i, p := range parts {
		if i > 0 {
			list += ", "
		}
		list += p
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.name, list)
}

// IndexPlan is BestIndex's result: MPR always reports a full scan, since
// the row store has no secondary index (spec.md §4.7, §9 Non-goals).
type IndexPlan struct {
	FullScan bool
}

// BestIndex always returns a full-scan plan.
func (t *Table) BestIndex() IndexPlan {
	return IndexPlan{FullScan: true}
}

// Open returns a new cursor over the table's data rows.
func (t *Table) Open() (*Cursor, error) {
	it, err := t.reader.Iter(rowstore.ModeData)
	if err != nil {
		return nil, err
	}
	return &Cursor{table: t, it: it}, nil
}

// Cursor iterates a Table's rows in column order; date/time/datetime cells
// render as ISO 8601 via object.Value.String() (spec.md §4.7).
type Cursor struct {
	table *Table
	it    *rowstore.Iterator
	row   object.Row
	rowid int64
	done  bool
}

// Next advances the cursor. ok is false once the table is exhausted.
func (c *Cursor) Next() (bool, error) {
	res, ok, err := c.it.Next()
	if err != nil || !ok {
		c.done = true
		return false, err
	}
	c.row = res.Row
	c.rowid++
	return true, nil
}

// Column renders the ISO-8601-ready string value of column i of the
// current row.
func (c *Cursor) Column(i int) (string, error) {
	if i < 0 || i >= len(c.row) {
		return "", fmt.Errorf("sqladapter: column %d out of range: %w", i, errs.VirtualTableError)
	}
	return c.row[i].String(), nil
}

// Rowid returns the 1-based ordinal of the current row.
func (c *Cursor) Rowid() int64 { return c.rowid }

// Close releases the cursor's iterator.
func (c *Cursor) Close() error {
	return c.it.Close()
}

// RemoteDDL renders the CREATE SERVER / CREATE FOREIGN TABLE pair a remote
// SQL engine adapter issues, scoped to schemaName (spec.md §4.7).
func RemoteDDL(schemaName, tableName, path string, cols []rowstore.Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s %s", c.Name, SQLTypeFor(c.ResolvedType))
	}
	list := ""
	for i, p := range parts {
		if i > 0 {
			list += ", "
		}
		list += p
	}
	return fmt.Sprintf(
		"CREATE SERVER IF NOT EXISTS mpr_server FOREIGN DATA WRAPPER mpr_fdw;\n"+
			"CREATE SCHEMA IF NOT EXISTS %s;\n"+
			"CREATE FOREIGN TABLE %s.%s (%s) SERVER mpr_server OPTIONS (path %q);",
		schemaName, schemaName, tableName, list, path)
}

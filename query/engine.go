// Package query lowers SQL text onto executor calls. Parsing is delegated
// to the sqlparser AST; only CREATE INDEX and DROP INDEX are classified up
// front, because the parser collapses them into bare DDL nodes and loses the
// index name and column list.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"

	"pmdb/catalog"
	"pmdb/executor"
)

type Engine struct {
	exec *executor.Executor
}

func NewEngine(exec *executor.Executor) *Engine {
	return &Engine{exec: exec}
}

var (
	createIndexRe = regexp.MustCompile(`(?is)^\s*create\s+(unique\s+)?index\s+(\w+)\s+on\s+(\w+)\s*\(([^)]+)\)\s*;?\s*$`)
	dropIndexRe   = regexp.MustCompile(`(?is)^\s*drop\s+index\s+(\w+)\s*;?\s*$`)
)

// Execute runs one SQL statement and returns the executor's result.
func (g *Engine) Execute(sql string) executor.Result {
	if m := createIndexRe.FindStringSubmatch(sql); m != nil {
		return g.exec.CreateIndex(m[2], m[3], splitIdentList(m[4]), m[1] != "")
	}
	if m := dropIndexRe.FindStringSubmatch(sql); m != nil {
		return g.exec.DropIndex(m[1])
	}

	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return fail("parse error: %v", err)
	}
	switch s := stmt.(type) {
	case *sqlparser.Select:
		return g.translateSelect(s)
	case *sqlparser.Insert:
		return g.translateInsert(s)
	case *sqlparser.Update:
		return g.translateUpdate(s)
	case *sqlparser.Delete:
		return g.translateDelete(s)
	case *sqlparser.DDL:
		return g.translateDDL(s)
	default:
		return fail("unsupported statement %T", stmt)
	}
}

func (g *Engine) translateDDL(stmt *sqlparser.DDL) executor.Result {
	switch stmt.Action {
	case sqlparser.CreateStr:
		name := stmt.NewName.Name.String()
		if name == "" {
			name = stmt.Table.Name.String()
		}
		if stmt.TableSpec == nil {
			return fail("create table %s: missing column definitions", name)
		}
		cols, err := columnsFromSpec(stmt.TableSpec)
		if err != nil {
			return fail("create table %s: %v", name, err)
		}
		return g.exec.CreateTable(name, cols)

	case sqlparser.DropStr:
		name := stmt.Table.Name.String()
		if name == "" {
			name = stmt.NewName.Name.String()
		}
		return g.exec.DropTable(name)
	}
	return fail("unsupported DDL action %q", stmt.Action)
}

// Mirrors the parser's unexported ColumnKeyOption values in declaration
// order, so column-level PRIMARY KEY / UNIQUE markers can be read.
const (
	colKeyNone sqlparser.ColumnKeyOption = iota
	colKeyPrimary
	colKeySpatialKey
	colKeyUnique
	colKeyUniqueKey
)

func columnsFromSpec(spec *sqlparser.TableSpec) ([]catalog.ColumnSchema, error) {
	cols := make([]catalog.ColumnSchema, 0, len(spec.Columns))
	for _, def := range spec.Columns {
		dt, err := dataTypeFromSQL(def.Type.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", def.Name.String(), err)
		}
		col := catalog.ColumnSchema{
			Name:    def.Name.String(),
			Type:    dt,
			NotNull: bool(def.Type.NotNull),
		}
		if def.Type.Length != nil {
			n, err := strconv.Atoi(string(def.Type.Length.Val))
			if err != nil {
				return nil, fmt.Errorf("column %s: bad length: %w", def.Name.String(), err)
			}
			col.Length = n
		}
		switch def.Type.KeyOpt {
		case colKeyPrimary:
			col.PrimaryKey = true
			col.NotNull = true
		case colKeyUnique, colKeyUniqueKey:
			col.Unique = true
		}
		cols = append(cols, col)
	}

	// Table-level PRIMARY KEY (...) constraints arrive as index definitions.
	for _, idx := range spec.Indexes {
		if idx.Info == nil || !idx.Info.Primary {
			continue
		}
		for _, ic := range idx.Columns {
			for i := range cols {
				if cols[i].Name == ic.Column.String() {
					cols[i].PrimaryKey = true
					cols[i].NotNull = true
				}
			}
		}
	}
	return cols, nil
}

func dataTypeFromSQL(t string) (catalog.DataType, error) {
	switch strings.ToLower(t) {
	case "int", "integer", "smallint", "tinyint", "mediumint":
		return catalog.TypeInteger, nil
	case "bigint":
		return catalog.TypeBigint, nil
	case "varchar", "char":
		return catalog.TypeVarchar, nil
	case "text":
		return catalog.TypeText, nil
	case "float":
		return catalog.TypeFloat, nil
	case "double", "real", "decimal":
		return catalog.TypeDouble, nil
	case "bool", "boolean":
		return catalog.TypeBoolean, nil
	}
	return "", fmt.Errorf("unsupported column type %q", t)
}

func splitIdentList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "`")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fail(format string, args ...any) executor.Result {
	return executor.Result{Message: fmt.Sprintf(format, args...)}
}

package query

import (
	"fmt"
	"strconv"

	"github.com/xwb1989/sqlparser"

	"pmdb/executor"
)

func (g *Engine) translateSelect(stmt *sqlparser.Select) executor.Result {
	table, err := tableNameOf(stmt.From)
	if err != nil {
		return fail("select: %v", err)
	}

	var columns []string
	star := false
	for _, se := range stmt.SelectExprs {
		switch expr := se.(type) {
		case *sqlparser.StarExpr:
			star = true
		case *sqlparser.AliasedExpr:
			col, ok := expr.Expr.(*sqlparser.ColName)
			if !ok {
				return fail("select: only plain column references are supported")
			}
			columns = append(columns, col.Name.String())
		default:
			return fail("select: unsupported select expression")
		}
	}
	if star {
		columns = nil
	}

	where, err := whereOf(stmt.Where)
	if err != nil {
		return fail("select from %s: %v", table, err)
	}
	limit, err := limitOf(stmt.Limit)
	if err != nil {
		return fail("select from %s: %v", table, err)
	}
	return g.exec.Select(table, columns, where, limit)
}

func (g *Engine) translateInsert(stmt *sqlparser.Insert) executor.Result {
	table := stmt.Table.Name.String()
	rows, ok := stmt.Rows.(sqlparser.Values)
	if !ok {
		return fail("insert into %s: only VALUES lists are supported", table)
	}

	affected := 0
	for _, tuple := range rows {
		values := make([]any, len(tuple))
		for i, expr := range tuple {
			v, err := literalValue(expr)
			if err != nil {
				return fail("insert into %s: %v", table, err)
			}
			values[i] = v
		}
		if len(stmt.Columns) > 0 {
			reordered, err := g.reorderInsert(table, stmt.Columns, values)
			if err != nil {
				return fail("insert into %s: %v", table, err)
			}
			values = reordered
		}
		res := g.exec.Insert(table, values)
		if !res.Success {
			return res
		}
		affected += res.RowsAffected
	}
	return executor.Result{
		Success:      true,
		Message:      fmt.Sprintf("%d row(s) inserted into %q", affected, table),
		RowsAffected: affected,
	}
}

// reorderInsert maps an explicit column list onto schema order. Every
// column must be supplied: the engine has no default values.
func (g *Engine) reorderInsert(table string, cols sqlparser.Columns, values []any) ([]any, error) {
	schema, err := g.exec.Catalog().Table(table)
	if err != nil {
		return nil, err
	}
	if len(cols) != len(values) {
		return nil, fmt.Errorf("%d columns but %d values", len(cols), len(values))
	}
	if len(cols) != len(schema.Columns) {
		return nil, fmt.Errorf("all %d columns must be supplied", len(schema.Columns))
	}
	out := make([]any, len(schema.Columns))
	seen := make([]bool, len(schema.Columns))
	for i, col := range cols {
		ci := schema.ColumnIndex(col.String())
		if ci < 0 {
			return nil, fmt.Errorf("unknown column %q", col.String())
		}
		if seen[ci] {
			return nil, fmt.Errorf("column %q supplied twice", col.String())
		}
		seen[ci] = true
		out[ci] = values[i]
	}
	return out, nil
}

func (g *Engine) translateUpdate(stmt *sqlparser.Update) executor.Result {
	table, err := tableNameOf(stmt.TableExprs)
	if err != nil {
		return fail("update: %v", err)
	}
	set := make(map[string]any, len(stmt.Exprs))
	for _, ue := range stmt.Exprs {
		v, err := literalValue(ue.Expr)
		if err != nil {
			return fail("update %s: %v", table, err)
		}
		set[ue.Name.Name.String()] = v
	}
	where, err := whereOf(stmt.Where)
	if err != nil {
		return fail("update %s: %v", table, err)
	}
	return g.exec.Update(table, set, where)
}

func (g *Engine) translateDelete(stmt *sqlparser.Delete) executor.Result {
	table, err := tableNameOf(stmt.TableExprs)
	if err != nil {
		return fail("delete: %v", err)
	}
	where, err := whereOf(stmt.Where)
	if err != nil {
		return fail("delete from %s: %v", table, err)
	}
	return g.exec.Delete(table, where)
}

func limitOf(l *sqlparser.Limit) (int, error) {
	if l == nil {
		return 0, nil
	}
	if l.Offset != nil {
		return 0, fmt.Errorf("LIMIT with OFFSET is not supported")
	}
	v, ok := l.Rowcount.(*sqlparser.SQLVal)
	if !ok || v.Type != sqlparser.IntVal {
		return 0, fmt.Errorf("LIMIT must be an integer literal")
	}
	n, err := strconv.Atoi(string(v.Val))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad LIMIT value %q", v.Val)
	}
	return n, nil
}

func tableNameOf(exprs sqlparser.TableExprs) (string, error) {
	if len(exprs) != 1 {
		return "", fmt.Errorf("exactly one table expected")
	}
	ate, ok := exprs[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", fmt.Errorf("joins and subqueries are not supported")
	}
	tn, ok := ate.Expr.(sqlparser.TableName)
	if !ok {
		return "", fmt.Errorf("joins and subqueries are not supported")
	}
	return tn.Name.String(), nil
}

func whereOf(w *sqlparser.Where) (*executor.Where, error) {
	if w == nil {
		return nil, nil
	}
	cmp, ok := w.Expr.(*sqlparser.ComparisonExpr)
	if !ok {
		return nil, fmt.Errorf("only single column-to-literal comparisons are supported in WHERE")
	}
	col, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return nil, fmt.Errorf("WHERE must compare a column to a literal")
	}
	val, err := literalValue(cmp.Right)
	if err != nil {
		return nil, err
	}
	op, err := opOf(cmp.Operator)
	if err != nil {
		return nil, err
	}
	return &executor.Where{Column: col.Name.String(), Op: op, Value: val}, nil
}

func opOf(op string) (executor.CompareOp, error) {
	switch op {
	case sqlparser.EqualStr:
		return executor.OpEq, nil
	case sqlparser.NotEqualStr:
		return executor.OpNe, nil
	case sqlparser.LessThanStr:
		return executor.OpLt, nil
	case sqlparser.LessEqualStr:
		return executor.OpLe, nil
	case sqlparser.GreaterThanStr:
		return executor.OpGt, nil
	case sqlparser.GreaterEqualStr:
		return executor.OpGe, nil
	}
	return 0, fmt.Errorf("unsupported operator %q", op)
}

func literalValue(expr sqlparser.Expr) (any, error) {
	switch v := expr.(type) {
	case *sqlparser.SQLVal:
		switch v.Type {
		case sqlparser.IntVal:
			return strconv.ParseInt(string(v.Val), 10, 64)
		case sqlparser.FloatVal:
			return strconv.ParseFloat(string(v.Val), 64)
		case sqlparser.StrVal:
			return string(v.Val), nil
		}
		return nil, fmt.Errorf("unsupported literal kind")
	case sqlparser.BoolVal:
		return bool(v), nil
	}
	return nil, fmt.Errorf("unsupported literal %T", expr)
}

// Package repl is the interactive front end. All printing lives here; the
// engine layers below only return results and errors.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"pmdb/catalog"
	"pmdb/executor"
	"pmdb/query"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

type REPL struct {
	engine *query.Engine
	cat    *catalog.Catalog
	in     io.Reader
	out    io.Writer
}

func New(engine *query.Engine, cat *catalog.Catalog, in io.Reader, out io.Writer) *REPL {
	return &REPL{engine: engine, cat: cat, in: in, out: out}
}

// Run reads statements line by line until EOF or an exit command.
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, okStyle.Render("pmdb: type .help for commands, exit to quit"))
	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, promptStyle.Render("pmdb> "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			return nil
		case strings.HasPrefix(line, "."):
			r.command(line)
		default:
			r.render(r.engine.Execute(line))
		}
	}
}

func (r *REPL) command(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".help":
		fmt.Fprintln(r.out, strings.TrimSpace(`
.tables          list tables
.schema <table>  show a table's columns
.indexes         list indexes
exit             quit`))
	case ".tables":
		for _, name := range r.cat.TableNames() {
			fmt.Fprintln(r.out, name)
		}
	case ".schema":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, errStyle.Render("usage: .schema <table>"))
			return
		}
		schema, err := r.cat.Table(fields[1])
		if err != nil {
			fmt.Fprintln(r.out, errStyle.Render(err.Error()))
			return
		}
		for _, col := range schema.Columns {
			line := fmt.Sprintf("%s %s", col.Name, col.Type)
			if col.Length > 0 {
				line += fmt.Sprintf("(%d)", col.Length)
			}
			if col.PrimaryKey {
				line += " PRIMARY KEY"
			} else if col.Unique {
				line += " UNIQUE"
			}
			if col.NotNull && !col.PrimaryKey {
				line += " NOT NULL"
			}
			fmt.Fprintln(r.out, line)
		}
	case ".indexes":
		for _, name := range r.cat.TableNames() {
			for _, idx := range r.cat.TableIndexes(name) {
				fmt.Fprintf(r.out, "%s on %s(%s)\n", idx.Name, idx.Table, strings.Join(idx.Columns, ", "))
			}
		}
	default:
		fmt.Fprintln(r.out, errStyle.Render("unknown command "+fields[0]))
	}
}

func (r *REPL) render(res executor.Result) {
	if !res.Success {
		fmt.Fprintln(r.out, errStyle.Render(res.Message))
		return
	}
	if res.Columns != nil {
		r.renderRows(res)
		return
	}
	fmt.Fprintln(r.out, okStyle.Render(res.Message)+" "+faintStyle.Render(fmt.Sprintf("(%v)", res.Elapsed)))
}

func (r *REPL) renderRows(res executor.Result) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(res.Columns...)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		t.Row(cells...)
	}
	fmt.Fprintln(r.out, t)
	fmt.Fprintln(r.out, faintStyle.Render(fmt.Sprintf("%d row(s) (%v)", len(res.Rows), res.Elapsed)))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

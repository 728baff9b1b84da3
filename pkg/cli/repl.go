// pkg/cli/repl.go
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"shelfdb/internal/facade"
	"shelfdb/pkg/engine"
	"shelfdb/pkg/schema"
)

// REPL provides a Read-Eval-Print Loop for interactive SQL execution against
// a shelfdb database (SPEC_FULL §6.4).
type REPL struct {
	// db is the underlying database handle.
	db *engine.Database

	// facade is the same execute/history surface the HTTP API uses, so the
	// REPL and the server never diverge on result shape or error wording.
	facade *facade.Facade

	// sessionID is this REPL's fixed session identity for history recall.
	sessionID string

	// shell handles input/output and statement parsing
	shell *Shell

	// output is where results are written
	output io.Writer

	// errOutput is where errors are written
	errOutput io.Writer

	// running indicates if the REPL is currently running
	running bool

	// exitRequested indicates that .exit was called
	exitRequested bool
}

// NewREPL creates a new REPL rooted at dbPath. Output is written to stdout
// and errors to stderr.
func NewREPL(dbPath string, output, errOutput io.Writer) (*REPL, error) {
	return NewREPLWithInput(dbPath, os.Stdin, output, errOutput)
}

// NewREPLWithInput creates a new REPL with custom input/output streams.
// This is useful for testing or scripted operation.
func NewREPLWithInput(dbPath string, input io.Reader, output, errOutput io.Writer) (*REPL, error) {
	if dbPath == ":memory:" {
		tmpDir, err := os.MkdirTemp("", "shelfdb-memory-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
		dbPath = tmpDir
	}

	db, err := engine.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shell := NewShell(input, output, errOutput)

	return &REPL{
		db:        db,
		facade:    facade.New(db, nil, 0, 0),
		sessionID: "repl",
		shell:     shell,
		output:    output,
		errOutput: errOutput,
		running:   false,
	}, nil
}

// Close closes the REPL and underlying database connection.
func (r *REPL) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Run starts the REPL loop, reading and executing statements until
// EOF or .exit command.
func (r *REPL) Run() {
	r.running = true
	r.exitRequested = false

	fmt.Fprintln(r.output, "shelfdb version 0.1.0")
	fmt.Fprintln(r.output, "Enter \".help\" for usage hints.")

	for r.running && !r.exitRequested {
		stmt, eof := r.shell.ReadStatement()

		if eof && stmt == "" {
			fmt.Fprintln(r.output)
			break
		}

		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if strings.HasPrefix(stmt, ".") {
			r.handleDotCommand(stmt)
			continue
		}

		if err := r.ExecuteStatement(stmt); err != nil {
			r.printError(err)
		}

		if eof {
			break
		}
	}

	r.running = false
}

// ExecuteStatement runs sql through the same façade the HTTP API uses and
// displays the result.
func (r *REPL) ExecuteStatement(sql string) error {
	result, _, err := r.facade.Execute(sql, r.sessionID)
	if err != nil {
		return err
	}

	if !result.Success {
		if result.Error != nil {
			return fmt.Errorf("%s", *result.Error)
		}
		return fmt.Errorf("statement failed")
	}

	r.displayResult(result)
	return nil
}

// displayResult formats and prints query results.
func (r *REPL) displayResult(result *facade.ExecuteResult) {
	if result == nil {
		return
	}

	if len(result.Columns) == 0 {
		if result.AffectedRows != nil && *result.AffectedRows > 0 {
			fmt.Fprintf(r.output, "Rows affected: %d\n", *result.AffectedRows)
		}
		if result.Message != nil && *result.Message != "" {
			fmt.Fprintln(r.output, *result.Message)
		}
		return
	}

	r.displayTable(result.Columns, result.Result)
}

// displayTable formats results as an ASCII table.
func (r *REPL) displayTable(columns []string, rows [][]interface{}) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}

	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) {
				s := formatValue(val)
				if len(s) > widths[i] {
					widths[i] = len(s)
				}
			}
		}
	}

	r.printSeparator(widths)
	r.printRow(columns, widths)
	r.printSeparator(widths)

	for _, row := range rows {
		r.printDataRow(row, widths)
	}

	r.printSeparator(widths)
	fmt.Fprintf(r.output, "%d row(s)\n", len(rows))
}

// printSeparator prints a horizontal line separator.
func (r *REPL) printSeparator(widths []int) {
	fmt.Fprint(r.output, "+")
	for _, w := range widths {
		fmt.Fprint(r.output, strings.Repeat("-", w+2))
		fmt.Fprint(r.output, "+")
	}
	fmt.Fprintln(r.output)
}

// printRow prints a row of string values.
func (r *REPL) printRow(values []string, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, val := range values {
		w := widths[i]
		fmt.Fprintf(r.output, " %-*s |", w, val)
	}
	fmt.Fprintln(r.output)
}

// printDataRow prints a row of interface{} values.
func (r *REPL) printDataRow(row []interface{}, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, val := range row {
		w := widths[i]
		s := formatValue(val)
		fmt.Fprintf(r.output, " %-*s |", w, s)
	}
	fmt.Fprintln(r.output)
}

// formatValue converts a value to its string representation.
func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}

	switch val := v.(type) {
	case string:
		return val
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// handleDotCommand processes special dot commands.
func (r *REPL) handleDotCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch strings.ToLower(parts[0]) {
	case ".exit", ".quit":
		r.exitRequested = true
	case ".help":
		r.printHelp()
	case ".tables":
		r.showTables()
	case ".schema":
		if len(parts) > 1 {
			r.showSchema(parts[1])
		} else {
			r.showAllSchemas()
		}
	case ".history":
		r.showHistory()
	case ".reset":
		r.resetDatabase()
	default:
		fmt.Fprintf(r.errOutput, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(r.errOutput, "Use \".help\" for usage hints.")
	}
}

// printHelp displays help information.
func (r *REPL) printHelp() {
	help := `
.exit              Exit this program
.help              Show this help message
.history           Show this session's query history
.quit              Exit this program
.reset             Drop every table and start fresh
.schema [TABLE]    Show CREATE statement for table(s)
.tables            List all tables

Enter SQL statements terminated with a semicolon.
Multi-line statements are supported.
`
	fmt.Fprintln(r.output, help)
}

// showTables lists all tables in the database.
func (r *REPL) showTables() {
	tables, err := r.db.TableNames()
	if err != nil {
		r.printError(err)
		return
	}
	if len(tables) == 0 {
		fmt.Fprintln(r.output, "(no tables)")
		return
	}
	for _, name := range tables {
		fmt.Fprintln(r.output, name)
	}
}

// showSchema shows the CREATE statement for a specific table.
func (r *REPL) showSchema(tableName string) {
	tables, err := r.db.Tables()
	if err != nil {
		r.printError(err)
		return
	}
	for _, tbl := range tables {
		if strings.EqualFold(tbl.Name, tableName) {
			fmt.Fprintln(r.output, generateCreateSQL(tbl))
			return
		}
	}
	fmt.Fprintf(r.errOutput, "Error: no such table: %s\n", tableName)
}

// showAllSchemas shows CREATE statements for all tables.
func (r *REPL) showAllSchemas() {
	tables, err := r.db.Tables()
	if err != nil {
		r.printError(err)
		return
	}
	for _, tbl := range tables {
		fmt.Fprintln(r.output, generateCreateSQL(tbl))
	}
}

// showHistory prints this session's query history, oldest first.
func (r *REPL) showHistory() {
	entries, _ := r.facade.History(r.sessionID, 0)
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Fprintln(r.output, entries[i].Query)
	}
}

// resetDatabase drops every table and starts fresh.
func (r *REPL) resetDatabase() {
	if err := r.facade.Reset(); err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintln(r.output, "database reset")
}

// generateCreateSQL generates a CREATE TABLE statement from a table schema.
func generateCreateSQL(table *schema.Table) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(table.Name)
	sb.WriteString(" (")

	for i, col := range table.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col.Name)
		sb.WriteString(" ")
		sb.WriteString(col.Type.String())

		if col.PrimaryKey {
			sb.WriteString(" PRIMARY KEY")
		} else if col.NotNull {
			sb.WriteString(" NOT NULL")
		}
		if col.Unique && !col.PrimaryKey {
			sb.WriteString(" UNIQUE")
		}
		if col.References != nil {
			sb.WriteString(fmt.Sprintf(" REFERENCES %s(%s)", col.References.Table, col.References.Column))
		}
	}

	sb.WriteString(");")
	return sb.String()
}

// printError prints an error message to the error output.
func (r *REPL) printError(err error) {
	fmt.Fprintf(r.errOutput, "Error: %v\n", err)
}

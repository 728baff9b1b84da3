package executor

import (
	"errors"
	"path/filepath"
	"testing"

	"shelfdb/pkg/schema"
	"shelfdb/pkg/sql/parser"
	"shelfdb/pkg/storage"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	cat, err := storage.Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	return New(cat)
}

func run(t *testing.T, e *Executor, sql string) *Result {
	t.Helper()
	stmts, err := parser.ParseStatements(sql)
	if err != nil {
		t.Fatalf("ParseStatements(%q): %v", sql, err)
	}
	var last *Result
	for _, stmt := range stmts {
		res, err := e.Execute(stmt)
		if err != nil {
			t.Fatalf("Execute(%q): %v", sql, err)
		}
		last = res
	}
	return last
}

func runErr(t *testing.T, e *Executor, sql string) error {
	t.Helper()
	stmts, err := parser.ParseStatements(sql)
	if err != nil {
		t.Fatalf("ParseStatements(%q): %v", sql, err)
	}
	for _, stmt := range stmts {
		if _, err := e.Execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// TestExecutor_CreateInsertSelect is spec.md §8 scenario 1.
func TestExecutor_CreateInsertSelect(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice')")
	run(t, e, "INSERT INTO users VALUES (2,'Bob')")
	res := run(t, e, "SELECT * FROM users")

	if len(res.Columns) != 2 || res.Columns[0] != "id" || res.Columns[1] != "name" {
		t.Fatalf("columns = %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
	if res.Rows[0][0].Int() != 1 || res.Rows[0][1].Text() != "Alice" {
		t.Errorf("row0 = %v", res.Rows[0])
	}
	if res.Rows[1][0].Int() != 2 || res.Rows[1][1].Text() != "Bob" {
		t.Errorf("row1 = %v", res.Rows[1])
	}
}

// TestExecutor_PrimaryKeyDuplicate is spec.md §8 scenario 2.
func TestExecutor_PrimaryKeyDuplicate(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice')")

	err := runErr(t, e, "INSERT INTO users VALUES (1,'X')")
	if _, ok := err.(*ConstraintError); !ok {
		t.Fatalf("got %T (%v), want *ConstraintError", err, err)
	}

	res := run(t, e, "SELECT * FROM users")
	if len(res.Rows) != 1 {
		t.Fatalf("users should be unchanged: got %d rows", len(res.Rows))
	}
}

// TestExecutor_ForeignKeyViolation is spec.md §8 scenario 3.
func TestExecutor_ForeignKeyViolation(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice')")
	run(t, e, "CREATE TABLE o(id INT PRIMARY KEY, uid INT REFERENCES users(id))")

	err := runErr(t, e, "INSERT INTO o VALUES (1, 99)")
	if _, ok := err.(*ConstraintError); !ok {
		t.Fatalf("got %T, want *ConstraintError", err)
	}

	run(t, e, "INSERT INTO o VALUES (1, 1)")
	res := run(t, e, "SELECT * FROM o")
	if len(res.Rows) != 1 {
		t.Fatalf("expected one successful insert, got %d rows", len(res.Rows))
	}
}

// TestExecutor_InnerJoinAggregate is spec.md §8 scenario 4.
func TestExecutor_InnerJoinAggregate(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice'), (2,'Bob')")
	run(t, e, "CREATE TABLE o(id INT PRIMARY KEY, uid INT REFERENCES users(id))")
	run(t, e, "INSERT INTO o VALUES (1,1), (2,1), (3,2)")

	res := run(t, e, `SELECT u.name, COUNT(o.id) AS n FROM users u
		INNER JOIN o ON u.id=o.uid GROUP BY u.name ORDER BY u.name ASC`)

	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
	if res.Rows[0][0].Text() != "Alice" || res.Rows[0][1].Int() != 2 {
		t.Errorf("row0 = %v", res.Rows[0])
	}
	if res.Rows[1][0].Text() != "Bob" || res.Rows[1][1].Int() != 1 {
		t.Errorf("row1 = %v", res.Rows[1])
	}
}

// TestExecutor_LeftJoinPreservesUnmatched is spec.md §8 scenario 5.
func TestExecutor_LeftJoinPreservesUnmatched(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice'), (2,'Bob'), (3,'Carol')")
	run(t, e, "CREATE TABLE o(id INT PRIMARY KEY, uid INT REFERENCES users(id))")
	run(t, e, "INSERT INTO o VALUES (1,1), (2,1), (3,2)")

	res := run(t, e, `SELECT u.id, COUNT(o.id) AS n FROM users u
		LEFT JOIN o ON u.id=o.uid GROUP BY u.id ORDER BY u.id ASC`)

	want := []struct {
		id int64
		n  int64
	}{{1, 2}, {2, 1}, {3, 0}}
	if len(res.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(res.Rows), len(want))
	}
	for i, w := range want {
		if res.Rows[i][0].Int() != w.id || res.Rows[i][1].Int() != w.n {
			t.Errorf("row[%d] = %v, want %+v", i, res.Rows[i], w)
		}
	}
}

// TestExecutor_DeleteBlockedByReferrer is spec.md §8 scenario 6.
func TestExecutor_DeleteBlockedByReferrer(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice')")
	run(t, e, "CREATE TABLE o(id INT PRIMARY KEY, uid INT REFERENCES users(id))")
	run(t, e, "INSERT INTO o VALUES (1,1)")

	err := runErr(t, e, "DELETE FROM users WHERE id=1")
	if _, ok := err.(*ConstraintError); !ok {
		t.Fatalf("got %T, want *ConstraintError", err)
	}
	res := run(t, e, "SELECT * FROM users")
	if len(res.Rows) != 1 {
		t.Fatalf("users should be unchanged, got %d rows", len(res.Rows))
	}
}

func TestExecutor_UpdateSwapViaSet(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE t(a INT, b INT)")
	run(t, e, "INSERT INTO t VALUES (1, 2)")
	run(t, e, "UPDATE t SET a = b, b = a")
	res := run(t, e, "SELECT * FROM t")
	if res.Rows[0][0].Int() != 2 || res.Rows[0][1].Int() != 1 {
		t.Errorf("swap result = %v", res.Rows[0])
	}
}

func TestExecutor_NotNullViolation(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE t(id INT PRIMARY KEY, name TEXT NOT NULL)")
	err := runErr(t, e, "INSERT INTO t VALUES (1, NULL)")
	if _, ok := err.(*ConstraintError); !ok {
		t.Fatalf("got %T, want *ConstraintError", err)
	}
}

func TestExecutor_IntegerCoercesToFloatColumn(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE t(amount FLOAT)")
	run(t, e, "INSERT INTO t VALUES (5)")
	res := run(t, e, "SELECT amount FROM t")
	if res.Rows[0][0].Type().String() != "FLOAT" || res.Rows[0][0].Float() != 5 {
		t.Errorf("amount = %v", res.Rows[0][0])
	}
}

func TestExecutor_DistinctDeduplicates(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE t(dept TEXT)")
	run(t, e, "INSERT INTO t VALUES ('eng'), ('eng'), ('sales')")
	res := run(t, e, "SELECT DISTINCT dept FROM t ORDER BY dept")
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
}

func TestExecutor_OrderByNullsLastAscFirstDesc(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE t(id INT PRIMARY KEY, score INT)")
	run(t, e, "INSERT INTO t VALUES (1, NULL), (2, 5), (3, 1)")

	asc := run(t, e, "SELECT id FROM t ORDER BY score ASC")
	if asc.Rows[len(asc.Rows)-1][0].Int() != 1 {
		t.Errorf("NULL should sort last ascending: %v", asc.Rows)
	}

	desc := run(t, e, "SELECT id FROM t ORDER BY score DESC")
	if desc.Rows[0][0].Int() != 1 {
		t.Errorf("NULL should sort first descending: %v", desc.Rows)
	}
}

func TestExecutor_DropTableBlockedByForeignKey(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY)")
	run(t, e, "CREATE TABLE o(id INT PRIMARY KEY, uid INT REFERENCES users(id))")
	err := runErr(t, e, "DROP TABLE users")
	if _, ok := err.(*ConstraintError); !ok {
		t.Fatalf("got %T, want *ConstraintError", err)
	}
}

func TestExecutor_InsertAllOrNothingPerStatement(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE t(id INT PRIMARY KEY)")
	run(t, e, "INSERT INTO t VALUES (1)")

	err := runErr(t, e, "INSERT INTO t VALUES (2), (1), (3)")
	if _, ok := err.(*ConstraintError); !ok {
		t.Fatalf("got %T, want *ConstraintError", err)
	}

	res := run(t, e, "SELECT * FROM t")
	if len(res.Rows) != 1 {
		t.Fatalf("partial insert leaked: got %d rows, want 1", len(res.Rows))
	}
}

// TestExecutor_AggregateWithoutGroupByRejectsPlainColumn is spec.md §4.3.6
// step 3: an aggregate with no GROUP BY still forms a single implicit
// group, so a non-aggregated column is just as illegal as it would be with
// an explicit GROUP BY.
func TestExecutor_AggregateWithoutGroupByRejectsPlainColumn(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice'), (2,'Bob')")

	err := runErr(t, e, "SELECT name, COUNT(*) FROM users")
	if _, ok := err.(*SemanticError); !ok {
		t.Fatalf("got %T (%v), want *SemanticError", err, err)
	}

	// A lone aggregate with no GROUP BY is still fine.
	res := run(t, e, "SELECT COUNT(*) FROM users")
	if len(res.Rows) != 1 || res.Rows[0][0].Int() != 2 {
		t.Fatalf("got %v, want a single row with count 2", res.Rows)
	}
}

// TestExecutor_QualifiedColumnLookupIsCaseInsensitive is spec.md §4.1: a
// qualified reference must resolve regardless of the casing the query uses
// for the alias.
func TestExecutor_QualifiedColumnLookupIsCaseInsensitive(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE users(id INT PRIMARY KEY, name TEXT)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice')")

	res := run(t, e, "SELECT U.name FROM users U WHERE U.id = 1")
	if len(res.Rows) != 1 || res.Rows[0][0].Text() != "Alice" {
		t.Fatalf("got %v, want one row with name Alice", res.Rows)
	}
}

// TestExecutor_ConstraintErrorsCarrySchemaSentinel verifies ConstraintError
// and SemanticError wrap the matching pkg/schema sentinel so callers can
// classify a failure with errors.Is instead of parsing Reason.
func TestExecutor_ConstraintErrorsCarrySchemaSentinel(t *testing.T) {
	e := newTestExecutor(t)
	run(t, e, "CREATE TABLE t(id INT PRIMARY KEY, name TEXT NOT NULL)")
	run(t, e, "INSERT INTO t VALUES (1, 'a')")

	if err := runErr(t, e, "INSERT INTO t VALUES (1, 'b')"); !errors.Is(err, schema.ErrPrimaryKeyViolation) {
		t.Errorf("duplicate PK error = %v, want wrapping ErrPrimaryKeyViolation", err)
	}
	if err := runErr(t, e, "INSERT INTO nope VALUES (1)"); errors.Is(err, schema.ErrColumnNotFound) {
		t.Errorf("missing-table error should not claim ErrColumnNotFound: %v", err)
	}
	if err := runErr(t, e, "SELECT missing FROM t"); !errors.Is(err, schema.ErrColumnNotFound) {
		t.Errorf("missing column error = %v, want wrapping ErrColumnNotFound", err)
	}
}

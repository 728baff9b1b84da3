package facade

import (
	"path/filepath"
	"strings"
	"testing"

	"shelfdb/pkg/engine"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	db, err := engine.Open(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	return New(db, nil, 0, 0)
}

func TestFacade_ExecuteMintsSessionWhenEmpty(t *testing.T) {
	f := newTestFacade(t)
	_, session, err := f.Execute("CREATE TABLE t(id INT)", "")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if session == "" {
		t.Error("expected a minted session ID")
	}
}

func TestFacade_ExecuteSuccessPopulatesResult(t *testing.T) {
	f := newTestFacade(t)
	f.Execute("CREATE TABLE t(id INT)", "s1")
	f.Execute("INSERT INTO t VALUES (1)", "s1")
	res, _, err := f.Execute("SELECT * FROM t", "s1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success")
	}
	if len(res.Columns) != 1 || res.Columns[0] != "id" {
		t.Errorf("Columns = %v", res.Columns)
	}
	if len(res.Result) != 1 {
		t.Fatalf("Result = %v, want one row", res.Result)
	}
	if res.Error != nil {
		t.Errorf("Error = %v, want nil", *res.Error)
	}
}

func TestFacade_ExecuteFailurePopulatesError(t *testing.T) {
	f := newTestFacade(t)
	res, _, err := f.Execute("SELECT * FROM missing", "s1")
	if err != nil {
		t.Fatalf("Execute itself should not error: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error == nil || *res.Error == "" {
		t.Fatal("expected a populated error string")
	}
	if res.Result != nil || res.Columns != nil || res.AffectedRows != nil {
		t.Errorf("failed execute should leave result/columns/affected_rows nil: %+v", res)
	}
}

func TestFacade_ErrorStringIsPrefixedWithKind(t *testing.T) {
	f := newTestFacade(t)
	res, _, _ := f.Execute("SELECT * FROM missing", "s1")
	if got := (*res.Error)[:len("SemanticError:")]; got != "SemanticError:" {
		t.Errorf("error = %q, want SemanticError prefix", *res.Error)
	}
}

func TestFacade_HistoryIsBoundedAndNewestFirst(t *testing.T) {
	f := newTestFacade(t)
	f.maxHistory = 2
	f.Execute("CREATE TABLE t(id INT)", "s1")
	f.Execute("INSERT INTO t VALUES (1)", "s1")
	f.Execute("INSERT INTO t VALUES (2)", "s1")

	entries, total := f.History("s1", 10)
	if total != 2 {
		t.Fatalf("total = %d, want 2 (bounded)", total)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Query != "INSERT INTO t VALUES (2)" {
		t.Errorf("newest-first violated: %q", entries[0].Query)
	}
}

func TestFacade_HistoryIsolatedPerSession(t *testing.T) {
	f := newTestFacade(t)
	f.Execute("CREATE TABLE t(id INT)", "s1")
	f.Execute("CREATE TABLE u(id INT)", "s2")

	entries, total := f.History("s1", 10)
	if total != 1 || entries[0].Query != "CREATE TABLE t(id INT)" {
		t.Errorf("s1 history leaked cross-session entries: %+v", entries)
	}
}

func TestFacade_ExecuteRejectsOversizedQuery(t *testing.T) {
	db, err := engine.Open(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	f := New(db, nil, 10, 0)

	res, _, err := f.Execute("SELECT * FROM a_table_name_longer_than_ten_bytes", "s1")
	if err != nil {
		t.Fatalf("Execute itself should not error: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure for oversized query")
	}
	if res.Error == nil || !strings.Contains(*res.Error, "exceeds maximum length") {
		t.Errorf("error = %v, want a maximum-length complaint", res.Error)
	}
}

func TestFacade_ExecuteCapsResultRows(t *testing.T) {
	db, err := engine.Open(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("engine.Open: %v", err)
	}
	f := New(db, nil, 0, 2)

	f.Execute("CREATE TABLE t(id INT)", "s1")
	f.Execute("INSERT INTO t VALUES (1)", "s1")
	f.Execute("INSERT INTO t VALUES (2)", "s1")
	f.Execute("INSERT INTO t VALUES (3)", "s1")

	res, _, err := f.Execute("SELECT * FROM t", "s1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Result) != 2 {
		t.Fatalf("Result has %d rows, want capped to 2", len(res.Result))
	}
	if res.Message == nil || !strings.Contains(*res.Message, "truncated") {
		t.Errorf("Message = %v, want a truncation notice", res.Message)
	}
}

func TestFacade_Reset(t *testing.T) {
	f := newTestFacade(t)
	f.Execute("CREATE TABLE t(id INT)", "s1")
	if err := f.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	res, _, err := f.Execute("SELECT * FROM t", "s1")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Error("expected table t to no longer exist after reset")
	}
}

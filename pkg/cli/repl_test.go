// pkg/cli/repl_test.go
package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestREPL_ExecuteStatement(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test")

	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}

	repl, err := NewREPL(dbPath, output, errOutput)
	if err != nil {
		t.Fatalf("NewREPL failed: %v", err)
	}
	defer repl.Close()

	if err := repl.ExecuteStatement("CREATE TABLE test (id INT PRIMARY KEY, name TEXT);"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if err := repl.ExecuteStatement("INSERT INTO test (id, name) VALUES (1, 'Alice');"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}

	output.Reset()
	if err := repl.ExecuteStatement("SELECT * FROM test;"); err != nil {
		t.Fatalf("SELECT failed: %v", err)
	}

	result := output.String()
	if !strings.Contains(result, "id") || !strings.Contains(result, "name") {
		t.Errorf("output should contain column headers, got: %s", result)
	}
	if !strings.Contains(result, "1") || !strings.Contains(result, "Alice") {
		t.Errorf("output should contain row data, got: %s", result)
	}
}

func TestREPL_ExecuteStatement_Error(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test")

	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}

	repl, err := NewREPL(dbPath, output, errOutput)
	if err != nil {
		t.Fatalf("NewREPL failed: %v", err)
	}
	defer repl.Close()

	if err := repl.ExecuteStatement("SELECT * FROM nonexistent;"); err == nil {
		t.Error("expected error for nonexistent table")
	}
}

func TestREPL_DisplayResult(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test")

	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}

	repl, err := NewREPL(dbPath, output, errOutput)
	if err != nil {
		t.Fatalf("NewREPL failed: %v", err)
	}
	defer repl.Close()

	repl.ExecuteStatement("CREATE TABLE users (id INT, name TEXT, age INT);")
	repl.ExecuteStatement("INSERT INTO users VALUES (1, 'Alice', 30);")
	repl.ExecuteStatement("INSERT INTO users VALUES (2, 'Bob', 25);")

	output.Reset()
	repl.ExecuteStatement("SELECT * FROM users;")

	result := output.String()
	for _, want := range []string{"id", "name", "age", "Alice", "Bob"} {
		if !strings.Contains(result, want) {
			t.Errorf("output should contain %q, got: %s", want, result)
		}
	}
}

func TestREPL_Run(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test")

	input := strings.NewReader("CREATE TABLE t (x INT);\nINSERT INTO t VALUES (1);\nSELECT * FROM t;\n.exit\n")
	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}

	repl, err := NewREPLWithInput(dbPath, input, output, errOutput)
	if err != nil {
		t.Fatalf("NewREPLWithInput failed: %v", err)
	}

	repl.Run()

	result := output.String()
	if !strings.Contains(result, "1") {
		t.Errorf("output should contain SELECT result, got: %s", result)
	}
}

func TestREPL_DotExit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test")

	input := strings.NewReader(".exit\n")
	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}

	repl, err := NewREPLWithInput(dbPath, input, output, errOutput)
	if err != nil {
		t.Fatalf("NewREPLWithInput failed: %v", err)
	}

	repl.Run()

	if errOutput.Len() > 0 {
		t.Errorf("unexpected error output: %s", errOutput.String())
	}
}

func TestREPL_DotTablesAndSchema(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test")

	input := strings.NewReader("CREATE TABLE t (id INT PRIMARY KEY);\n.tables\n.schema t\n.exit\n")
	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}

	repl, err := NewREPLWithInput(dbPath, input, output, errOutput)
	if err != nil {
		t.Fatalf("NewREPLWithInput failed: %v", err)
	}
	repl.Run()

	result := output.String()
	if !strings.Contains(result, "t") {
		t.Errorf(".tables should list table t, got: %s", result)
	}
	if !strings.Contains(result, "CREATE TABLE t") {
		t.Errorf(".schema t should print a CREATE TABLE statement, got: %s", result)
	}
}

func TestREPL_MemoryDatabase(t *testing.T) {
	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}

	repl, err := NewREPL(":memory:", output, errOutput)
	if err != nil {
		t.Fatalf("NewREPL with :memory: failed: %v", err)
	}
	defer repl.Close()

	if err := repl.ExecuteStatement("CREATE TABLE test (id INT);"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

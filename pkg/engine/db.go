// pkg/engine/db.go
package engine

import (
	"errors"
	"sync"

	"shelfdb/pkg/schema"
	"shelfdb/pkg/sql/executor"
	"shelfdb/pkg/sql/parser"
	"shelfdb/pkg/storage"
)

// ErrDatabaseClosed is returned when an operation is attempted on a closed
// Database.
var ErrDatabaseClosed = errors.New("engine: database is closed")

// Database is the process-wide handle tying the lexer/parser/executor
// pipeline to the on-disk catalog (spec.md §5: "the façade serializes all
// engine calls behind a single process-wide mutex"). A single Database
// should be shared by every caller in the process.
type Database struct {
	mu sync.Mutex

	rootDir  string
	catalog  *storage.Catalog
	executor *executor.Executor
	closed   bool
}

// Open opens (creating if necessary) the catalog rooted at rootDir and
// returns a ready-to-use Database.
func Open(rootDir string) (*Database, error) {
	cat, err := storage.Open(rootDir)
	if err != nil {
		return nil, err
	}
	return &Database{
		rootDir:  rootDir,
		catalog:  cat,
		executor: executor.New(cat),
	}, nil
}

// Exec parses sql as a single statement and executes it, serialized behind
// the process-wide mutex and the root-directory file lock for the duration
// of the call (spec.md §5: "scoped acquisition of the root-directory lock
// spans an entire statement").
//
// Input holding more than one statement is rejected; multi-statement scripts
// go through ExecAll.
func (db *Database) Exec(sql string) (*executor.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}

	stmts, err := parser.ParseStatements(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return &executor.Result{Message: "no statement to execute"}, nil
	}
	if len(stmts) > 1 {
		return nil, errors.New("engine: Exec accepts exactly one statement")
	}

	if err := db.catalog.Lock(); err != nil {
		return nil, err
	}
	defer db.catalog.Unlock()

	return db.executor.Execute(stmts[0])
}

// ExecAll parses sql as a script of one or more `;`-separated statements and
// executes them in order, stopping at the first failure (spec.md §4.5:
// "multi-statement scripts are split by ; at the boundary and executed
// sequentially, aggregating success and stopping at the first failure").
// It returns the result of the last statement that ran; if a statement
// fails, that failure's error is returned and no later statement runs.
func (db *Database) ExecAll(sql string) (*executor.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}

	stmts, err := parser.ParseStatements(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return &executor.Result{Message: "no statement to execute"}, nil
	}

	var last *executor.Result
	for _, stmt := range stmts {
		if err := db.catalog.Lock(); err != nil {
			return nil, err
		}
		res, err := db.executor.Execute(stmt)
		db.catalog.Unlock()
		if err != nil {
			return nil, err
		}
		last = res
	}
	return last, nil
}

// TableNames returns every table currently in the catalog, sorted.
func (db *Database) TableNames() ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	return db.catalog.TableNames(), nil
}

// Tables returns the schema of every table currently in the catalog, sorted
// by name (used by the `/api/v1/tables` route, spec.md §6).
func (db *Database) Tables() ([]*schema.Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	names := db.catalog.TableNames()
	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		tbl, ok := db.catalog.Table(name)
		if !ok {
			continue
		}
		tables = append(tables, tbl)
	}
	return tables, nil
}

// Reset deletes the root directory and recreates it empty (spec.md §4.5:
// façade reset()).
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrDatabaseClosed
	}
	return db.catalog.Reset()
}

// Close marks the Database closed. Further calls to Exec/Reset/TableNames
// return ErrDatabaseClosed.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}

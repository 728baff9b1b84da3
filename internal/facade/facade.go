// internal/facade/facade.go
package facade

import (
	"fmt"
	"io"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"shelfdb/pkg/engine"
	"shelfdb/pkg/schema"
	"shelfdb/pkg/sql/executor"
	"shelfdb/pkg/sql/lexer"
	"shelfdb/pkg/sql/parser"
	"shelfdb/pkg/types"
)

// defaultMaxHistory is the per-session bounded FIFO size (spec.md §4.5:
// "History is stored in-process, keyed by session, capped per-session").
const defaultMaxHistory = 100

// Fallbacks used when New is given a non-positive limit (zero value from a
// caller that didn't load internal/config), matching that package's own
// defaults so the façade is never silently unbounded.
const (
	defaultMaxQueryBytes = 1 << 20
	defaultMaxResultRows = 10000
)

// ExecuteResult is the façade's JSON-ready answer to execute (spec.md §6).
type ExecuteResult struct {
	Success      bool            `json:"success"`
	Result       [][]interface{} `json:"result"`
	Columns      []string        `json:"columns"`
	TimeMs       float64         `json:"time_ms"`
	Message      *string         `json:"message"`
	Error        *string         `json:"error"`
	AffectedRows *int64          `json:"affected_rows"`
}

// HistoryEntry is one remembered query for a session (spec.md §4.5, §6).
type HistoryEntry struct {
	Query        string    `json:"query"`
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	TimeMs       float64   `json:"time_ms"`
	AffectedRows int64     `json:"affected_rows"`
}

// Facade is the single entry point exposed to both the HTTP server and the
// REPL (spec.md §4.5: "execute/history/reset").
type Facade struct {
	db  *engine.Database
	log *logrus.Logger

	mu         sync.Mutex
	history    map[string][]HistoryEntry
	maxHistory int

	maxQueryBytes int
	maxResultRows int
}

// New wraps db behind the façade's execute/history/reset operations,
// logging through log (nil selects a disabled logger, matching the
// teacher's convention of a never-nil logger field). maxQueryBytes and
// maxResultRows are the SPEC_FULL §6.3 config knobs of the same name;
// a non-positive value falls back to this package's own default so the
// façade is never silently unbounded.
func New(db *engine.Database, log *logrus.Logger, maxQueryBytes, maxResultRows int) *Facade {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if maxQueryBytes <= 0 {
		maxQueryBytes = defaultMaxQueryBytes
	}
	if maxResultRows <= 0 {
		maxResultRows = defaultMaxResultRows
	}
	return &Facade{
		db:            db,
		log:           log,
		history:       make(map[string][]HistoryEntry),
		maxHistory:    defaultMaxHistory,
		maxQueryBytes: maxQueryBytes,
		maxResultRows: maxResultRows,
	}
}

// Execute lexes, parses, and runs sql (one or more `;`-separated
// statements), minting a session ID if the caller didn't supply one
// (spec.md §6.2: "engines ignore it", SPEC_FULL §6.2: minted with a random
// v4 UUID). It records the outcome in that session's history and returns
// the (possibly minted) session ID alongside the result.
func (f *Facade) Execute(sql, sessionID string) (*ExecuteResult, string, error) {
	if sessionID == "" {
		sessionID = uuid.NewV4().String()
	}

	if len(sql) > f.maxQueryBytes {
		msg := fmt.Sprintf("IOError: query exceeds maximum length of %d bytes", f.maxQueryBytes)
		out := &ExecuteResult{Success: false, Error: &msg}
		entry := HistoryEntry{Query: sql, Timestamp: time.Now(), Success: false}
		f.log.WithFields(logrus.Fields{
			"session": sessionID,
			"success": false,
			"error":   msg,
		}).Warn("query rejected: exceeds max query bytes")
		f.recordHistory(sessionID, entry)
		return out, sessionID, nil
	}

	start := time.Now()
	res, err := f.db.ExecAll(sql)
	elapsed := time.Since(start)
	timeMs := float64(elapsed) / float64(time.Millisecond)

	out := &ExecuteResult{TimeMs: timeMs}
	entry := HistoryEntry{Query: sql, Timestamp: start, TimeMs: timeMs}

	if err != nil {
		msg := formatError(err)
		out.Success = false
		out.Error = &msg
		entry.Success = false
		f.log.WithFields(logrus.Fields{
			"session": sessionID,
			"time_ms": timeMs,
			"success": false,
			"error":   msg,
		}).Warn("statement failed")
	} else {
		out.Success = true
		entry.Success = true
		if len(res.Columns) > 0 || res.Rows != nil {
			out.Columns = res.Columns
			rows := res.Rows
			truncated := false
			if len(rows) > f.maxResultRows {
				rows = rows[:f.maxResultRows]
				truncated = true
			}
			out.Result = rowsToJSON(rows)
			if truncated {
				m := fmt.Sprintf("result truncated to %d row(s)", f.maxResultRows)
				out.Message = &m
			}
		}
		if res.Message != "" {
			m := res.Message
			out.Message = &m
		}
		affected := res.RowsAffected
		out.AffectedRows = &affected
		entry.AffectedRows = affected
		f.log.WithFields(logrus.Fields{
			"session": sessionID,
			"time_ms": timeMs,
			"success": true,
		}).Info("statement executed")
	}

	f.recordHistory(sessionID, entry)
	return out, sessionID, nil
}

// History returns the most recent entries for session, newest first,
// bounded by limit (spec.md §4.5: "history(session, limit)"), and the total
// number of entries retained for that session.
func (f *Facade) History(sessionID string, limit int) ([]HistoryEntry, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.history[sessionID]
	total := len(all)
	if limit <= 0 || limit > total {
		limit = total
	}
	out := make([]HistoryEntry, limit)
	for i := 0; i < limit; i++ {
		out[i] = all[total-1-i]
	}
	return out, total
}

// Tables returns the schema of every table in the catalog (spec.md §6:
// `GET /api/v1/tables`).
func (f *Facade) Tables() ([]*schema.Table, error) {
	return f.db.Tables()
}

// Reset deletes the root directory and recreates it empty (spec.md §4.5).
// Session history is left untouched; it is a façade-level record of past
// activity, not engine state.
func (f *Facade) Reset() error {
	return f.db.Reset()
}

func (f *Facade) recordHistory(sessionID string, entry HistoryEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := append(f.history[sessionID], entry)
	if len(entries) > f.maxHistory {
		entries = entries[len(entries)-f.maxHistory:]
	}
	f.history[sessionID] = entries
}

// formatError renders err as "<kind>: <human message>" (spec.md §7).
func formatError(err error) string {
	return fmt.Sprintf("%s: %s", errorKind(err), err.Error())
}

func errorKind(err error) string {
	switch err.(type) {
	case *lexer.LexError:
		return "LexError"
	case *parser.ParseError:
		return "ParseError"
	case *executor.SemanticError:
		return "SemanticError"
	case *executor.TypeError:
		return "TypeError"
	case *executor.ConstraintError:
		return "ConstraintError"
	default:
		return "IOError"
	}
}

func rowsToJSON(rows [][]types.Value) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		jrow := make([]interface{}, len(row))
		for j, v := range row {
			jrow[j] = valueToJSON(v)
		}
		out[i] = jrow
	}
	return out
}

func valueToJSON(v types.Value) interface{} {
	switch v.Type() {
	case types.TypeNull:
		return nil
	case types.TypeInt:
		return v.Int()
	case types.TypeFloat:
		return v.Float()
	case types.TypeText:
		return v.Text()
	case types.TypeBool:
		return v.Bool()
	default:
		return nil
	}
}

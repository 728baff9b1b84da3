// pkg/storage/catalog.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"shelfdb/pkg/schema"
	"shelfdb/pkg/types"
)

// ErrDatabaseLocked is returned when the root-directory lock is already held
// by another process (spec.md §5: "Scoped acquisition of the root-directory
// lock spans an entire statement").
var ErrDatabaseLocked = errors.New("storage: database is locked by another process")

// IOError wraps a persistence failure (spec.md §7).
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("IOError: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Row is a mapping from column name to Value (spec.md §3).
type Row map[string]types.Value

// schemaFileName and lockFileName are the fixed filenames of the on-disk
// layout (spec.md §6).
const (
	schemaFileName = "schema.json"
	lockFileName   = ".lock"
)

// Catalog is the JSON-backed table-schema-and-rows store (spec.md §4.4). It
// is not safe for concurrent use by itself: callers serialize access with
// Lock/Unlock, mirroring the teacher's single exclusive file lock spanning a
// statement.
type Catalog struct {
	rootDir string

	mu      sync.Mutex // protects the in-memory maps below
	tables  map[string]*schema.Table
	rows    map[string][]Row // lazily populated per table
	loaded  map[string]bool  // whether rows[name] has been read from disk

	lockFile *os.File
}

// Open loads schema.json (if present) from rootDir, creating rootDir if it
// does not exist. Table row files are not read until first access (spec.md
// §4.4: "lazily loads a table's rows on first access and caches them").
func Open(rootDir string) (*Catalog, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: rootDir, Err: err}
	}
	c := &Catalog{
		rootDir: rootDir,
		tables:  make(map[string]*schema.Table),
		rows:    make(map[string][]Row),
		loaded:  make(map[string]bool),
	}
	if err := c.loadSchema(); err != nil {
		return nil, err
	}
	return c, nil
}

// Lock acquires the exclusive root-directory lock for the duration of one
// statement (spec.md §5).
func (c *Catalog) Lock() error {
	path := filepath.Join(c.rootDir, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return &IOError{Op: "open-lock", Path: path, Err: err}
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return err
	}
	c.lockFile = f
	return nil
}

// Unlock releases the lock acquired by Lock. Safe to call even if Lock
// failed partway; always releases on all exit paths (spec.md §5).
func (c *Catalog) Unlock() error {
	if c.lockFile == nil {
		return nil
	}
	err := unlockFile(c.lockFile)
	c.lockFile.Close()
	c.lockFile = nil
	return err
}

func (c *Catalog) schemaPath() string {
	return filepath.Join(c.rootDir, schemaFileName)
}

func (c *Catalog) tablePath(name string) string {
	return filepath.Join(c.rootDir, name+".json")
}

// --- schema ---

type wireColumn struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	PrimaryKey bool             `json:"primary_key"`
	NotNull    bool             `json:"not_null"`
	Unique     bool             `json:"unique"`
	References *wireColumnRef   `json:"references"`
}

type wireColumnRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type wireTable struct {
	Columns []wireColumn `json:"columns"`
}

func (c *Catalog) loadSchema() error {
	data, err := os.ReadFile(c.schemaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &IOError{Op: "read", Path: c.schemaPath(), Err: err}
	}
	var wire map[string]wireTable
	if err := json.Unmarshal(data, &wire); err != nil {
		return &IOError{Op: "decode", Path: c.schemaPath(), Err: err}
	}
	for name, wt := range wire {
		tbl := &schema.Table{Name: name}
		for _, wc := range wt.Columns {
			ct, ok := types.ColumnTypeFromName(wc.Type)
			if !ok {
				return &IOError{Op: "decode", Path: c.schemaPath(), Err: fmt.Errorf("unknown column type %q", wc.Type)}
			}
			col := schema.Column{
				Name:       wc.Name,
				Type:       ct,
				PrimaryKey: wc.PrimaryKey,
				NotNull:    wc.NotNull,
				Unique:     wc.Unique,
			}
			if wc.References != nil {
				col.References = &schema.ForeignKeyRef{Table: wc.References.Table, Column: wc.References.Column}
			}
			tbl.Columns = append(tbl.Columns, col)
		}
		c.tables[name] = tbl
	}
	return nil
}

func (c *Catalog) writeSchema() error {
	wire := make(map[string]wireTable, len(c.tables))
	for name, tbl := range c.tables {
		wt := wireTable{}
		for _, col := range tbl.Columns {
			wc := wireColumn{
				Name:       col.Name,
				Type:       col.Type.String(),
				PrimaryKey: col.PrimaryKey,
				NotNull:    col.EffectiveNotNull(),
				Unique:     col.EffectiveUnique(),
			}
			if col.References != nil {
				wc.References = &wireColumnRef{Table: col.References.Table, Column: col.References.Column}
			}
			wt.Columns = append(wt.Columns, wc)
		}
		wire[name] = wt
	}
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return &IOError{Op: "encode", Path: c.schemaPath(), Err: err}
	}
	return atomicWrite(c.schemaPath(), data)
}

// --- table access ---

// Table returns the schema for name, case-insensitively.
func (c *Catalog) Table(name string) (*schema.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableLocked(name)
}

func (c *Catalog) tableLocked(name string) (*schema.Table, bool) {
	for k, t := range c.tables {
		if equalFold(k, name) {
			return t, true
		}
	}
	return nil, false
}

// TableNames returns every table name in the catalog, sorted.
func (c *Catalog) TableNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateTable adds tbl to the catalog and persists schema.json. Returns
// schema.ErrTableExists if a table with the same name (case-insensitive)
// already exists.
func (c *Catalog) CreateTable(tbl *schema.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tableLocked(tbl.Name); ok {
		return schema.ErrTableExists
	}
	c.tables[tbl.Name] = tbl
	c.rows[tbl.Name] = nil
	c.loaded[tbl.Name] = true
	if err := c.writeSchema(); err != nil {
		delete(c.tables, tbl.Name)
		delete(c.rows, tbl.Name)
		delete(c.loaded, tbl.Name)
		return err
	}
	return nil
}

// DropTable removes name's schema entry and data file.
func (c *Catalog) DropTable(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	tbl, ok := c.tableLocked(name)
	if !ok {
		return schema.ErrTableNotFound
	}
	delete(c.tables, tbl.Name)
	delete(c.rows, tbl.Name)
	delete(c.loaded, tbl.Name)
	if err := c.writeSchema(); err != nil {
		return err
	}
	path := c.tablePath(tbl.Name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// Rows returns the (lazily loaded) rows of table name, and the canonical
// table name.
func (c *Catalog) Rows(name string) (string, []Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tbl, ok := c.tableLocked(name)
	if !ok {
		return "", nil, schema.ErrTableNotFound
	}
	if !c.loaded[tbl.Name] {
		rows, err := c.readRows(tbl.Name)
		if err != nil {
			return "", nil, err
		}
		c.rows[tbl.Name] = rows
		c.loaded[tbl.Name] = true
	}
	return tbl.Name, c.rows[tbl.Name], nil
}

// SetRows replaces table name's row set and persists it to disk.
func (c *Catalog) SetRows(name string, rows []Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	tbl, ok := c.tableLocked(name)
	if !ok {
		return schema.ErrTableNotFound
	}
	if err := c.writeRows(tbl.Name, tbl, rows); err != nil {
		return err
	}
	c.rows[tbl.Name] = rows
	c.loaded[tbl.Name] = true
	return nil
}

func (c *Catalog) readRows(name string) ([]Row, error) {
	path := c.tablePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	tbl := c.tables[name]
	rows := make([]Row, 0, len(raw))
	for _, obj := range raw {
		row := make(Row, len(tbl.Columns))
		for _, col := range tbl.Columns {
			raw, ok := obj[col.Name]
			if !ok {
				row[col.Name] = types.NewNull()
				continue
			}
			v, err := decodeValue(raw, col.Type)
			if err != nil {
				return nil, &IOError{Op: "decode", Path: path, Err: err}
			}
			row[col.Name] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *Catalog) writeRows(name string, tbl *schema.Table, rows []Row) error {
	path := c.tablePath(name)
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]any, len(tbl.Columns))
		for _, col := range tbl.Columns {
			obj[col.Name] = encodeValue(row[col.Name])
		}
		out = append(out, obj)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	return atomicWrite(path, data)
}

func decodeValue(raw json.RawMessage, ct types.ColumnType) (types.Value, error) {
	var iface any
	if err := json.Unmarshal(raw, &iface); err != nil {
		return types.Value{}, err
	}
	if iface == nil {
		return types.NewNull(), nil
	}
	switch v := iface.(type) {
	case bool:
		return types.NewBool(v), nil
	case string:
		return types.NewText(v), nil
	case float64:
		if ct == types.ColInt {
			return types.NewInt(int64(v)), nil
		}
		return types.NewFloat(v), nil
	default:
		return types.Value{}, fmt.Errorf("unsupported JSON value %T", iface)
	}
}

func encodeValue(v types.Value) any {
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

// atomicWrite writes data to a sibling temp file then renames it over path,
// so a reader never observes a partial file (spec.md §4.4, §9).
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &IOError{Op: "create-temp", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// Reset deletes the root directory and recreates it empty (spec.md §4.5:
// façade reset()).
func (c *Catalog) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(c.rootDir); err != nil {
		return &IOError{Op: "remove-all", Path: c.rootDir, Err: err}
	}
	if err := os.MkdirAll(c.rootDir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: c.rootDir, Err: err}
	}
	c.tables = make(map[string]*schema.Table)
	c.rows = make(map[string][]Row)
	c.loaded = make(map[string]bool)
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

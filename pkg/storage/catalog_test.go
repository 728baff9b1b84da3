package storage

import (
	"path/filepath"
	"testing"

	"shelfdb/pkg/schema"
	"shelfdb/pkg/types"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return c
}

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: types.ColInt, PrimaryKey: true},
			{Name: "name", Type: types.ColText},
		},
	}
}

func TestCatalog_CreateTableRejectsDuplicate(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.CreateTable(usersTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := c.CreateTable(usersTable()); err != schema.ErrTableExists {
		t.Fatalf("got %v, want ErrTableExists", err)
	}
}

func TestCatalog_RowsRoundTripThroughDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.CreateTable(usersTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	rows := []Row{
		{"id": types.NewInt(1), "name": types.NewText("Ada")},
		{"id": types.NewInt(2), "name": types.NewNull()},
	}
	if err := c.SetRows("users", rows); err != nil {
		t.Fatalf("SetRows: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_, got, err := reopened.Rows("users")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if !got[0]["id"].Equal(types.NewInt(1)) {
		t.Errorf("row0.id = %v", got[0]["id"])
	}
	if !got[1]["name"].IsNull() {
		t.Errorf("row1.name should be NULL, got %v", got[1]["name"])
	}
}

func TestCatalog_DropTableRemovesSchemaAndFile(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.CreateTable(usersTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := c.DropTable("users"); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	if _, ok := c.Table("users"); ok {
		t.Error("table should no longer exist")
	}
}

func TestCatalog_TableLookupCaseInsensitive(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.CreateTable(usersTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if _, ok := c.Table("USERS"); !ok {
		t.Error("expected case-insensitive lookup to find the table")
	}
}

func TestCatalog_ResetClearsEverything(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.CreateTable(usersTable()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(c.TableNames()) != 0 {
		t.Error("expected no tables after reset")
	}
}

func TestCatalog_LockExclusion(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := a.Lock(); err != nil {
		t.Fatalf("a.Lock: %v", err)
	}
	defer a.Unlock()
	if err := b.Lock(); err != ErrDatabaseLocked {
		t.Fatalf("b.Lock = %v, want ErrDatabaseLocked", err)
	}
}

// pkg/sql/executor/executor.go
package executor

import (
	"fmt"

	"shelfdb/pkg/schema"
	"shelfdb/pkg/sql/parser"
	"shelfdb/pkg/storage"
	"shelfdb/pkg/types"
)

// Result is either a SELECT result set (Columns/Rows populated) or a
// mutation report (RowsAffected/Message populated), per spec.md §4.3.
type Result struct {
	Columns      []string
	Rows         [][]types.Value
	RowsAffected int64
	Message      string
}

// Executor is stateless except for its reference to the catalog (spec.md
// §4.3: "Stateless except for its reference to the catalog").
type Executor struct {
	catalog *storage.Catalog
}

// New creates an Executor over the given catalog.
func New(catalog *storage.Catalog) *Executor {
	return &Executor{catalog: catalog}
}

// Execute dispatches stmt to the matching statement handler.
func (e *Executor) Execute(stmt parser.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return e.executeCreateTable(s)
	case *parser.DropTableStmt:
		return e.executeDropTable(s)
	case *parser.InsertStmt:
		return e.executeInsert(s)
	case *parser.UpdateStmt:
		return e.executeUpdate(s)
	case *parser.DeleteStmt:
		return e.executeDelete(s)
	case *parser.SelectStmt:
		return e.executeSelect(s)
	default:
		return nil, &SemanticError{Reason: fmt.Sprintf("unsupported statement type %T", stmt)}
	}
}

// --- CREATE TABLE ---

func (e *Executor) executeCreateTable(stmt *parser.CreateTableStmt) (*Result, error) {
	if _, ok := e.catalog.Table(stmt.TableName); ok {
		return nil, &SemanticError{Reason: fmt.Sprintf("table %q already exists", stmt.TableName)}
	}

	tbl := &schema.Table{Name: stmt.TableName}
	pkCount := 0
	for _, cd := range stmt.Columns {
		if cd.PrimaryKey {
			pkCount++
		}
		col := schema.Column{
			Name:       cd.Name,
			Type:       cd.Type,
			PrimaryKey: cd.PrimaryKey,
			NotNull:    cd.NotNull,
			Unique:     cd.Unique,
		}
		if cd.References != nil {
			col.References = &schema.ForeignKeyRef{Table: cd.References.Table, Column: cd.References.Column}
		}
		tbl.Columns = append(tbl.Columns, col)
	}
	if pkCount > 1 {
		return nil, &SemanticError{Reason: "a table may declare at most one PRIMARY KEY column"}
	}

	for _, col := range tbl.Columns {
		if col.References == nil {
			continue
		}
		target, ok := e.catalog.Table(col.References.Table)
		if !ok {
			return nil, &SemanticError{Reason: fmt.Sprintf("referenced table %q does not exist", col.References.Table)}
		}
		targetCol, ok := target.Column(col.References.Column)
		if !ok {
			return nil, &SemanticError{Reason: fmt.Sprintf("referenced column %q not found on %q", col.References.Column, target.Name), Err: schema.ErrColumnNotFound}
		}
		if !targetCol.PrimaryKey && !targetCol.EffectiveUnique() {
			return nil, &SemanticError{Reason: fmt.Sprintf("%q.%q must be PRIMARY KEY or UNIQUE to be referenced", target.Name, targetCol.Name)}
		}
	}

	if err := e.catalog.CreateTable(tbl); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Table %s created", tbl.Name)}, nil
}

// --- DROP TABLE ---

func (e *Executor) executeDropTable(stmt *parser.DropTableStmt) (*Result, error) {
	victim, ok := e.catalog.Table(stmt.TableName)
	if !ok {
		return nil, &SemanticError{Reason: fmt.Sprintf("table %q does not exist", stmt.TableName)}
	}
	for _, name := range e.catalog.TableNames() {
		if equalFold(name, victim.Name) {
			continue
		}
		other, _ := e.catalog.Table(name)
		for _, col := range other.ForeignKeys() {
			if equalFold(col.References.Table, victim.Name) {
				return nil, &ConstraintError{Reason: fmt.Sprintf("table %q is referenced by %q.%q", victim.Name, other.Name, col.Name), Err: schema.ErrForeignKeyViolation}
			}
		}
	}
	if err := e.catalog.DropTable(victim.Name); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Table %s dropped", victim.Name)}, nil
}

// --- INSERT ---

func (e *Executor) executeInsert(stmt *parser.InsertStmt) (*Result, error) {
	tbl, ok := e.catalog.Table(stmt.TableName)
	if !ok {
		return nil, &SemanticError{Reason: fmt.Sprintf("table %q does not exist", stmt.TableName)}
	}
	_, existing, err := e.catalog.Rows(tbl.Name)
	if err != nil {
		return nil, err
	}

	var names []string
	if stmt.Columns != nil {
		names = stmt.Columns
		for _, n := range names {
			if _, ok := tbl.Column(n); !ok {
				return nil, &SemanticError{Reason: fmt.Sprintf("column %q not found on %q", n, tbl.Name), Err: schema.ErrColumnNotFound}
			}
		}
	}

	staged := append([]storage.Row{}, existing...)
	for _, values := range stmt.Values {
		row, err := e.buildInsertRow(tbl, names, values)
		if err != nil {
			return nil, err
		}
		if err := e.checkRowConstraints(tbl, row, staged, -1); err != nil {
			return nil, err
		}
		staged = append(staged, row)
	}

	n := len(stmt.Values)
	if err := e.catalog.SetRows(tbl.Name, staged); err != nil {
		return nil, err
	}
	return &Result{RowsAffected: int64(n), Message: fmt.Sprintf("Inserted %d row(s) into %s", n, tbl.Name)}, nil
}

func (e *Executor) buildInsertRow(tbl *schema.Table, names []string, values []parser.Expression) (storage.Row, error) {
	row := make(storage.Row, len(tbl.Columns))
	for _, col := range tbl.Columns {
		row[col.Name] = types.NewNull()
	}

	if names == nil {
		if len(values) != len(tbl.Columns) {
			return nil, &SemanticError{Reason: fmt.Sprintf("expected %d value(s), got %d", len(tbl.Columns), len(values))}
		}
		for i, col := range tbl.Columns {
			v, err := coerceLiteral(values[i], col)
			if err != nil {
				return nil, err
			}
			row[col.Name] = v
		}
	} else {
		if len(values) != len(names) {
			return nil, &SemanticError{Reason: fmt.Sprintf("expected %d value(s), got %d", len(names), len(values))}
		}
		for i, name := range names {
			col, _ := tbl.Column(name)
			v, err := coerceLiteral(values[i], *col)
			if err != nil {
				return nil, err
			}
			row[col.Name] = v
		}
	}

	for _, col := range tbl.Columns {
		if row[col.Name].IsNull() && col.EffectiveNotNull() {
			return nil, &ConstraintError{Reason: fmt.Sprintf("column %q.%q may not be NULL", tbl.Name, col.Name), Err: schema.ErrNotNullViolation}
		}
	}
	return row, nil
}

func coerceLiteral(expr parser.Expression, col schema.Column) (types.Value, error) {
	v, err := evalOperand(expr, nil, nil)
	if err != nil {
		return types.Value{}, err
	}
	if !v.AssignableTo(col.Type) {
		return types.Value{}, &TypeError{Reason: fmt.Sprintf("cannot assign %s value to column %q of type %s", v.Type(), col.Name, col.Type)}
	}
	return v.CoerceTo(col.Type), nil
}

// checkRowConstraints validates row against tbl's PK/UNIQUE/FK constraints,
// comparing against existingRows. skipIndex excludes that row index from the
// uniqueness scan (used by UPDATE to ignore the row being replaced).
func (e *Executor) checkRowConstraints(tbl *schema.Table, row storage.Row, existingRows []storage.Row, skipIndex int) error {
	for _, col := range tbl.Columns {
		if !col.EffectiveUnique() {
			continue
		}
		v := row[col.Name]
		if v.IsNull() {
			continue
		}
		for i, other := range existingRows {
			if i == skipIndex {
				continue
			}
			if other[col.Name].Equal(v) {
				if col.PrimaryKey {
					return &ConstraintError{Reason: fmt.Sprintf("duplicate primary key value for %q.%q", tbl.Name, col.Name), Err: schema.ErrPrimaryKeyViolation}
				}
				return &ConstraintError{Reason: fmt.Sprintf("duplicate value for unique column %q.%q", tbl.Name, col.Name), Err: schema.ErrUniqueViolation}
			}
		}
	}

	for _, col := range tbl.ForeignKeys() {
		v := row[col.Name]
		if v.IsNull() {
			continue
		}
		target, ok := e.catalog.Table(col.References.Table)
		if !ok {
			return &ConstraintError{Reason: fmt.Sprintf("referenced table %q does not exist", col.References.Table), Err: schema.ErrForeignKeyViolation}
		}
		_, targetRows, err := e.catalog.Rows(target.Name)
		if err != nil {
			return err
		}
		found := false
		for _, tr := range targetRows {
			if tr[col.References.Column].Equal(v) {
				found = true
				break
			}
		}
		if !found {
			return &ConstraintError{Reason: fmt.Sprintf("no row in %q.%q matches foreign key value of %q.%q", target.Name, col.References.Column, tbl.Name, col.Name), Err: schema.ErrForeignKeyViolation}
		}
	}
	return nil
}

// --- UPDATE ---

func (e *Executor) executeUpdate(stmt *parser.UpdateStmt) (*Result, error) {
	tbl, ok := e.catalog.Table(stmt.TableName)
	if !ok {
		return nil, &SemanticError{Reason: fmt.Sprintf("table %q does not exist", stmt.TableName)}
	}
	_, rows, err := e.catalog.Rows(tbl.Name)
	if err != nil {
		return nil, err
	}

	sc := newScope(tbl.Name, tbl.ColumnNames())

	final := append([]storage.Row{}, rows...)
	var changedIdx []int
	for i, row := range rows {
		t := rowToTuple(tbl.Name, row)
		matched := true
		if stmt.Where != nil {
			matched, err = evalPredicate(stmt.Where, t, sc)
			if err != nil {
				return nil, err
			}
		}
		if !matched {
			continue
		}
		newRow := cloneRow(row)
		for _, asg := range stmt.Assignments {
			col, ok := tbl.Column(asg.Column)
			if !ok {
				return nil, &SemanticError{Reason: fmt.Sprintf("column %q not found on %q", asg.Column, tbl.Name), Err: schema.ErrColumnNotFound}
			}
			v, err := evalOperand(asg.Value, t, sc)
			if err != nil {
				return nil, err
			}
			if !v.AssignableTo(col.Type) {
				return nil, &TypeError{Reason: fmt.Sprintf("cannot assign %s value to column %q of type %s", v.Type(), col.Name, col.Type)}
			}
			newRow[col.Name] = v.CoerceTo(col.Type)
		}
		for _, col := range tbl.Columns {
			if newRow[col.Name].IsNull() && col.EffectiveNotNull() {
				return nil, &ConstraintError{Reason: fmt.Sprintf("column %q.%q may not be NULL", tbl.Name, col.Name), Err: schema.ErrNotNullViolation}
			}
		}
		final[i] = newRow
		changedIdx = append(changedIdx, i)
	}

	for _, i := range changedIdx {
		if err := e.checkRowConstraints(tbl, final[i], final, i); err != nil {
			return nil, err
		}
	}

	if err := e.checkOrphanedReferrers(tbl, rows, final, changedIdx); err != nil {
		return nil, err
	}

	n := len(changedIdx)
	if n > 0 {
		if err := e.catalog.SetRows(tbl.Name, final); err != nil {
			return nil, err
		}
	}
	return &Result{RowsAffected: int64(n), Message: fmt.Sprintf("Updated %d row(s)", n)}, nil
}

// checkOrphanedReferrers rejects an update that changes a PK/UNIQUE value
// some other table's foreign key still points at (spec.md §4.3.4).
func (e *Executor) checkOrphanedReferrers(tbl *schema.Table, oldRows, newRows []storage.Row, changedIdx []int) error {
	if len(changedIdx) == 0 {
		return nil
	}
	for _, name := range e.catalog.TableNames() {
		if equalFold(name, tbl.Name) {
			continue
		}
		other, _ := e.catalog.Table(name)
		for _, fk := range other.ForeignKeys() {
			if !equalFold(fk.References.Table, tbl.Name) {
				continue
			}
			_, otherRows, err := e.catalog.Rows(other.Name)
			if err != nil {
				return err
			}
			for _, i := range changedIdx {
				oldVal := oldRows[i][fk.References.Column]
				newVal := newRows[i][fk.References.Column]
				if oldVal.Equal(newVal) {
					continue
				}
				for _, orow := range otherRows {
					if orow[fk.Name].Equal(oldVal) {
						return &ConstraintError{Reason: fmt.Sprintf("updating %q.%q would orphan a row in %q.%q", tbl.Name, fk.References.Column, other.Name, fk.Name), Err: schema.ErrForeignKeyViolation}
					}
				}
			}
		}
	}
	return nil
}

// --- DELETE ---

func (e *Executor) executeDelete(stmt *parser.DeleteStmt) (*Result, error) {
	tbl, ok := e.catalog.Table(stmt.TableName)
	if !ok {
		return nil, &SemanticError{Reason: fmt.Sprintf("table %q does not exist", stmt.TableName)}
	}
	_, rows, err := e.catalog.Rows(tbl.Name)
	if err != nil {
		return nil, err
	}

	sc := newScope(tbl.Name, tbl.ColumnNames())
	var keep []storage.Row
	var victims []storage.Row
	for _, row := range rows {
		t := rowToTuple(tbl.Name, row)
		matched := true
		if stmt.Where != nil {
			matched, err = evalPredicate(stmt.Where, t, sc)
			if err != nil {
				return nil, err
			}
		}
		if matched {
			victims = append(victims, row)
		} else {
			keep = append(keep, row)
		}
	}

	pk, hasPK := tbl.PrimaryKey()
	if hasPK && len(victims) > 0 {
		for _, name := range e.catalog.TableNames() {
			if equalFold(name, tbl.Name) {
				continue
			}
			other, _ := e.catalog.Table(name)
			for _, fk := range other.ForeignKeys() {
				if !equalFold(fk.References.Table, tbl.Name) || !equalFold(fk.References.Column, pk.Name) {
					continue
				}
				_, otherRows, err := e.catalog.Rows(other.Name)
				if err != nil {
					return nil, err
				}
				for _, victim := range victims {
					for _, orow := range otherRows {
						if orow[fk.Name].Equal(victim[pk.Name]) {
							return nil, &ConstraintError{Reason: fmt.Sprintf("row in %q is referenced by %q.%q", tbl.Name, other.Name, fk.Name), Err: schema.ErrForeignKeyViolation}
						}
					}
				}
			}
		}
	}

	n := len(victims)
	if n > 0 {
		if err := e.catalog.SetRows(tbl.Name, keep); err != nil {
			return nil, err
		}
	}
	return &Result{RowsAffected: int64(n), Message: fmt.Sprintf("Deleted %d row(s)", n)}, nil
}

func rowToTuple(alias string, row storage.Row) tuple {
	t := make(tuple, len(row))
	for k, v := range row {
		t[alias+"."+k] = v
	}
	return t
}

func cloneRow(r storage.Row) storage.Row {
	out := make(storage.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

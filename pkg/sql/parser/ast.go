// pkg/sql/parser/ast.go
package parser

import (
	"shelfdb/pkg/sql/lexer"
	"shelfdb/pkg/types"
)

// Statement is the interface implemented by every statement AST node
// (spec.md §4.2).
type Statement interface {
	statementNode()
}

// Expression is the interface implemented by every expression AST node.
type Expression interface {
	expressionNode()
}

// CreateTableStmt represents `CREATE TABLE name (column_def, ...)`.
type CreateTableStmt struct {
	TableName string
	Columns   []ColumnDef
}

func (s *CreateTableStmt) statementNode() {}

// ColumnDef is one column_def in a CREATE TABLE column list.
type ColumnDef struct {
	Name       string
	Type       types.ColumnType
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	References *ColumnRefTarget // nil when there is no REFERENCES clause
}

// ColumnRefTarget is the `REFERENCES ident (ident)` target of a column.
type ColumnRefTarget struct {
	Table  string
	Column string
}

// DropTableStmt represents `DROP TABLE name`.
type DropTableStmt struct {
	TableName string
}

func (s *DropTableStmt) statementNode() {}

// InsertStmt represents `INSERT INTO name (cols) VALUES (row), ...`.
type InsertStmt struct {
	TableName string
	Columns   []string       // nil means column list omitted
	Values    [][]Expression // one slice of literal expressions per row
}

func (s *InsertStmt) statementNode() {}

// UpdateStmt represents `UPDATE name SET col = expr, ... WHERE predicate`.
type UpdateStmt struct {
	TableName   string
	Assignments []Assignment
	Where       Expression // nil if no WHERE clause
}

func (s *UpdateStmt) statementNode() {}

// Assignment is one `col = expr` of a SET clause.
type Assignment struct {
	Column string
	Value  Expression
}

// DeleteStmt represents `DELETE FROM name WHERE predicate`.
type DeleteStmt struct {
	TableName string
	Where     Expression // nil if no WHERE clause
}

func (s *DeleteStmt) statementNode() {}

// SelectStmt represents a full SELECT statement (spec.md §4.2).
type SelectStmt struct {
	Distinct bool
	Columns  []SelectItem
	From     TableRef
	Joins    []JoinClause
	Where    Expression // nil if no WHERE clause
	GroupBy  []ColumnRef
	OrderBy  []OrderItem
}

func (s *SelectStmt) statementNode() {}

// SelectItem is one entry of the select list: `*`, a bare expression, or an
// expression with an alias.
type SelectItem struct {
	Star  bool
	Expr  Expression // nil when Star is true
	Alias string      // output column name override; "" if none given
}

// TableRef is a `name (AS? alias)?` table reference.
type TableRef struct {
	Name  string
	Alias string // equal to Name when no alias was given
}

// JoinKind identifies which of the four join kinds a JoinClause uses.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
)

func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFull:
		return "FULL OUTER"
	default:
		return "UNKNOWN"
	}
}

// JoinClause is one `join_kind? JOIN table_ref ON predicate`.
type JoinClause struct {
	Kind  JoinKind
	Table TableRef
	On    Expression
}

// OrderItem is one `column_ref (ASC|DESC)?` of an ORDER BY list.
type OrderItem struct {
	Column ColumnRef
	Desc   bool
}

// Literal is a constant value appearing in an expression.
type Literal struct {
	Value types.Value
}

func (l *Literal) expressionNode() {}

// ColumnRef is a (possibly qualified) column reference: `name` or
// `qualifier.name`.
type ColumnRef struct {
	Qualifier string // "" when unqualified
	Name      string
}

func (c *ColumnRef) expressionNode() {}

// AggregateCall is `AGG(expr)` or `AGG(*)` in select-list position.
type AggregateCall struct {
	Func lexer.TokenType // one of COUNT, SUM, AVG, MIN, MAX
	Star bool            // true for COUNT(*)
	Arg  Expression      // nil when Star is true
}

func (a *AggregateCall) expressionNode() {}

// BinaryExpr is a binary operator expression: a comparison or an AND/OR
// combination of predicates.
type BinaryExpr struct {
	Left  Expression
	Op    lexer.TokenType
	Right Expression
}

func (b *BinaryExpr) expressionNode() {}

// UnaryExpr is `-expr`.
type UnaryExpr struct {
	Op    lexer.TokenType
	Right Expression
}

func (u *UnaryExpr) expressionNode() {}

// IsNullExpr is `expr IS NULL` / `expr IS NOT NULL`.
type IsNullExpr struct {
	Expr   Expression
	Negate bool // true for IS NOT NULL
}

func (i *IsNullExpr) expressionNode() {}

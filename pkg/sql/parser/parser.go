// pkg/sql/parser/parser.go
package parser

import (
	"fmt"

	"shelfdb/pkg/sql/lexer"
	"shelfdb/pkg/types"
)

// ParseError reports the first deviation from the grammar the parser finds
// (spec.md §4.2: "the parser does not attempt error recovery — it reports
// the first failure").
type ParseError struct {
	Pos      lexer.Position
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: expected %s, found %q",
		e.Pos.Line, e.Pos.Column, e.Expected, e.Found)
}

// Parser is a recursive-descent, single-pass, one-token-lookahead SQL parser
// (spec.md §4.2).
type Parser struct {
	toks []lexer.Token
	pos  int
	cur  lexer.Token
	peek lexer.Token
}

// New creates a Parser over the given SQL input. It lexes the whole input up
// front so ParseError positions can always be reported precisely.
func New(input string) (*Parser, error) {
	toks, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	p.cur = p.tokenAt(0)
	p.peek = p.tokenAt(1)
	return p, nil
}

func (p *Parser) tokenAt(i int) lexer.Token {
	if i >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[i]
}

func (p *Parser) nextToken() {
	p.pos++
	p.cur = p.peek
	p.peek = p.tokenAt(p.pos + 1)
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

// expect asserts the current token's type and advances past it, or returns a
// ParseError.
func (p *Parser) expect(t lexer.TokenType) error {
	if !p.curIs(t) {
		return &ParseError{Pos: p.cur.Pos, Expected: t.String(), Found: p.cur.Literal}
	}
	p.nextToken()
	return nil
}

// ParseStatements parses the whole input into zero or more Statements,
// separated by `;` with an optional trailing `;` (spec.md §4.2). Empty input
// yields an empty list.
func ParseStatements(input string) ([]Statement, error) {
	p, err := New(input)
	if err != nil {
		return nil, err
	}
	return p.ParseAll()
}

// ParseAll parses every statement held by the parser.
func (p *Parser) ParseAll() ([]Statement, error) {
	var stmts []Statement
	for !p.curIs(lexer.EOF) {
		for p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		if p.curIs(lexer.EOF) {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.curIs(lexer.SEMICOLON) {
			p.nextToken()
		} else if !p.curIs(lexer.EOF) {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "';' or end of input", Found: p.cur.Literal}
		}
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.cur.Type {
	case lexer.CREATE:
		return p.parseCreateTable()
	case lexer.DROP:
		return p.parseDropTable()
	case lexer.INSERT:
		return p.parseInsert()
	case lexer.UPDATE:
		return p.parseUpdate()
	case lexer.DELETE:
		return p.parseDelete()
	case lexer.SELECT:
		return p.parseSelect()
	default:
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "a statement", Found: p.cur.Literal}
	}
}

// --- CREATE TABLE ---

func (p *Parser) parseCreateTable() (Statement, error) {
	if err := p.expect(lexer.CREATE); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TABLE); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "table name", Found: p.cur.Literal}
	}
	name := p.cur.Literal
	p.nextToken()

	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	var cols []ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &CreateTableStmt{TableName: name, Columns: cols}, nil
}

func (p *Parser) parseColumnDef() (ColumnDef, error) {
	if !p.curIs(lexer.IDENT) {
		return ColumnDef{}, &ParseError{Pos: p.cur.Pos, Expected: "column name", Found: p.cur.Literal}
	}
	col := ColumnDef{Name: p.cur.Literal}
	p.nextToken()

	ct, ok := columnTypeFromToken(p.cur.Type)
	if !ok {
		return ColumnDef{}, &ParseError{Pos: p.cur.Pos, Expected: "a column type (INT, TEXT, FLOAT, BOOLEAN)", Found: p.cur.Literal}
	}
	col.Type = ct
	p.nextToken()

	for {
		switch p.cur.Type {
		case lexer.PRIMARY:
			p.nextToken()
			if err := p.expect(lexer.KEY); err != nil {
				return ColumnDef{}, err
			}
			col.PrimaryKey = true
		case lexer.NOT:
			p.nextToken()
			if err := p.expect(lexer.NULL_KW); err != nil {
				return ColumnDef{}, err
			}
			col.NotNull = true
		case lexer.UNIQUE:
			p.nextToken()
			col.Unique = true
		case lexer.REFERENCES:
			p.nextToken()
			if !p.curIs(lexer.IDENT) {
				return ColumnDef{}, &ParseError{Pos: p.cur.Pos, Expected: "referenced table name", Found: p.cur.Literal}
			}
			target := &ColumnRefTarget{Table: p.cur.Literal}
			p.nextToken()
			if err := p.expect(lexer.LPAREN); err != nil {
				return ColumnDef{}, err
			}
			if !p.curIs(lexer.IDENT) {
				return ColumnDef{}, &ParseError{Pos: p.cur.Pos, Expected: "referenced column name", Found: p.cur.Literal}
			}
			target.Column = p.cur.Literal
			p.nextToken()
			if err := p.expect(lexer.RPAREN); err != nil {
				return ColumnDef{}, err
			}
			col.References = target
		default:
			return col, nil
		}
	}
}

func columnTypeFromToken(tt lexer.TokenType) (types.ColumnType, bool) {
	switch tt {
	case lexer.INT_TYPE:
		return types.ColInt, true
	case lexer.TEXT_TYPE:
		return types.ColText, true
	case lexer.FLOAT_TYPE:
		return types.ColFloat, true
	case lexer.BOOLEAN_TYPE:
		return types.ColBool, true
	default:
		return types.TypeNull, false
	}
}

// --- DROP TABLE ---

func (p *Parser) parseDropTable() (Statement, error) {
	if err := p.expect(lexer.DROP); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.TABLE); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "table name", Found: p.cur.Literal}
	}
	name := p.cur.Literal
	p.nextToken()
	return &DropTableStmt{TableName: name}, nil
}

// --- INSERT ---

func (p *Parser) parseInsert() (Statement, error) {
	if err := p.expect(lexer.INSERT); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.INTO); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "table name", Found: p.cur.Literal}
	}
	stmt := &InsertStmt{TableName: p.cur.Literal}
	p.nextToken()

	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		for {
			if !p.curIs(lexer.IDENT) {
				return nil, &ParseError{Pos: p.cur.Pos, Expected: "column name", Found: p.cur.Literal}
			}
			stmt.Columns = append(stmt.Columns, p.cur.Literal)
			p.nextToken()
			if p.curIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
	}

	if err := p.expect(lexer.VALUES); err != nil {
		return nil, err
	}

	for {
		row, err := p.parseValuesRow()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, row)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return stmt, nil
}

func (p *Parser) parseValuesRow() ([]Expression, error) {
	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var row []Expression
	for {
		expr, err := p.parseLiteralExpr()
		if err != nil {
			return nil, err
		}
		row = append(row, expr)
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return row, nil
}

// parseLiteralExpr parses one VALUES-row cell: a literal, optionally
// negated. Identifiers are not permitted here (spec.md §4.2: "each expr is a
// literal (identifiers inside VALUES are not permitted)").
func (p *Parser) parseLiteralExpr() (Expression, error) {
	neg := false
	if p.curIs(lexer.MINUS) {
		neg = true
		p.nextToken()
	}
	switch p.cur.Type {
	case lexer.INT:
		n, err := parseIntLiteral(p.cur.Literal)
		if err != nil {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "integer literal", Found: p.cur.Literal}
		}
		if neg {
			n = -n
		}
		p.nextToken()
		return &Literal{Value: types.NewInt(n)}, nil
	case lexer.FLOAT:
		f, err := parseFloatLiteral(p.cur.Literal)
		if err != nil {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "float literal", Found: p.cur.Literal}
		}
		if neg {
			f = -f
		}
		p.nextToken()
		return &Literal{Value: types.NewFloat(f)}, nil
	case lexer.STRING:
		if neg {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "a numeric literal after '-'", Found: p.cur.Literal}
		}
		lit := p.cur.Literal
		p.nextToken()
		return &Literal{Value: types.NewText(lit)}, nil
	case lexer.TRUE_KW:
		if neg {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "a numeric literal after '-'", Found: p.cur.Literal}
		}
		p.nextToken()
		return &Literal{Value: types.NewBool(true)}, nil
	case lexer.FALSE_KW:
		if neg {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "a numeric literal after '-'", Found: p.cur.Literal}
		}
		p.nextToken()
		return &Literal{Value: types.NewBool(false)}, nil
	case lexer.NULL_KW:
		if neg {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "a numeric literal after '-'", Found: p.cur.Literal}
		}
		p.nextToken()
		return &Literal{Value: types.NewNull()}, nil
	default:
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "a literal value", Found: p.cur.Literal}
	}
}

// --- UPDATE ---

func (p *Parser) parseUpdate() (Statement, error) {
	if err := p.expect(lexer.UPDATE); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "table name", Found: p.cur.Literal}
	}
	stmt := &UpdateStmt{TableName: p.cur.Literal}
	p.nextToken()

	if err := p.expect(lexer.SET); err != nil {
		return nil, err
	}
	for {
		if !p.curIs(lexer.IDENT) {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "column name", Found: p.cur.Literal}
		}
		col := p.cur.Literal
		p.nextToken()
		if err := p.expect(lexer.EQ); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, Assignment{Column: col, Value: expr})
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.curIs(lexer.WHERE) {
		p.nextToken()
		where, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// --- DELETE ---

func (p *Parser) parseDelete() (Statement, error) {
	if err := p.expect(lexer.DELETE); err != nil {
		return nil, err
	}
	if err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	if !p.curIs(lexer.IDENT) {
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "table name", Found: p.cur.Literal}
	}
	stmt := &DeleteStmt{TableName: p.cur.Literal}
	p.nextToken()

	if p.curIs(lexer.WHERE) {
		p.nextToken()
		where, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// --- SELECT ---

func (p *Parser) parseSelect() (Statement, error) {
	if err := p.expect(lexer.SELECT); err != nil {
		return nil, err
	}
	stmt := &SelectStmt{}
	if p.curIs(lexer.DISTINCT) {
		stmt.Distinct = true
		p.nextToken()
	}

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = items

	if err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	from, err := p.parseTableRef()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	for p.isJoinStart() {
		join, err := p.parseJoinClause()
		if err != nil {
			return nil, err
		}
		stmt.Joins = append(stmt.Joins, join)
	}

	if p.curIs(lexer.WHERE) {
		p.nextToken()
		where, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.curIs(lexer.GROUP) {
		p.nextToken()
		if err := p.expect(lexer.BY); err != nil {
			return nil, err
		}
		for {
			col, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, col)
			if p.curIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	if p.curIs(lexer.ORDER) {
		p.nextToken()
		if err := p.expect(lexer.BY); err != nil {
			return nil, err
		}
		for {
			col, err := p.parseColumnRef()
			if err != nil {
				return nil, err
			}
			item := OrderItem{Column: col}
			if p.curIs(lexer.DESC) {
				item.Desc = true
				p.nextToken()
			} else if p.curIs(lexer.ASC) {
				p.nextToken()
			}
			stmt.OrderBy = append(stmt.OrderBy, item)
			if p.curIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	}

	return stmt, nil
}

func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem
	for {
		if p.curIs(lexer.STAR) {
			p.nextToken()
			items = append(items, SelectItem{Star: true})
		} else {
			expr, err := p.parseSelectExpr()
			if err != nil {
				return nil, err
			}
			item := SelectItem{Expr: expr}
			if p.curIs(lexer.AS) {
				p.nextToken()
				if !p.curIs(lexer.IDENT) {
					return nil, &ParseError{Pos: p.cur.Pos, Expected: "alias", Found: p.cur.Literal}
				}
				item.Alias = p.cur.Literal
				p.nextToken()
			} else if p.curIs(lexer.IDENT) {
				item.Alias = p.cur.Literal
				p.nextToken()
			}
			items = append(items, item)
		}
		if p.curIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return items, nil
}

// parseSelectExpr parses one select-list expression: a column reference, a
// literal, or an aggregate call (spec.md §4.2).
func (p *Parser) parseSelectExpr() (Expression, error) {
	if lexer.IsAggregateFunc(p.cur.Type) {
		return p.parseAggregateCall()
	}
	return p.parsePrimaryExpr()
}

func (p *Parser) parseAggregateCall() (Expression, error) {
	fn := p.cur.Type
	p.nextToken()
	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	call := &AggregateCall{Func: fn}
	if p.curIs(lexer.STAR) {
		call.Star = true
		p.nextToken()
	} else {
		arg, err := p.parsePrimaryExpr()
		if err != nil {
			return nil, err
		}
		call.Arg = arg
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseTableRef() (TableRef, error) {
	if !p.curIs(lexer.IDENT) {
		return TableRef{}, &ParseError{Pos: p.cur.Pos, Expected: "table name", Found: p.cur.Literal}
	}
	ref := TableRef{Name: p.cur.Literal, Alias: p.cur.Literal}
	p.nextToken()
	if p.curIs(lexer.AS) {
		p.nextToken()
		if !p.curIs(lexer.IDENT) {
			return TableRef{}, &ParseError{Pos: p.cur.Pos, Expected: "alias", Found: p.cur.Literal}
		}
		ref.Alias = p.cur.Literal
		p.nextToken()
	} else if p.curIs(lexer.IDENT) {
		ref.Alias = p.cur.Literal
		p.nextToken()
	}
	return ref, nil
}

func (p *Parser) isJoinStart() bool {
	switch p.cur.Type {
	case lexer.JOIN, lexer.INNER, lexer.LEFT, lexer.RIGHT, lexer.FULL:
		return true
	default:
		return false
	}
}

func (p *Parser) parseJoinClause() (JoinClause, error) {
	kind := JoinInner
	switch p.cur.Type {
	case lexer.INNER:
		p.nextToken()
	case lexer.LEFT:
		kind = JoinLeft
		p.nextToken()
	case lexer.RIGHT:
		kind = JoinRight
		p.nextToken()
	case lexer.FULL:
		kind = JoinFull
		p.nextToken()
		if err := p.expect(lexer.OUTER); err != nil {
			return JoinClause{}, err
		}
	}
	if err := p.expect(lexer.JOIN); err != nil {
		return JoinClause{}, err
	}
	table, err := p.parseTableRef()
	if err != nil {
		return JoinClause{}, err
	}
	if err := p.expect(lexer.ON); err != nil {
		return JoinClause{}, err
	}
	on, err := p.parseExpr(precLowest)
	if err != nil {
		return JoinClause{}, err
	}
	return JoinClause{Kind: kind, Table: table, On: on}, nil
}

func (p *Parser) parseColumnRef() (ColumnRef, error) {
	if !p.curIs(lexer.IDENT) {
		return ColumnRef{}, &ParseError{Pos: p.cur.Pos, Expected: "column reference", Found: p.cur.Literal}
	}
	first := p.cur.Literal
	p.nextToken()
	if p.curIs(lexer.DOT) {
		p.nextToken()
		if !p.curIs(lexer.IDENT) {
			return ColumnRef{}, &ParseError{Pos: p.cur.Pos, Expected: "column name", Found: p.cur.Literal}
		}
		name := p.cur.Literal
		p.nextToken()
		return ColumnRef{Qualifier: first, Name: name}, nil
	}
	return ColumnRef{Name: first}, nil
}

// --- predicate / expression grammar ---
//
// Precedence (lowest to highest): OR, AND, comparisons, unary minus.
// `AND` binds tighter than `OR` (spec.md §4.2).

type precedence int

const (
	precLowest precedence = iota
	precOr
	precAnd
	precCompare
)

func precedenceOf(tt lexer.TokenType) precedence {
	switch tt {
	case lexer.OR:
		return precOr
	case lexer.AND:
		return precAnd
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.LTE, lexer.GT, lexer.GTE:
		return precCompare
	default:
		return precLowest
	}
}

// parseExpr parses a predicate/expression with precedence climbing, then
// applies postfix `BETWEEN`/`IS [NOT] NULL` sugar (spec.md §4.2).
func (p *Parser) parseExpr(min precedence) (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	left, err = p.parsePostfix(left)
	if err != nil {
		return nil, err
	}

	for precedenceOf(p.cur.Type) > min {
		op := p.cur.Type
		opPrec := precedenceOf(op)
		p.nextToken()
		right, err := p.parseExpr(opPrec)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

// parsePostfix applies `BETWEEN a AND b` (desugared per spec.md §4.2 to
// `e >= a AND e <= b`) and `IS [NOT] NULL` to an already-parsed operand.
func (p *Parser) parsePostfix(e Expression) (Expression, error) {
	if p.curIs(lexer.BETWEEN) {
		p.nextToken()
		lo, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.AND); err != nil {
			return nil, err
		}
		hi, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{
			Op:   lexer.AND,
			Left: &BinaryExpr{Left: e, Op: lexer.GTE, Right: lo},
			Right: &BinaryExpr{Left: e, Op: lexer.LTE, Right: hi},
		}, nil
	}
	if p.curIs(lexer.IS) {
		p.nextToken()
		negate := false
		if p.curIs(lexer.NOT) {
			negate = true
			p.nextToken()
		}
		if err := p.expect(lexer.NULL_KW); err != nil {
			return nil, err
		}
		return &IsNullExpr{Expr: e, Negate: negate}, nil
	}
	return e, nil
}

// parseUnary handles a leading `-` then delegates to parsePrimaryExpr.
func (p *Parser) parseUnary() (Expression, error) {
	if p.curIs(lexer.MINUS) {
		p.nextToken()
		right, err := p.parsePrimaryExpr()
		if err != nil {
			return nil, err
		}
		if lit, ok := right.(*Literal); ok {
			switch lit.Value.Type() {
			case types.TypeInt:
				return &Literal{Value: types.NewInt(-lit.Value.Int())}, nil
			case types.TypeFloat:
				return &Literal{Value: types.NewFloat(-lit.Value.Float())}, nil
			}
		}
		return &UnaryExpr{Op: lexer.MINUS, Right: right}, nil
	}
	return p.parsePrimaryExpr()
}

// parsePrimaryExpr parses a literal, a (possibly qualified) column
// reference, or a parenthesized expression.
func (p *Parser) parsePrimaryExpr() (Expression, error) {
	switch p.cur.Type {
	case lexer.INT:
		n, err := parseIntLiteral(p.cur.Literal)
		if err != nil {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "integer literal", Found: p.cur.Literal}
		}
		p.nextToken()
		return &Literal{Value: types.NewInt(n)}, nil
	case lexer.FLOAT:
		f, err := parseFloatLiteral(p.cur.Literal)
		if err != nil {
			return nil, &ParseError{Pos: p.cur.Pos, Expected: "float literal", Found: p.cur.Literal}
		}
		p.nextToken()
		return &Literal{Value: types.NewFloat(f)}, nil
	case lexer.STRING:
		lit := p.cur.Literal
		p.nextToken()
		return &Literal{Value: types.NewText(lit)}, nil
	case lexer.TRUE_KW:
		p.nextToken()
		return &Literal{Value: types.NewBool(true)}, nil
	case lexer.FALSE_KW:
		p.nextToken()
		return &Literal{Value: types.NewBool(false)}, nil
	case lexer.NULL_KW:
		p.nextToken()
		return &Literal{Value: types.NewNull()}, nil
	case lexer.IDENT:
		col, err := p.parseColumnRef()
		if err != nil {
			return nil, err
		}
		return &col, nil
	case lexer.LPAREN:
		p.nextToken()
		expr, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, &ParseError{Pos: p.cur.Pos, Expected: "an expression", Found: p.cur.Literal}
	}
}

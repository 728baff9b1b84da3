// pkg/sql/executor/eval.go
package executor

import (
	"fmt"

	"shelfdb/pkg/sql/lexer"
	"shelfdb/pkg/sql/parser"
	"shelfdb/pkg/types"
)

// evalOperand evaluates an expression that denotes a single value: a
// literal, a (possibly qualified) column reference, or a negated one of
// those.
func evalOperand(expr parser.Expression, t tuple, s *scope) (types.Value, error) {
	switch e := expr.(type) {
	case *parser.Literal:
		return e.Value, nil
	case *parser.ColumnRef:
		key, err := s.resolve(*e)
		if err != nil {
			return types.Value{}, err
		}
		v, ok := t[key]
		if !ok {
			return types.NewNull(), nil
		}
		return v, nil
	case *parser.UnaryExpr:
		v, err := evalOperand(e.Right, t, s)
		if err != nil {
			return types.Value{}, err
		}
		if v.IsNull() {
			return v, nil
		}
		if !v.IsNumeric() {
			return types.Value{}, &TypeError{Reason: fmt.Sprintf("cannot negate a %s value", v.Type())}
		}
		if v.Type() == types.TypeInt {
			return types.NewInt(-v.Int()), nil
		}
		return types.NewFloat(-v.Float()), nil
	default:
		return types.Value{}, &TypeError{Reason: fmt.Sprintf("unsupported expression in this context: %T", expr)}
	}
}

// evalPredicate evaluates a WHERE/ON/HAVING-position boolean expression
// using two-valued logic: any comparison touching NULL evaluates to false
// (spec.md §9, "NULL semantics ... two-valued").
func evalPredicate(expr parser.Expression, t tuple, s *scope) (bool, error) {
	switch e := expr.(type) {
	case *parser.BinaryExpr:
		switch e.Op {
		case lexer.AND:
			left, err := evalPredicate(e.Left, t, s)
			if err != nil {
				return false, err
			}
			right, err := evalPredicate(e.Right, t, s)
			if err != nil {
				return false, err
			}
			return left && right, nil
		case lexer.OR:
			left, err := evalPredicate(e.Left, t, s)
			if err != nil {
				return false, err
			}
			right, err := evalPredicate(e.Right, t, s)
			if err != nil {
				return false, err
			}
			return left || right, nil
		default:
			return evalComparison(e, t, s)
		}
	case *parser.IsNullExpr:
		v, err := evalOperand(e.Expr, t, s)
		if err != nil {
			return false, err
		}
		result := v.IsNull()
		if e.Negate {
			result = !result
		}
		return result, nil
	default:
		v, err := evalOperand(expr, t, s)
		if err != nil {
			return false, err
		}
		if v.Type() != types.TypeBool {
			return false, &TypeError{Reason: fmt.Sprintf("expected a boolean predicate, got %s", v.Type())}
		}
		return v.Bool(), nil
	}
}

func evalComparison(e *parser.BinaryExpr, t tuple, s *scope) (bool, error) {
	left, err := evalOperand(e.Left, t, s)
	if err != nil {
		return false, err
	}
	right, err := evalOperand(e.Right, t, s)
	if err != nil {
		return false, err
	}
	if left.IsNull() || right.IsNull() {
		return false, nil
	}
	switch e.Op {
	case lexer.EQ:
		return left.Equal(right), nil
	case lexer.NEQ:
		return !left.Equal(right), nil
	case lexer.LT, lexer.LTE, lexer.GT, lexer.GTE:
		cmp, ok := left.Compare(right)
		if !ok {
			return false, nil
		}
		switch e.Op {
		case lexer.LT:
			return cmp < 0, nil
		case lexer.LTE:
			return cmp <= 0, nil
		case lexer.GT:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	default:
		return false, &TypeError{Reason: fmt.Sprintf("unsupported comparison operator %s", e.Op)}
	}
}

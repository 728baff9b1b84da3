// pkg/sql/executor/select.go
package executor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"shelfdb/pkg/sql/lexer"
	"shelfdb/pkg/sql/parser"
	"shelfdb/pkg/types"
)

func (e *Executor) executeSelect(stmt *parser.SelectStmt) (*Result, error) {
	tuples, sc, err := e.runFrom(stmt)
	if err != nil {
		return nil, err
	}

	if stmt.Where != nil {
		filtered := tuples[:0:0]
		for _, t := range tuples {
			ok, err := evalPredicate(stmt.Where, t, sc)
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, t)
			}
		}
		tuples = filtered
	}

	groups, err := groupTuples(stmt, tuples, sc)
	if err != nil {
		return nil, err
	}

	columns, projected, err := projectGroups(stmt, groups, sc)
	if err != nil {
		return nil, err
	}

	if len(stmt.OrderBy) > 0 {
		if err := orderProjected(stmt.OrderBy, groups, projected, sc); err != nil {
			return nil, err
		}
	}

	if stmt.Distinct {
		projected = dedupeRows(projected)
	}

	return &Result{Columns: columns, Rows: projected}, nil
}

// runFrom builds the initial tuple set from the FROM table and any JOINs,
// returning the final scope in effect (spec.md §4.3.6 step 1).
func (e *Executor) runFrom(stmt *parser.SelectStmt) ([]tuple, *scope, error) {
	tbl, ok := e.catalog.Table(stmt.From.Name)
	if !ok {
		return nil, nil, &SemanticError{Reason: fmt.Sprintf("table %q does not exist", stmt.From.Name)}
	}
	_, rows, err := e.catalog.Rows(tbl.Name)
	if err != nil {
		return nil, nil, err
	}
	cols := tbl.ColumnNames()
	sc := newScope(stmt.From.Alias, cols)
	tuples := make([]tuple, 0, len(rows))
	for _, row := range rows {
		tuples = append(tuples, rowToTuple(stmt.From.Alias, row))
	}

	for _, jc := range stmt.Joins {
		rtbl, ok := e.catalog.Table(jc.Table.Name)
		if !ok {
			return nil, nil, &SemanticError{Reason: fmt.Sprintf("table %q does not exist", jc.Table.Name)}
		}
		_, rrows, err := e.catalog.Rows(rtbl.Name)
		if err != nil {
			return nil, nil, err
		}
		rcols := rtbl.ColumnNames()
		rtuples := make([]tuple, 0, len(rrows))
		for _, row := range rrows {
			rtuples = append(rtuples, rowToTuple(jc.Table.Alias, row))
		}
		combined := sc.with(jc.Table.Alias, rcols)
		tuples, err = joinTuples(tuples, sc, rtuples, jc.Table.Alias, rcols, jc.Kind, jc.On, combined)
		if err != nil {
			return nil, nil, err
		}
		sc = combined
	}
	return tuples, sc, nil
}

// joinTuples combines left with right by evaluating onExpr over every pair,
// then widens the output according to kind (spec.md §4.3.6 step 1).
func joinTuples(left []tuple, leftScope *scope, right []tuple, rightAlias string, rightCols []string, kind parser.JoinKind, onExpr parser.Expression, combined *scope) ([]tuple, error) {
	matchedLeft := make([]bool, len(left))
	matchedRight := make([]bool, len(right))
	var out []tuple

	for i, lt := range left {
		for j, rt := range right {
			m := merge(lt, rt)
			ok, err := evalPredicate(onExpr, m, combined)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, m)
				matchedLeft[i] = true
				matchedRight[j] = true
			}
		}
	}

	if kind == parser.JoinLeft || kind == parser.JoinFull {
		nullRight := newScope(rightAlias, rightCols).nullTuple()
		for i, lt := range left {
			if !matchedLeft[i] {
				out = append(out, merge(lt, nullRight))
			}
		}
	}
	if kind == parser.JoinRight || kind == parser.JoinFull {
		nullLeft := leftScope.nullTuple()
		for j, rt := range right {
			if !matchedRight[j] {
				out = append(out, merge(nullLeft, rt))
			}
		}
	}
	return out, nil
}

// group is one GROUP BY bucket (or the single implicit group), carrying a
// representative tuple for resolving non-aggregated columns and order keys.
type group struct {
	repr   tuple
	tuples []tuple
}

func groupTuples(stmt *parser.SelectStmt, tuples []tuple, sc *scope) ([]*group, error) {
	hasAggregate := false
	for _, item := range stmt.Columns {
		if _, ok := item.Expr.(*parser.AggregateCall); ok {
			hasAggregate = true
		}
	}

	if len(stmt.GroupBy) == 0 {
		if !hasAggregate {
			groups := make([]*group, 0, len(tuples))
			for _, t := range tuples {
				groups = append(groups, &group{repr: t, tuples: []tuple{t}})
			}
			return groups, nil
		}
		// Aggregates with no explicit GROUP BY still form a single implicit
		// group (spec.md §4.3.6 step 3): every non-aggregated select item
		// is illegal here, the same as with an explicit GROUP BY.
		if err := checkGroupByProjection(stmt, sc); err != nil {
			return nil, err
		}
		if len(tuples) == 0 {
			return []*group{{repr: sc.nullTuple(), tuples: nil}}, nil
		}
		return []*group{{repr: tuples[0], tuples: tuples}}, nil
	}

	if err := checkGroupByProjection(stmt, sc); err != nil {
		return nil, err
	}

	order := make([]string, 0)
	buckets := make(map[string]*group)
	for _, t := range tuples {
		key, err := groupKey(stmt.GroupBy, t, sc)
		if err != nil {
			return nil, err
		}
		g, ok := buckets[key]
		if !ok {
			g = &group{repr: t}
			buckets[key] = g
			order = append(order, key)
		}
		g.tuples = append(g.tuples, t)
	}
	groups := make([]*group, 0, len(order))
	for _, key := range order {
		groups = append(groups, buckets[key])
	}
	return groups, nil
}

// checkGroupByProjection enforces that every non-aggregated select item is
// one of the GROUP BY columns (spec.md §4.3.6 step 3).
func checkGroupByProjection(stmt *parser.SelectStmt, sc *scope) error {
	groupKeys := make(map[string]bool, len(stmt.GroupBy))
	for _, g := range stmt.GroupBy {
		key, err := sc.resolve(g)
		if err != nil {
			return err
		}
		groupKeys[key] = true
	}
	for _, item := range stmt.Columns {
		if item.Star {
			return &SemanticError{Reason: "SELECT * is not allowed with GROUP BY"}
		}
		switch ex := item.Expr.(type) {
		case *parser.AggregateCall:
			continue
		case *parser.ColumnRef:
			key, err := sc.resolve(*ex)
			if err != nil {
				return err
			}
			if !groupKeys[key] {
				return &SemanticError{Reason: fmt.Sprintf("column %q must appear in GROUP BY or be used in an aggregate", ex.Name)}
			}
		case *parser.Literal:
			continue
		default:
			return &SemanticError{Reason: "unsupported select expression with GROUP BY"}
		}
	}
	return nil
}

func groupKey(cols []parser.ColumnRef, t tuple, sc *scope) (string, error) {
	var sb strings.Builder
	for _, c := range cols {
		key, err := sc.resolve(c)
		if err != nil {
			return "", err
		}
		sb.WriteString(valueKey(t[key]))
		sb.WriteByte('\x1f')
	}
	return sb.String(), nil
}

func valueKey(v types.Value) string {
	switch v.Type() {
	case types.TypeNull:
		return "N"
	case types.TypeInt, types.TypeFloat:
		return "F" + strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)
	case types.TypeText:
		return "T" + v.Text()
	case types.TypeBool:
		if v.Bool() {
			return "B1"
		}
		return "B0"
	default:
		return "?"
	}
}

// projectGroups emits one output row per group (spec.md §4.3.6 step 4).
func projectGroups(stmt *parser.SelectStmt, groups []*group, sc *scope) ([]string, [][]types.Value, error) {
	items := stmt.Columns
	if len(items) == 1 && items[0].Star {
		return projectStar(groups, sc)
	}

	columns := make([]string, len(items))
	for i, item := range items {
		columns[i] = outputLabel(item)
	}

	rows := make([][]types.Value, 0, len(groups))
	for _, g := range groups {
		row := make([]types.Value, len(items))
		for i, item := range items {
			v, err := projectItem(item, g, sc)
			if err != nil {
				return nil, nil, err
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

func outputLabel(item parser.SelectItem) string {
	if item.Alias != "" {
		return item.Alias
	}
	switch ex := item.Expr.(type) {
	case *parser.ColumnRef:
		return ex.Name
	case *parser.AggregateCall:
		if ex.Star {
			return strings.ToLower(ex.Func.String()) + "(*)"
		}
		arg := ""
		if col, ok := ex.Arg.(*parser.ColumnRef); ok {
			arg = col.Name
		}
		return strings.ToLower(ex.Func.String()) + "(" + arg + ")"
	case *parser.Literal:
		return ex.Value.String()
	default:
		return ""
	}
}

func projectItem(item parser.SelectItem, g *group, sc *scope) (types.Value, error) {
	switch ex := item.Expr.(type) {
	case *parser.AggregateCall:
		return evalAggregate(ex, g, sc)
	default:
		return evalOperand(item.Expr, g.repr, sc)
	}
}

func evalAggregate(call *parser.AggregateCall, g *group, sc *scope) (types.Value, error) {
	switch call.Func {
	case lexer.COUNT:
		if call.Star {
			return types.NewInt(int64(len(g.tuples))), nil
		}
		n := int64(0)
		for _, t := range g.tuples {
			v, err := evalOperand(call.Arg, t, sc)
			if err != nil {
				return types.Value{}, err
			}
			if !v.IsNull() {
				n++
			}
		}
		return types.NewInt(n), nil
	case lexer.SUM, lexer.AVG:
		sum := 0.0
		isFloat := false
		n := 0
		for _, t := range g.tuples {
			v, err := evalOperand(call.Arg, t, sc)
			if err != nil {
				return types.Value{}, err
			}
			if v.IsNull() {
				continue
			}
			if !v.IsNumeric() {
				return types.Value{}, &TypeError{Reason: fmt.Sprintf("%s requires a numeric argument", call.Func)}
			}
			if v.Type() == types.TypeFloat {
				isFloat = true
			}
			sum += v.AsFloat64()
			n++
		}
		if call.Func == lexer.AVG {
			if n == 0 {
				return types.NewNull(), nil
			}
			return types.NewFloat(sum / float64(n)), nil
		}
		if n == 0 {
			return types.NewNull(), nil
		}
		if isFloat {
			return types.NewFloat(sum), nil
		}
		return types.NewInt(int64(sum)), nil
	case lexer.MIN, lexer.MAX:
		var best types.Value
		has := false
		for _, t := range g.tuples {
			v, err := evalOperand(call.Arg, t, sc)
			if err != nil {
				return types.Value{}, err
			}
			if v.IsNull() {
				continue
			}
			if !has {
				best, has = v, true
				continue
			}
			cmp, ok := best.Compare(v)
			if !ok {
				return types.Value{}, &TypeError{Reason: fmt.Sprintf("%s over incomparable values", call.Func)}
			}
			if (call.Func == lexer.MIN && cmp > 0) || (call.Func == lexer.MAX && cmp < 0) {
				best = v
			}
		}
		if !has {
			return types.NewNull(), nil
		}
		return best, nil
	default:
		return types.Value{}, &SemanticError{Reason: fmt.Sprintf("unsupported aggregate function %s", call.Func)}
	}
}

// projectStar expands `*` to every column in scope, in join order, labeling
// ambiguous column names with their alias (spec.md §4.3.6 step 4).
func projectStar(groups []*group, sc *scope) ([]string, [][]types.Value, error) {
	type col struct{ alias, name string }
	var order []col
	counts := make(map[string]int)
	for _, alias := range sc.aliases {
		for _, name := range sc.cols[alias] {
			order = append(order, col{alias, name})
			counts[name]++
		}
	}
	columns := make([]string, len(order))
	for i, c := range order {
		if counts[c.name] > 1 {
			columns[i] = c.alias + "." + c.name
		} else {
			columns[i] = c.name
		}
	}
	rows := make([][]types.Value, 0, len(groups))
	for _, g := range groups {
		row := make([]types.Value, len(order))
		for i, c := range order {
			row[i] = g.repr[c.alias+"."+c.name]
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// orderProjected sorts projected rows (and their parallel groups) by the
// ORDER BY keys, resolved against each group's representative tuple
// (spec.md §4.3.6 step 5). The sort is stable.
func orderProjected(items []parser.OrderItem, groups []*group, rows [][]types.Value, sc *scope) error {
	var firstErr error
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if firstErr != nil {
			return false
		}
		ga, gb := groups[idx[a]], groups[idx[b]]
		for _, item := range items {
			key, err := sc.resolve(item.Column)
			if err != nil {
				firstErr = err
				return false
			}
			va, vb := ga.repr[key], gb.repr[key]
			less, equal, err := orderCompare(va, vb, item.Desc)
			if err != nil {
				firstErr = err
				return false
			}
			if equal {
				continue
			}
			return less
		}
		return false
	})
	if firstErr != nil {
		return firstErr
	}
	reordered := make([][]types.Value, len(rows))
	reorderedGroups := make([]*group, len(groups))
	for i, j := range idx {
		reordered[i] = rows[j]
		reorderedGroups[i] = groups[j]
	}
	copy(rows, reordered)
	copy(groups, reorderedGroups)
	return nil
}

// orderCompare reports whether a sorts before b under the given direction.
// NULLs sort last for ASC, first for DESC (spec.md §4.3.6 step 5).
func orderCompare(a, b types.Value, desc bool) (less, equal bool, err error) {
	if a.IsNull() && b.IsNull() {
		return false, true, nil
	}
	if a.IsNull() {
		return desc, false, nil // NULL sorts last for ASC, first for DESC
	}
	if b.IsNull() {
		return !desc, false, nil
	}
	cmp, ok := a.Compare(b)
	if !ok {
		return false, false, &TypeError{Reason: "ORDER BY over incomparable types"}
	}
	if cmp == 0 {
		return false, true, nil
	}
	if desc {
		return cmp > 0, false, nil
	}
	return cmp < 0, false, nil
}

func dedupeRows(rows [][]types.Value) [][]types.Value {
	seen := make(map[string]bool, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		var sb strings.Builder
		for _, v := range row {
			sb.WriteString(valueKey(v))
			sb.WriteByte('\x1f')
		}
		key := sb.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/value"
)

// SQLPlan is a backend-parameterised query: a WHERE fragment referencing
// named binds, the bind map those names resolve to, and an ORDER BY clause.
// Named binds use the alias scheme `{keybase}_{conjunction_index}_{idx|tag}`
// so that the same key appearing in two different conjunctions never
// collides. A backend driver without native named-bind support (e.g.
// pgx's positional $N) renders this through RenderPostgres.
type SQLPlan struct {
	Where   string
	Binds   map[string]any
	OrderBy string
	Limit   uint64
}

// sortColumn maps a sort field to its SQL column reference and the cast
// needed to compare it as the type it logically holds. Stored sort/filter
// keys live in the indexes jsonb column; watermark and cid are their own
// dedicated text columns (ulids and cid strings both sort correctly as text).
func sortColumn(field filter.SortField) string {
	switch field {
	case filter.SortWatermark:
		return "watermark"
	default:
		return fmt.Sprintf("(indexes->>'%s')::timestamptz", string(field))
	}
}

func cidColumn() string { return "cid" }

// CompileSQL translates a filter set, sort, and pagination request into a
// SQLPlan. indexColumn/tagColumn name the jsonb columns holding the flat
// indexes/tags maps for the row being queried (messages vs. event log
// entries use the same shape under different table names).
func CompileSQL(set filter.Set, s filter.Sort, pag filter.Pagination, alwaysCursor bool) (SQLPlan, error) {
	if err := set.Validate(); err != nil {
		return SQLPlan{}, err
	}

	field := s.Field
	if field == "" {
		field = filter.SortMessageTimestamp
	}

	binds := map[string]any{}
	var orGroups []string
	for i, conj := range set {
		group, err := compileConjunction(conj, i, binds)
		if err != nil {
			return SQLPlan{}, err
		}
		if group != "" {
			orGroups = append(orGroups, group)
		}
	}

	where := "TRUE"
	if len(orGroups) > 0 {
		where = "(" + strings.Join(orGroups, ") OR (") + ")"
	}

	if pag.Cursor != nil {
		cont, err := compileContinuation(field, s.Ascending, *pag.Cursor, binds)
		if err != nil {
			return SQLPlan{}, err
		}
		where = fmt.Sprintf("(%s) AND (%s)", where, cont)
	}

	limit := pag.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	_ = alwaysCursor // emission of the cursor itself happens after fetch, in the caller

	orderDir := "ASC"
	if !s.Ascending {
		orderDir = "DESC"
	}
	orderBy := fmt.Sprintf("%s %s, %s %s", sortColumn(field), orderDir, cidColumn(), orderDir)

	return SQLPlan{Where: where, Binds: binds, OrderBy: orderBy, Limit: limit + 1}, nil
}

func compileConjunction(conj filter.Conjunction, conjIndex int, binds map[string]any) (string, error) {
	if len(conj) == 0 {
		return "", nil
	}
	// deterministic key iteration keeps generated SQL/bind names stable across runs
	keys := make([]filter.Key, 0, len(conj))
	for k := range conj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	var parts []string
	for _, k := range keys {
		f := conj[k]
		suffix := "idx"
		col := "indexes"
		if k.IsTag() {
			suffix = "tag"
			col = "tags"
		}
		alias := fmt.Sprintf("%s_%d_%s", k.Keybase(), conjIndex, suffix)
		ref := fmt.Sprintf("%s->>'%s'", col, k.Name())

		part, err := compileFilter(ref, alias, f, binds)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " AND "), nil
}

func compileFilter(ref, alias string, f filter.Filter, binds map[string]any) (string, error) {
	switch f.Kind() {
	case filter.KindEqual:
		bindValue, cast := sqlBind(f.EqualValue())
		binds[alias] = bindValue
		return fmt.Sprintf("(%s)%s = :%s", ref, cast, alias), nil
	case filter.KindRange:
		lower, upper := f.Bounds()
		var parts []string
		if lower.Kind != filter.Unbounded {
			op := ">"
			if lower.Kind == filter.Included {
				op = ">="
			}
			name := alias + "_lower"
			bindValue, cast := sqlBind(lower.Value)
			binds[name] = bindValue
			parts = append(parts, fmt.Sprintf("(%s)%s %s :%s", ref, cast, op, name))
		}
		if upper.Kind != filter.Unbounded {
			op := "<"
			if upper.Kind == filter.Included {
				op = "<="
			}
			name := alias + "_upper"
			bindValue, cast := sqlBind(upper.Value)
			binds[name] = bindValue
			parts = append(parts, fmt.Sprintf("(%s)%s %s :%s", ref, cast, op, name))
		}
		return strings.Join(parts, " AND "), nil
	case filter.KindOneOf:
		values := f.OneOfValues()
		var names []string
		for i, v := range values {
			name := fmt.Sprintf("%s_%d", alias, i)
			bindValue, cast := sqlBind(v)
			binds[name] = bindValue
			names = append(names, fmt.Sprintf("(%s)%s = :%s", ref, cast, name))
		}
		if len(names) == 0 {
			return "FALSE", nil
		}
		return "(" + strings.Join(names, " OR ") + ")", nil
	case filter.KindPrefix:
		bindValue, _ := sqlBind(f.PrefixValue())
		binds[alias] = bindValue
		// avoids LIKE wildcard-escaping of the prefix value entirely
		return fmt.Sprintf("left(%s, char_length(:%s)) = :%s", ref, alias, alias), nil
	}
	return "", fmt.Errorf("query: unsupported filter kind %d", f.Kind())
}

func compileContinuation(field filter.SortField, ascending bool, c filter.Cursor, binds map[string]any) (string, error) {
	sortRef := sortColumn(field)
	valueBind, cast := sqlBind(c.Value)
	binds["cursor_value"] = valueBind
	binds["cursor_cid"] = c.CID.String()

	op := ">"
	if !ascending {
		op = "<"
	}
	return fmt.Sprintf(
		"((%s)%s = :cursor_value AND %s %s :cursor_cid) OR ((%s)%s %s :cursor_value)",
		sortRef, cast, cidColumn(), op, sortRef, cast, op,
	), nil
}

// sqlBind chooses the bind value and companion cast suffix (applied to the
// jsonb text-extraction expression it is compared against) for a Value.
func sqlBind(v value.Value) (bindValue any, cast string) {
	if i, ok := v.AsInt(); ok {
		return i, "::bigint"
	}
	if f, ok := v.AsFloat(); ok {
		return f, "::double precision"
	}
	if b, ok := v.AsBool(); ok {
		return b, "::boolean"
	}
	if t, ok := v.AsDateTime(); ok {
		return t, "::timestamptz"
	}
	if c, ok := v.AsCID(); ok {
		return c.String(), ""
	}
	s, _ := v.AsString()
	return s, ""
}

// RenderPostgres rewrites a SQLPlan's named binds into pgx's positional $N
// placeholders, in first-occurrence order, returning the rewritten WHERE
// clause and the matching positional argument slice.
func RenderPostgres(plan SQLPlan) (where string, args []any) {
	names := make([]string, 0, len(plan.Binds))
	for name := range plan.Binds {
		names = append(names, name)
	}
	// longest-name-first avoids a short alias prefix-matching inside a longer one
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	rendered := plan.Where
	index := map[string]int{}
	args = make([]any, 0, len(plan.Binds))
	for _, name := range names {
		args = append(args, plan.Binds[name])
		index[name] = len(args)
	}
	for _, name := range names {
		rendered = strings.ReplaceAll(rendered, ":"+name, fmt.Sprintf("$%d", index[name]))
	}
	return rendered, args
}

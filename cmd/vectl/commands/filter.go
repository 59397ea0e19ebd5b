package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vectl/vectl/pkg/vecdb"
)

// parseFilters turns --filter expressions into a payload filter.
// Supported forms: key=value (equality), key>=n, key<=n, key>n, key<n
// (numeric ranges). All conditions must hold (AND).
func parseFilters(exprs []string) (*vecdb.Filter, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	f := &vecdb.Filter{}
	for _, expr := range exprs {
		cond, err := parseFilterExpr(expr)
		if err != nil {
			return nil, err
		}
		f.Must = append(f.Must, cond)
	}
	return f, nil
}

func parseFilterExpr(expr string) (vecdb.Condition, error) {
	// Two-character operators first, so "score>=3" is not read as
	// key "score>" equals "3".
	for _, op := range []string{">=", "<=", ">", "<"} {
		key, val, ok := strings.Cut(expr, op)
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if key == "" {
			return vecdb.Condition{}, fmt.Errorf("filter %q: missing key", expr)
		}
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return vecdb.Condition{}, fmt.Errorf("filter %q: %q is not a number", expr, val)
		}
		r := &vecdb.Range{}
		switch op {
		case ">=":
			r.GTE = &n
		case "<=":
			r.LTE = &n
		case ">":
			r.GT = &n
		case "<":
			r.LT = &n
		}
		return vecdb.Condition{Key: key, Range: r}, nil
	}

	key, val, ok := strings.Cut(expr, "=")
	if !ok {
		return vecdb.Condition{}, fmt.Errorf("filter %q: expected key=value or key<op>number", expr)
	}
	key, val = strings.TrimSpace(key), strings.TrimSpace(val)
	if key == "" {
		return vecdb.Condition{}, fmt.Errorf("filter %q: missing key", expr)
	}
	return vecdb.Condition{Key: key, Match: typedValue(val)}, nil
}

// typedValue guesses the payload type of an equality value: bool, then
// number, then string.
func typedValue(val string) any {
	switch val {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(val, 64); err == nil {
		return n
	}
	return val
}

package vecdb

// Filter restricts a search to points whose payload satisfies every
// condition. Conditions combine with AND.
type Filter struct {
	Must []Condition `json:"must" yaml:"must"`
}

// Condition is a single predicate over one payload field. Exactly one
// of Match or Range should be set.
type Condition struct {
	// Key is the payload field name.
	Key string `json:"key" yaml:"key"`

	// Match requires the field to equal this value.
	Match any `json:"match,omitempty" yaml:"match,omitempty"`

	// Range requires the field to be numeric and within bounds.
	Range *Range `json:"range,omitempty" yaml:"range,omitempty"`
}

// Range is a numeric range predicate. Nil bounds are open.
type Range struct {
	GT  *float64 `json:"gt,omitempty" yaml:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty" yaml:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty" yaml:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty" yaml:"lte,omitempty"`
}

// Matches reports whether the payload satisfies every condition.
// A nil filter matches everything.
func (f *Filter) Matches(payload map[string]any) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Must {
		if !c.matches(payload) {
			return false
		}
	}
	return true
}

func (c Condition) matches(payload map[string]any) bool {
	v, ok := payload[c.Key]
	if !ok {
		return false
	}
	if c.Range != nil {
		n, ok := asFloat(v)
		if !ok {
			return false
		}
		return c.Range.contains(n)
	}
	return equalValue(v, c.Match)
}

func (r *Range) contains(n float64) bool {
	if r.GT != nil && !(n > *r.GT) {
		return false
	}
	if r.GTE != nil && !(n >= *r.GTE) {
		return false
	}
	if r.LT != nil && !(n < *r.LT) {
		return false
	}
	if r.LTE != nil && !(n <= *r.LTE) {
		return false
	}
	return true
}

// equalValue compares payload values loosely: numbers compare by value
// across int/float types (JSON round-trips turn ints into float64).
func equalValue(a, b any) bool {
	if an, ok := asFloat(a); ok {
		if bn, ok := asFloat(b); ok {
			return an == bn
		}
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

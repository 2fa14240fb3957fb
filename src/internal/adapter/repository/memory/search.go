package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/shopspring/decimal"
)

// filterAndSort applies compiled conditions and ordering to rows, standing
// in for the WHERE, HAVING and ORDER BY a SQL store would run.
func filterAndSort[T any](rows []T, query querybuilder.CompiledQuery, value func(T, string) any) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, query.Conditions, value) {
			out = append(out, row)
		}
	}

	if query.Order != nil {
		name := query.Order.Field.Name
		descending := query.Order.Direction == querybuilder.Descending
		sort.SliceStable(out, func(i, j int) bool {
			left, right := value(out[i], name), value(out[j], name)
			if leftNull, rightNull := isNull(left), isNull(right); leftNull || rightNull {
				return rightNull && !leftNull
			}
			cmp := compareValues(left, right)
			if descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	return out
}

func matchesAll[T any](row T, conditions []querybuilder.Condition, value func(T, string) any) bool {
	for _, condition := range conditions {
		actual := value(row, condition.Field.Name)
		if isNull(actual) {
			return false
		}
		if !condition.Operator.Holds(equalValues(actual, condition.Value)) {
			return false
		}
	}
	return true
}

// isNull mirrors SQL, where any comparison against NULL is false.
func isNull(value any) bool {
	if value == nil {
		return true
	}
	stamp, ok := value.(*time.Time)
	return ok && stamp == nil
}

func equalValues(actual any, expected any) bool {
	switch typed := actual.(type) {
	case decimal.Decimal:
		want, ok := toDecimal(expected)
		return ok && typed.Equal(want)
	case *time.Time:
		if typed == nil {
			return false
		}
		want, ok := toTime(expected)
		return ok && typed.Equal(want)
	default:
		return fmt.Sprint(actual) == fmt.Sprint(expected)
	}
}

// compareValues orders nil timestamps after everything else. Callers sorting
// rows handle NULLs before applying the direction.
func compareValues(left any, right any) int {
	switch l := left.(type) {
	case decimal.Decimal:
		r, _ := right.(decimal.Decimal)
		return l.Cmp(r)
	case *time.Time:
		r, _ := right.(*time.Time)
		switch {
		case l == nil && r == nil:
			return 0
		case l == nil:
			return 1
		case r == nil:
			return -1
		default:
			return l.Compare(*r)
		}
	default:
		return strings.Compare(fmt.Sprint(left), fmt.Sprint(right))
	}
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch typed := value.(type) {
	case decimal.Decimal:
		return typed, true
	case *decimal.Decimal:
		if typed == nil {
			return decimal.Decimal{}, false
		}
		return *typed, true
	default:
		parsed, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(value)))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return parsed, true
	}
}

func toTime(value any) (time.Time, bool) {
	switch typed := value.(type) {
	case time.Time:
		return typed, true
	case *time.Time:
		if typed == nil {
			return time.Time{}, false
		}
		return *typed, true
	case string:
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(typed))
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

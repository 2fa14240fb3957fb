package querybuilder

import (
	"strings"

	"github.com/api-sage/ledger-engine/src/internal/commons"
)

type Operator string

const (
	Equals    Operator = "EQUALS"
	NotEquals Operator = "NOT_EQUALS"
)

var operatorSymbols = map[Operator]string{
	Equals:    "=",
	NotEquals: "!=",
}

func ParseOperator(raw string) (Operator, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case "", "EQ", "=", string(Equals):
		return Equals, nil
	case "NE", "!=", "<>", string(NotEquals):
		return NotEquals, nil
	default:
		return "", commons.NewValidationError("operator", "operator %s is not supported", raw)
	}
}

func (o Operator) Symbol() string {
	return operatorSymbols[o]
}

// Holds reports whether the operator accepts a comparison whose operands
// were found equal or not.
func (o Operator) Holds(equal bool) bool {
	if o == NotEquals {
		return !equal
	}
	return equal
}

// Condition filters one field. Conditions are compared by identity inside a
// SearchQuery, so keep the pointer returned by NewCondition.
type Condition struct {
	Field    Field
	Operator Operator
	Value    any
}

func NewCondition(field Field, operator Operator, value any) (*Condition, error) {
	if _, ok := operatorSymbols[operator]; !ok {
		return nil, commons.NewValidationError("operator", "operator %s is not supported", operator)
	}
	if value == nil {
		return nil, commons.NewValidationError(field.Name, "condition value is required")
	}
	return &Condition{Field: field, Operator: operator, Value: value}, nil
}

type OrderDirection string

const (
	Ascending  OrderDirection = "asc"
	Descending OrderDirection = "desc"
)

// ParseOrderDirection falls back to Descending for anything it does not
// recognise.
func ParseOrderDirection(raw string) OrderDirection {
	if strings.EqualFold(strings.TrimSpace(raw), string(Ascending)) {
		return Ascending
	}
	return Descending
}

type OrderCondition struct {
	Field     Field
	Direction OrderDirection
}

// render pins NULL placement because postgres and sqlite disagree on it.
func (o OrderCondition) render() string {
	clause := o.Field.Column + " " + string(o.Direction)
	if o.Field.Nullable {
		clause += " NULLS LAST"
	}
	return clause
}

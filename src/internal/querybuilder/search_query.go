package querybuilder

import (
	"fmt"
	"strings"

	"github.com/api-sage/ledger-engine/src/internal/commons"
)

type ResultShape int

const (
	AccountRows ResultShape = iota + 1
	TransferRows
)

const conditionJoin = " AND "

// CompiledQuery is a rendered search ready for a store. SQL uses named
// parameters (":name") whose values are in Params. Conditions and Order are
// carried along for stores that evaluate searches without SQL.
type CompiledQuery struct {
	SQL        string
	Params     map[string]any
	Shape      ResultShape
	Conditions []Condition
	Order      *OrderCondition
}

// SearchQuery accumulates whitelisted conditions and at most one ordering
// for a single entity kind.
type SearchQuery struct {
	kind       EntityKind
	conditions []*Condition
	order      *OrderCondition
}

func NewAccountSearch() *SearchQuery {
	return &SearchQuery{kind: AccountEntity}
}

func NewTransferSearch() *SearchQuery {
	return &SearchQuery{kind: TransferEntity}
}

func (q *SearchQuery) Kind() EntityKind {
	return q.kind
}

// AddCondition registers condition. Adding the same pointer twice is a
// no-op; distinct conditions with equal contents are both kept.
func (q *SearchQuery) AddCondition(condition *Condition) error {
	if condition == nil {
		return commons.NewValidationError("condition", "condition is required")
	}
	if !isWhitelisted(q.kind, condition.Field) {
		return commons.NewValidationError("field", "field %s is not searchable for %s", condition.Field.Name, q.kind)
	}

	for _, existing := range q.conditions {
		if existing == condition {
			return nil
		}
	}
	q.conditions = append(q.conditions, condition)
	return nil
}

// Where resolves name against the whitelist and adds a new condition.
func (q *SearchQuery) Where(name string, operator Operator, value any) (*Condition, error) {
	field, ok := FieldByName(q.kind, name)
	if !ok {
		return nil, commons.NewValidationError("field", "field %s is not searchable for %s", name, q.kind)
	}

	condition, err := NewCondition(field, operator, value)
	if err != nil {
		return nil, err
	}
	if err := q.AddCondition(condition); err != nil {
		return nil, err
	}
	return condition, nil
}

func (q *SearchQuery) SetOrder(field Field, direction OrderDirection) error {
	if !isWhitelisted(q.kind, field) {
		return commons.NewValidationError("field", "field %s is not sortable for %s", field.Name, q.kind)
	}
	q.order = &OrderCondition{Field: field, Direction: direction}
	return nil
}

// OrderBy resolves name and sets the ordering; direction falls back to desc.
func (q *SearchQuery) OrderBy(name string, direction string) error {
	field, ok := FieldByName(q.kind, name)
	if !ok {
		return commons.NewValidationError("field", "field %s is not sortable for %s", name, q.kind)
	}
	return q.SetOrder(field, ParseOrderDirection(direction))
}

func (q *SearchQuery) Conditions() []*Condition {
	out := make([]*Condition, len(q.conditions))
	copy(out, q.conditions)
	return out
}

func (q *SearchQuery) Order() *OrderCondition {
	if q.order == nil {
		return nil
	}
	order := *q.order
	return &order
}

// Compile renders the entity's base query followed by WHERE for plain
// fields, the entity's fixed GROUP BY, HAVING for aggregated fields and the
// optional ORDER BY.
func (q *SearchQuery) Compile() CompiledQuery {
	def := registry[q.kind]
	params := make(map[string]any, len(q.conditions))
	where := make([]string, 0, len(q.conditions))
	having := make([]string, 0)
	conditions := make([]Condition, 0, len(q.conditions))
	seen := make(map[string]int)

	for _, condition := range q.conditions {
		name := paramName(condition.Field.Column, seen)
		params[name] = condition.Value
		conditions = append(conditions, *condition)

		clause := condition.Field.Clause + condition.Operator.Symbol() + ":" + name
		if condition.Field.Aggregated() {
			having = append(having, clause)
			continue
		}
		where = append(where, clause)
	}

	var sql strings.Builder
	sql.WriteString(def.baseQuery)
	if len(where) > 0 {
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(where, conditionJoin))
	}
	sql.WriteString(" GROUP BY ")
	sql.WriteString(def.groupBy)
	if len(having) > 0 {
		sql.WriteString(" HAVING ")
		sql.WriteString(strings.Join(having, conditionJoin))
	}
	if q.order != nil {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(q.order.render())
	}

	return CompiledQuery{
		SQL:        sql.String(),
		Params:     params,
		Shape:      def.shape,
		Conditions: conditions,
		Order:      q.Order(),
	}
}

func paramName(column string, seen map[string]int) string {
	seen[column]++
	if seen[column] == 1 {
		return column
	}
	return fmt.Sprintf("%s_%d", column, seen[column])
}

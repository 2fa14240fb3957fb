package querybuilder

import (
	"strings"
)

type EntityKind int

const (
	AccountEntity EntityKind = iota + 1
	TransferEntity
)

func (k EntityKind) String() string {
	switch k {
	case AccountEntity:
		return "account"
	case TransferEntity:
		return "transfer"
	default:
		return "unknown"
	}
}

// Field is a whitelisted filter/sort target. Clause is the SQL text the
// comparison is rendered against and Column is the output alias used for
// parameter names and ordering. A non-empty GroupBy marks the field as
// computed by an aggregate, so it must be filtered in HAVING. Nullable
// fields sort their NULLs last in either direction.
type Field struct {
	Name     string
	Column   string
	Clause   string
	GroupBy  string
	Nullable bool
}

func (f Field) Aggregated() bool {
	return f.GroupBy != ""
}

const (
	FieldAccountNumber = "ACCOUNT_NUMBER"
	FieldBalance       = "BALANCE"
	FieldStatus        = "STATUS"
	FieldCurrency      = "CURRENCY"
	FieldSource        = "SOURCE"
	FieldDestination   = "DESTINATION"
	FieldTimestamp     = "TIMESTAMP"
)

// balanceClause is repeated rather than aliased because HAVING cannot see
// output aliases in postgres. The cast gives sqlite numeric comparisons.
const balanceClause = "CAST(COALESCE(SUM(t.amount), 0) AS NUMERIC)"

type entity struct {
	baseQuery string
	groupBy   string
	shape     ResultShape
	fields    []Field
}

var registry = map[EntityKind]entity{
	AccountEntity: {
		baseQuery: "SELECT b.opened_on AS opened_on, b.account_number AS account_number, " +
			"COALESCE(SUM(t.amount), 0) AS balance, b.currency AS currency, b.status AS status " +
			"FROM bank_accounts b LEFT JOIN account_transactions t ON t.account_id = b.id",
		groupBy: "b.id",
		shape:   AccountRows,
		fields: []Field{
			{Name: FieldAccountNumber, Column: "account_number", Clause: "b.account_number"},
			{Name: FieldBalance, Column: "balance", Clause: balanceClause, GroupBy: "b.id"},
			{Name: FieldStatus, Column: "status", Clause: "b.status"},
			{Name: FieldCurrency, Column: "currency", Clause: "b.currency"},
		},
	},
	TransferEntity: {
		baseQuery: "SELECT tr.id AS transfer_id, tr.transferred_at AS transferred_at, " +
			"src.account_number AS source_account_number, dst.account_number AS destination_account_number, " +
			"tr.amount AS amount FROM transfers tr " +
			"LEFT JOIN bank_accounts src ON tr.source_account_id = src.id " +
			"LEFT JOIN bank_accounts dst ON tr.destination_account_id = dst.id",
		groupBy: "tr.id, src.id, dst.id",
		shape:   TransferRows,
		fields: []Field{
			{Name: FieldSource, Column: "source_account_number", Clause: "src.account_number"},
			{Name: FieldDestination, Column: "destination_account_number", Clause: "dst.account_number"},
			{Name: FieldTimestamp, Column: "transferred_at", Clause: "tr.transferred_at", Nullable: true},
		},
	},
}

// aliases maps alternate normalized names onto registry names.
var aliases = map[EntityKind]map[string]string{
	AccountEntity: {
		"IBAN":       FieldAccountNumber,
		"IBANNUMBER": FieldAccountNumber,
	},
}

// Fields returns the whitelist for kind.
func Fields(kind EntityKind) []Field {
	fields := registry[kind].fields
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// FieldByName resolves a field of kind. Matching ignores case and
// underscores, so "accountNumber" and "ACCOUNT_NUMBER" are the same field.
// "IBAN" and "ibanNumber" also resolve to ACCOUNT_NUMBER.
func FieldByName(kind EntityKind, name string) (Field, bool) {
	wanted := normalizeName(name)
	if target, ok := aliases[kind][wanted]; ok {
		wanted = normalizeName(target)
	}
	for _, field := range registry[kind].fields {
		if normalizeName(field.Name) == wanted {
			return field, true
		}
	}
	return Field{}, false
}

func isWhitelisted(kind EntityKind, field Field) bool {
	for _, candidate := range registry[kind].fields {
		if candidate == field {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}

package store

import (
	"fmt"
	"strings"
)

// Kind names one ledger table.
type Kind string

// Ledger table kinds, in display order.
const (
	KindIncome  Kind = "income"
	KindFixed   Kind = "fixed"
	KindEMI     Kind = "emi"
	KindExpense Kind = "expense"
	KindLoan    Kind = "loan"
	KindCard    Kind = "card"
	KindSavings Kind = "savings"
)

// Kinds lists every table kind.
var Kinds = []Kind{KindIncome, KindFixed, KindEMI, KindExpense, KindLoan, KindCard, KindSavings}

var tableNames = map[Kind]string{
	KindIncome:  "income",
	KindFixed:   "fixed_expenses",
	KindEMI:     "installment_plans",
	KindExpense: "variable_expenses",
	KindLoan:    "loans",
	KindCard:    "credit_cards",
	KindSavings: "savings",
}

var kindAliases = map[string]Kind{
	"incomes":        KindIncome,
	"fixed-expense":  KindFixed,
	"fixed-expenses": KindFixed,
	"emis":           KindEMI,
	"plan":           KindEMI,
	"plans":          KindEMI,
	"expenses":       KindExpense,
	"loans":          KindLoan,
	"cards":          KindCard,
	"credit-card":    KindCard,
	"credit-cards":   KindCard,
}

// ParseKind resolves a user-supplied table name, accepting plurals.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := tableNames[Kind(s)]; ok {
		return Kind(s), nil
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown table %q (want one of %s)", s, kindList())
}

func (k Kind) table() string { return tableNames[k] }

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

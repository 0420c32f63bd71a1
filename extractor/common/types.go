package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Bank identifies which statement layout a document follows.
type Bank string

const (
	BankMuscat Bank = "BANK_MUSCAT"
	BankDhofar Bank = "BANK_DHOFAR"
	OAB        Bank = "OAB"
)

// Banks lists every supported bank in display order.
var Banks = []Bank{BankMuscat, BankDhofar, OAB}

var displayNames = map[Bank]string{
	BankMuscat: "Bank Muscat",
	BankDhofar: "Bank Dhofar",
	OAB:        "OAB Bank",
}

func (b Bank) String() string {
	return string(b)
}

// DisplayName is the human readable bank name.
func (b Bank) DisplayName() string {
	if name, ok := displayNames[b]; ok {
		return name
	}
	return string(b)
}

// ParseBank accepts either the bank key ("BANK_MUSCAT") or its display name
// ("Bank Muscat"), ignoring case, spaces and dashes.
func ParseBank(s string) (Bank, error) {
	norm := bankKey(s)
	for _, b := range Banks {
		if norm == bankKey(string(b)) || norm == bankKey(b.DisplayName()) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bank %q", s)
}

func bankKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// Table is a normalized transaction table. Every row has len(Columns) cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table holds no usable data.
func (t Table) Empty() bool {
	return len(t.Columns) == 0 || len(t.Rows) == 0
}

// Records returns the header followed by the rows.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Columns)
	return append(out, t.Rows...)
}

// Column returns the index of the named column, or -1.
func (t Table) Column(name string) int {
	want := NormalizeHeader(name)
	for i, c := range t.Columns {
		if NormalizeHeader(c) == want {
			return i
		}
	}
	return -1
}

// LedgerColumns names the columns used to total a statement. Empty names
// mean the bank's layout has no such column.
type LedgerColumns struct {
	Debit   string
	Credit  string
	Balance string
}

func (l LedgerColumns) IsZero() bool {
	return l.Debit == "" && l.Credit == "" && l.Balance == ""
}

type Summary struct {
	Rows           int             `json:"rows"`
	TotalDebit     decimal.Decimal `json:"total_debit"`
	TotalCredit    decimal.Decimal `json:"total_credit"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// Outcome is the terminal state of processing one document.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeNoData    Outcome = "no_data"
	OutcomeNoAccount Outcome = "no_account"
)

// Message is the user facing text for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeNoData:
		return "No data to display."
	case OutcomeNoAccount:
		return "Account Number not found."
	}
	return ""
}

type Statement struct {
	Bank          Bank     `json:"bank"`
	Source        string   `json:"source"`
	Checksum      string   `json:"checksum"`
	AccountNumber string   `json:"account_number,omitempty"`
	Outcome       Outcome  `json:"outcome"`
	Table         Table    `json:"table"`
	Summary       *Summary `json:"summary,omitempty"`
}

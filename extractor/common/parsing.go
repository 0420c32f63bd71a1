package common

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonNumericRegex = regexp.MustCompile(`[^0-9.]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// CleanDecimal parses a string into a decimal.Decimal, removing non-numeric characters
func CleanDecimal(text string) (decimal.Decimal, error) {
	cleanText := nonNumericRegex.ReplaceAllString(text, "")
	if cleanText == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(cleanText)
	if err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// NormalizeHeader collapses runs of whitespace (including the line breaks
// detectors leave in wrapped headers) and trims the result.
func NormalizeHeader(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// CompileAccountPatterns compiles account number patterns in multi-line
// mode. Each pattern must capture the number in its first group.
func CompileAccountPatterns(exprs []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile("(?m)" + expr)
		if err != nil {
			return nil, fmt.Errorf("account pattern %q: %w", expr, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("account pattern %q has no capturing group", expr)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// FindAccountNumber tries each pattern in order against the whole text and
// returns the first group of the first one that matches.
func FindAccountNumber(text string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if match := re.FindStringSubmatch(text); match != nil && len(match) > 1 {
			return match[1], true
		}
	}
	return "", false
}

// Summarize totals the ledger columns of a table. Unparseable cells count as
// zero; a missing column leaves its total at zero.
func Summarize(t Table, cols LedgerColumns) Summary {
	s := Summary{
		Rows:           len(t.Rows),
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		ClosingBalance: decimal.Zero,
	}

	debit, credit, balance := -1, -1, -1
	if cols.Debit != "" {
		debit = t.Column(cols.Debit)
	}
	if cols.Credit != "" {
		credit = t.Column(cols.Credit)
	}
	if cols.Balance != "" {
		balance = t.Column(cols.Balance)
	}

	for _, row := range t.Rows {
		if debit >= 0 {
			amount, _ := CleanDecimal(row[debit])
			s.TotalDebit = s.TotalDebit.Add(amount)
		}
		if credit >= 0 {
			amount, _ := CleanDecimal(row[credit])
			s.TotalCredit = s.TotalCredit.Add(amount)
		}
		if balance >= 0 && strings.TrimSpace(row[balance]) != "" {
			if amount, err := CleanDecimal(row[balance]); err == nil {
				s.ClosingBalance = amount
			}
		}
	}

	return s
}

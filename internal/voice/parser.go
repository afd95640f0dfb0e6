// Package voice turns raw speech transcripts into expense entries. The
// grammar is deliberately crude: the first number in the transcript is the
// amount, the first category keyword decides the category.
package voice

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"homebudget/internal/core"
)

var (
	ErrNoAmount   = errors.New("no amount found in transcript")
	ErrNoCategory = errors.New("no category keyword found in transcript")
)

var amountPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// ParsedExpense is the expense a transcript resolves to, before validation
// against the live budget.
type ParsedExpense struct {
	Amount      float64
	CategoryID  string
	Description string
}

// Parse extracts an expense from a transcript using the given keyword table
// (category id -> trigger words). Keyword matching is case-insensitive and
// scans category ids in sorted order, so a transcript mentioning several
// categories always resolves the same way.
func Parse(transcript string, keywords map[string][]string) (ParsedExpense, error) {
	match := amountPattern.FindString(transcript)
	if match == "" {
		return ParsedExpense{}, ErrNoAmount
	}
	amount, err := strconv.ParseFloat(match, 64)
	if err != nil || amount <= 0 {
		return ParsedExpense{}, ErrNoAmount
	}

	lower := strings.ToLower(transcript)

	ids := make([]string, 0, len(keywords))
	for id := range keywords {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, kw := range keywords[id] {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return ParsedExpense{
					Amount:      amount,
					CategoryID:  id,
					Description: fmt.Sprintf("Voice entry: %q", transcript),
				}, nil
			}
		}
	}
	return ParsedExpense{}, ErrNoCategory
}

// DefaultKeywords returns the keyword table for the stock template budget.
func DefaultKeywords() map[string][]string {
	return core.DefaultCategoryKeywords()
}

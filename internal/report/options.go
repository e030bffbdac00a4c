// Package report selects, summarizes and exports records as Excel
// workbooks and PDF documents.
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/vatflow/internal/model"
)

// Kind identifies a report.
type Kind string

// Report kinds.
const (
	KindFull         Kind = "full"
	KindTop100Amount Kind = "top100amount"
	KindTop100VAT    Kind = "top100vat"
	KindVerified     Kind = "verified"
	KindFlagged      Kind = "flagged"
)

const topN = 100

// Option is a named record selection.
type Option struct {
	Select      func([]model.Record) []model.Record
	Kind        Kind
	Title       string
	Description string
}

// Options returns every report in display order.
func Options() []Option {
	return []Option{
		{
			Kind:        KindFull,
			Title:       "Full Report",
			Description: "Every record in the data set",
			Select:      func(recs []model.Record) []model.Record { return recs },
		},
		{
			Kind:        KindTop100Amount,
			Title:       "Top 100 by Amount",
			Description: "The 100 largest transactions by amount",
			Select: func(recs []model.Record) []model.Record {
				return top(recs, func(a, b model.Record) int { return b.Amount.Cmp(a.Amount) })
			},
		},
		{
			Kind:        KindTop100VAT,
			Title:       "Top 100 by VAT",
			Description: "The 100 largest transactions by VAT",
			Select: func(recs []model.Record) []model.Record {
				return top(recs, func(a, b model.Record) int { return b.VAT.Cmp(a.VAT) })
			},
		},
		{
			Kind:        KindVerified,
			Title:       "Verification Report",
			Description: "Records awaiting client verification and records already verified",
			Select: func(recs []model.Record) []model.Record {
				return filter(recs, func(r model.Record) bool {
					return r.Status == model.StatusClientToVerify || r.Status == model.StatusVerified
				})
			},
		},
		{
			Kind:        KindFlagged,
			Title:       "Flagged Records",
			Description: "Records still to verify or from suppliers not VAT registered",
			Select: func(recs []model.Record) []model.Record {
				return filter(recs, func(r model.Record) bool { return r.Status.Flagged() })
			},
		},
	}
}

// Lookup finds a report by kind.
func Lookup(kind string) (Option, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(kind)))
	for _, opt := range Options() {
		if opt.Kind == k {
			return opt, nil
		}
	}
	return Option{}, fmt.Errorf("unknown report %q", kind)
}

// top returns the first topN records after a stable sort; ties keep their
// input order.
func top(recs []model.Record, cmp func(a, b model.Record) int) []model.Record {
	sorted := slices.Clone(recs)
	slices.SortStableFunc(sorted, cmp)
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}

func filter(recs []model.Record, keep func(model.Record) bool) []model.Record {
	out := make([]model.Record, 0, len(recs))
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

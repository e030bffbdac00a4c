package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/vatflow/internal/model"
)

// Summary holds the dashboard totals for a set of records.
type Summary struct {
	ByStatus map[model.VerificationStatus]int
	Amount   decimal.Decimal
	VAT      decimal.Decimal
	Total    int
	Unknown  int
}

// Summarize counts records per status and sums their amounts.
func Summarize(records []model.Record) Summary {
	s := Summary{
		ByStatus: make(map[model.VerificationStatus]int, len(model.Statuses())),
		Amount:   decimal.Zero,
		VAT:      decimal.Zero,
		Total:    len(records),
	}
	for _, st := range model.Statuses() {
		s.ByStatus[st] = 0
	}
	for _, r := range records {
		if r.Status.Known() {
			s.ByStatus[r.Status]++
		} else {
			s.Unknown++
		}
		s.Amount = s.Amount.Add(r.Amount)
		s.VAT = s.VAT.Add(r.VAT)
	}
	return s
}

// Window is a dashboard time range.
type Window string

// Dashboard windows.
const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// Bucket is one bar of an activity chart. Records sums the record counts
// of the imports that fall in it.
type Bucket struct {
	Label   string
	Imports int
	Records int
}

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Activity buckets import volume for a window ending at now. The day
// window has 24 hourly buckets and the week window 7 daily ones, oldest
// first. The month (last 30 days) and year (last 365 days) windows both
// use 12 calendar-month buckets, January first.
func Activity(manifests []model.ImportManifest, window Window, now time.Time) []Bucket {
	var (
		buckets []Bucket
		span    time.Duration
		index   func(t time.Time) int
	)

	switch window {
	case WindowDay:
		span = 24 * time.Hour
		buckets = make([]Bucket, 24)
		for i := range buckets {
			buckets[i].Label = now.Add(-time.Duration(23-i) * time.Hour).Format("15:00")
		}
		index = func(t time.Time) int { return 23 - int(now.Sub(t)/time.Hour) }
	case WindowWeek:
		span = 7 * 24 * time.Hour
		buckets = make([]Bucket, 7)
		for i := range buckets {
			buckets[i].Label = now.AddDate(0, 0, -(6 - i)).Format("Mon")
		}
		index = func(t time.Time) int { return 6 - int(now.Sub(t)/(24*time.Hour)) }
	default:
		span = 365 * 24 * time.Hour
		if window == WindowMonth {
			span = 30 * 24 * time.Hour
		}
		buckets = make([]Bucket, 12)
		for i := range buckets {
			buckets[i].Label = monthLabels[i]
		}
		index = func(t time.Time) int { return int(t.In(now.Location()).Month()) - 1 }
	}

	cutoff := now.Add(-span)
	for _, m := range manifests {
		if m.ImportedAt.Before(cutoff) || m.ImportedAt.After(now) {
			continue
		}
		i := index(m.ImportedAt)
		if i < 0 || i >= len(buckets) {
			continue
		}
		buckets[i].Imports++
		buckets[i].Records += m.RecordCount
	}
	return buckets
}

// Recent returns up to n manifests, which callers pass newest first.
func Recent(manifests []model.ImportManifest, n int) []model.ImportManifest {
	if len(manifests) > n {
		return manifests[:n]
	}
	return manifests
}

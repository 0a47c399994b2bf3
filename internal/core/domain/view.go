package domain

import (
	"strings"
	"time"
)

const (
	// TypeAll is the type filter that matches every record
	TypeAll = "all"

	LabelToday     = "Today"
	LabelYesterday = "Yesterday"

	// LongDateLayout labels buckets older than yesterday, e.g. "September 3, 2024"
	LongDateLayout = "January 2, 2006"

	// DateFilterLayout is the calendar date format accepted by the date filter
	DateFilterLayout = "2006-01-02"
)

// FilterOptions holds the three conjunctive predicates of a catalog view
type FilterOptions struct {
	Search   string         // case-insensitive substring of the name; empty matches all
	Type     string         // TypeAll (or empty) or a primary mime category such as "image"
	Date     string         // YYYY-MM-DD local calendar date; empty matches all
	Location *time.Location // calendar used for Date; nil means time.Local
}

// Bucket is a named group of records sharing a display date label
type Bucket struct {
	Label   string
	Records []FileRecord
}

// Filter returns the records matching all predicates, preserving input order.
// The input slice is never modified.
func Filter(records []FileRecord, opts FilterOptions) []FileRecord {
	search := strings.ToLower(opts.Search)
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	result := make([]FileRecord, 0, len(records))
	for _, rec := range records {
		if search != "" && !strings.Contains(strings.ToLower(rec.Name), search) {
			continue
		}
		if opts.Type != "" && opts.Type != TypeAll && !strings.HasPrefix(rec.MimeType, opts.Type) {
			continue
		}
		if opts.Date != "" && rec.UploadedAt.In(loc).Format(DateFilterLayout) != opts.Date {
			continue
		}
		result = append(result, rec)
	}
	return result
}

// GroupByDate partitions records into buckets labelled relative to now.
// Bucket order follows the first occurrence of each label in the input.
func GroupByDate(records []FileRecord, now time.Time) []Bucket {
	return GroupByDateLayout(records, now, LongDateLayout)
}

// GroupByDateLayout is GroupByDate with a custom layout for older dates
func GroupByDateLayout(records []FileRecord, now time.Time, layout string) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)

	for _, rec := range records {
		label := DateLabelLayout(rec.UploadedAt, now, layout)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[i].Records = append(buckets[i].Records, rec)
	}
	return buckets
}

// DateLabel returns the bucket label for t relative to now.
// Both are compared as calendar days in now's location.
func DateLabel(t, now time.Time) string {
	return DateLabelLayout(t, now, LongDateLayout)
}

// DateLabelLayout is DateLabel with a custom layout for older dates
func DateLabelLayout(t, now time.Time, layout string) string {
	if layout == "" {
		layout = LongDateLayout
	}
	local := t.In(now.Location())

	y, m, d := now.Date()
	yesterday := time.Date(y, m, d-1, 0, 0, 0, 0, now.Location())

	switch {
	case sameDay(local, now):
		return LabelToday
	case sameDay(local, yesterday):
		return LabelYesterday
	default:
		return local.Format(layout)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AvailableTypes returns TypeAll followed by each distinct primary mime
// category in first-seen order.
func AvailableTypes(records []FileRecord) []string {
	types := []string{TypeAll}
	seen := make(map[string]bool)

	for _, rec := range records {
		primary := rec.PrimaryType()
		if seen[primary] {
			continue
		}
		seen[primary] = true
		types = append(types, primary)
	}
	return types
}

// ParseDateFilter validates a date filter value. Empty is valid.
func ParseDateFilter(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(DateFilterLayout, value); err != nil {
		return "", ErrInvalidDate
	}
	return value, nil
}

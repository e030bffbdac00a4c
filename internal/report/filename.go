package report

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases title and joins runs of other characters with "-".
func Slug(title string) string {
	return nonSlug.ReplaceAllString(strings.ToLower(title), "-")
}

// FileName is the export name for a report: slug-YYYY-MM-DD.ext.
func FileName(title, ext string, at time.Time) string {
	return Slug(title) + "-" + at.Format(dateLayout) + "." + strings.TrimPrefix(ext, ".")
}

// HistoryFileName is the export name for one past import.
func HistoryFileName(filename string, at time.Time) string {
	return filename + "-" + at.Format(dateLayout) + ".xlsx"
}

package article

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases title, joins ASCII letter and digit runs with '-'
// and appends the millisecond timestamp of now. Titles without any ASCII
// alphanumerics use "article" as the stem.
func Slugify(title string, now time.Time) string {
	stem := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	stem = strings.Trim(stem, "-")
	if stem == "" {
		stem = "article"
	}
	return stem + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultNamePrefix is the brand token used in canonical quote names
const DefaultNamePrefix = "ARCS"

// DefaultFilenameLength is the maximum length of a suggested export filename
const DefaultFilenameLength = 120

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// NameFormatter derives canonical quote names
type NameFormatter struct {
	Prefix string
	// Now supplies the fallback date when a quote has no creation time
	Now func() time.Time
}

// NewNameFormatter creates a formatter for the given prefix
func NewNameFormatter(prefix string) NameFormatter {
	return NameFormatter{Prefix: prefix, Now: time.Now}
}

// Normalize returns "<prefix> YYYY-MM-DD", suffixed with " [PO:<po>]" when a PO number is set.
// An unparseable creation time degrades to its first ten characters; a missing one to today.
func (f NameFormatter) Normalize(q *Quote) string {
	name := fmt.Sprintf("%s %s", prefixOrDefault(f.Prefix), f.dateString(q))
	if q.PONumber != "" {
		name = fmt.Sprintf("%s [PO:%s]", name, q.PONumber)
	}
	return name
}

func (f NameFormatter) dateString(q *Quote) string {
	if strings.TrimSpace(q.CreatedAt) == "" {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		return now().UTC().Format("2006-01-02")
	}
	if t, ok := q.CreatedTime(); ok {
		return t.Format("2006-01-02")
	}
	if len(q.CreatedAt) > 10 {
		return q.CreatedAt[:10]
	}
	return q.CreatedAt
}

// NormalizeQuoteName applies the default formatter
func NormalizeQuoteName(q *Quote) string {
	return NewNameFormatter(DefaultNamePrefix).Normalize(q)
}

// SafeFilename replaces every character outside [A-Za-z0-9._-] with '_' and
// truncates to maxLen characters. A non-positive maxLen uses DefaultFilenameLength.
func SafeFilename(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultFilenameLength
	}
	out := unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return DefaultNamePrefix
	}
	return prefix
}

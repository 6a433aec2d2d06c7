// Package dateutils provides the date parsing used for bank statement rows.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted in bank rows
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutBank     = "02/01/2006"
	DateLayoutDashed   = "02-01-2006"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// CommonFormats lists the layouts ParseDate tries, in order. Day-first
// layouts come before any month-first reading.
var CommonFormats = []string{
	DateLayoutBank,
	DateLayoutISO,
	DateLayoutDashed,
	DateLayoutEuropean,
	DateLayoutFull,
	"2006/01/02",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDate attempts to parse a date string using CommonFormats.
// Returns the parsed time and the detected format.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString trims a date string and squeezes inner whitespace
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

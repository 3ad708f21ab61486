// Package helpers formats backend values for display in the dashboard pages and the CLI.
package helpers

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// FormatNumber adds thousands separators (1234 -> "1,234")
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent formats a rate already expressed as a percentage (87.5 -> "88%")
func FormatPercent(rate float64) string {
	return printer.Sprintf("%.0f%%", rate)
}

// Label turns backend enum values into labels ("ALL_TIME" -> "All Time")
func Label(value string) string {
	if value == "" {
		return ""
	}
	return titler.String(strings.ToLower(strings.ReplaceAll(value, "_", " ")))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// FormatDate formats an ISO 8601 timestamp from the backend. Unparseable values are returned unchanged.
func FormatDate(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if layout == time.DateOnly {
			return t.Format("Mon 2 Jan 2006")
		}
		return t.Format("Mon 2 Jan 2006, 15:04")
	}
	return value
}

// Ordinal formats a leaderboard rank (1 -> "1st", 12 -> "12th", 23 -> "23rd")
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Initials returns up to two upper case initials for an avatar, with diacritics removed ("Ásha Rao" -> "AR")
func Initials(name string) string {
	plain, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		plain = name
	}

	var initials []rune
	for _, word := range strings.Fields(plain) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				initials = append(initials, unicode.ToUpper(r))
				break
			}
		}
		if len(initials) == 2 {
			break
		}
	}
	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}

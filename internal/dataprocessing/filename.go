package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReportDate is returned when no candidate pattern yields an 8-digit
// date token from the statement identifier.
var ErrReportDate = errors.New("report date could not be extracted")

// datePatterns lists the candidate extractions in the order they are tried.
// Each receives the dot-separated segments of the identifier.
var datePatterns = []func(parts []string) (string, bool){
	// daily_csv_20250116.csv
	func(parts []string) (string, bool) {
		tokens := strings.Split(parts[0], "_")
		return tokens[len(tokens)-1], true
	},
	// daily_csv.1641291.20250116.csv
	func(parts []string) (string, bool) {
		if len(parts) < 3 {
			return "", false
		}
		return parts[2], true
	},
	// daily_csv.20250116.csv
	func(parts []string) (string, bool) {
		if len(parts) < 2 {
			return "", false
		}
		return parts[1], true
	},
}

// ResolveReportDate extracts the 8-digit YYYYMMDD report date from a
// filename-like identifier, trying each known naming pattern in order.
func ResolveReportDate(identifier string) (string, error) {
	parts := strings.Split(identifier, ".")
	for _, pattern := range datePatterns {
		candidate, ok := pattern(parts)
		if ok && isDateToken(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w from identifier %q", ErrReportDate, identifier)
}

func isDateToken(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

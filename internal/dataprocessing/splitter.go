package dataprocessing

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"ibkrcli/pkg/contracts/domain"
)

// SplitStatement splits a raw statement document into named sections and
// parses each one as an independent CSV block.
//
// Every line carries its section label in the first field: either quoted
// (labels containing commas) or plain text up to the first comma. The
// remainder of the line, label and delimiter stripped, is buffered per
// section in original order. The first buffered line of a section is its
// header.
//
// A section whose lines do not form a consistent CSV block is dropped and
// reported as a warning rather than failing the document.
func SplitStatement(r io.Reader) (map[string]domain.Table, []domain.Warning, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	order := make([]string, 0, 8)
	buffered := make(map[string][]string)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		name, rest := splitLabel(line)
		if _, seen := buffered[name]; !seen {
			order = append(order, name)
		}
		buffered[name] = append(buffered[name], rest)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading statement: %w", err)
	}

	sections := make(map[string]domain.Table, len(buffered))
	var warnings []domain.Warning
	for _, name := range order {
		table, err := parseSection(name, buffered[name])
		if err != nil {
			warnings = append(warnings, domain.Warning{
				Stage:   "split",
				Section: name,
				Detail:  err.Error(),
			})
			continue
		}
		sections[name] = table
	}
	return sections, warnings, nil
}

// splitLabel separates a line into its section label and the remainder of
// the line with the label and its delimiter removed.
func splitLabel(line string) (name, rest string) {
	if strings.HasPrefix(line, `"`) {
		if end := strings.Index(line[1:], `"`); end >= 0 {
			name = line[1 : end+1]
			rest = line[end+2:]
			rest = strings.TrimPrefix(rest, ",")
			return name, rest
		}
	}
	if i := strings.Index(line, ","); i >= 0 {
		return line[:i], line[i+1:]
	}
	return line, ""
}

// parseSection parses a section's buffered lines as a CSV block whose first
// line is the header.
func parseSection(name string, lines []string) (domain.Table, error) {
	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	records, err := reader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("section %q is not tabular: %w", name, err)
	}
	if len(records) == 0 {
		return domain.Table{}, fmt.Errorf("section %q has no header", name)
	}
	return domain.Table{
		Name:    name,
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

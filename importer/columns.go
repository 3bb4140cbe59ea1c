package importer

import (
	"strconv"
	"strings"
)

// columnNames turns a header row into unique field names. Blank headers
// become "Unnamed: <index>"; repeats get ".1", ".2", ... suffixes.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "Unnamed: " + strconv.Itoa(i)
		}
		name := base
		for n := 1; used[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

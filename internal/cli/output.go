package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/user/skillgen-service/internal/usecase"
)

const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTable = "table"

	maxCellWidth = 60
)

func validateFormat(format string) error {
	switch format {
	case FormatYAML, FormatJSON, FormatTable:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, FormatYAML, FormatJSON, FormatTable)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		header, rows, ok := tableFor(v)
		if !ok {
			return fmt.Errorf("%T cannot be printed as a table", v)
		}
		_, err := io.WriteString(w, renderTable(header, rows))
		return err
	}
	return validateFormat(format)
}

// tableFor lists one row per skill. Content is left out; use yaml or json to see it.
func tableFor(v any) ([]string, [][]string, bool) {
	switch out := v.(type) {
	case generateOutput:
		rows := make([][]string, 0, len(out.Skills))
		for _, s := range out.Skills {
			rows = append(rows, []string{s.ID, s.Name, s.Description})
		}
		return []string{"ID", "NAME", "DESCRIPTION"}, rows, true
	case *usecase.PreviewResult:
		rows := make([][]string, 0, len(out.Skills))
		for i, s := range out.Skills {
			rows = append(rows, []string{fmt.Sprint(i + 1), s.Name, s.Description})
		}
		return []string{"#", "NAME", "DESCRIPTION"}, rows, true
	}
	return nil, nil, false
}

// renderTable aligns columns by display width so wide runes line up.
func renderTable(header []string, rows [][]string) string {
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, header)
	for _, row := range rows {
		clipped := make([]string, len(row))
		for i, c := range row {
			c = strings.Join(strings.Fields(c), " ")
			clipped[i] = runewidth.Truncate(c, maxCellWidth, "…")
		}
		cells = append(cells, clipped)
	}

	widths := make([]int, len(header))
	for _, row := range cells {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for _, row := range cells {
		for i := range widths {
			content := ""
			if i < len(row) {
				content = row[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(content)
				break
			}
			sb.WriteString(runewidth.FillRight(content, widths[i]+2))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

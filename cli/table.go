package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kjk/records/recordstore"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// FormatValue formats a field value for display
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	}
	return fmt.Sprint(v)
}

// short form of record id for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RecordsTable renders records with their 1-based position, field values
// in schema order and a shortened id
func RecordsTable[T any](kind *recordstore.Kind[T], recs []recordstore.Record[T], positions []int) string {
	headers := []string{"#"}
	for _, name := range kind.FieldNames() {
		headers = append(headers, fieldLabel(name))
	}
	headers = append(headers, "ID")

	rows := make([][]string, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		pos := i
		if positions != nil {
			pos = positions[i]
		}
		row := []string{strconv.Itoa(pos + 1)}
		for _, v := range kind.Values(&rec.Value) {
			row = append(row, FormatValue(v))
		}
		row = append(row, shortID(rec.ID))
		rows = append(rows, row)
	}
	return RenderTable(headers, rows)
}

package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/willibrandon/nugetcatalog/catalog"
)

const defaultTableWidth = 120

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable renders c as a bordered table sized to w.
func WriteTable(w io.Writer, c catalog.Catalog) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Width(TerminalWidth(w, defaultTableWidth)).
		Headers("PACKAGE", "ICON", "DETAILS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range c {
		t.Row(r.Name, r.IconURI, r.DetailsURI)
	}
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

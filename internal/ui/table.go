package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mydehq/otr/internal/types"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// PlanTable renders a rename plan: source, target and status
func PlanTable(ops []types.RenameOperation) string {
	rows := make([][]string, 0, len(ops))
	for i, op := range ops {
		target := filepath.Base(op.TargetPath)
		status := string(op.Status)
		if op.Status == types.StatusFailed {
			target = op.Kind
			status = StyleFlag.Render(status)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			filepath.Base(op.SourcePath),
			target,
			status,
		})
	}
	return renderTable(
		[]string{"#", "File", "New name", "Status"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

// CompactPlan renders one "old --> new" line per operation
func CompactPlan(ops []types.RenameOperation) string {
	var b strings.Builder
	for _, op := range ops {
		src := filepath.Base(op.SourcePath)
		switch op.Status {
		case types.StatusFailed:
			fmt.Fprintf(&b, "%s --> %s\n", StylePath.Render(src), StyleFlag.Render(op.Kind+": "+op.Error))
		case types.StatusSkipped:
			fmt.Fprintf(&b, "%s --> %s\n", StylePath.Render(src), StyleUnchanged.Render(src))
		default:
			fmt.Fprintf(&b, "%s --> %s\n", StylePath.Render(src), StyleHeader.Render(filepath.Base(op.TargetPath)))
		}
	}
	return b.String()
}

// Show is a catalog listing row
type Show struct {
	ID       int
	Title    string
	Aliases  int
	Episodes int
}

// CatalogTable renders the catalog listing
func CatalogTable(shows []Show) string {
	rows := make([][]string, 0, len(shows))
	for _, s := range shows {
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Title,
			strconv.Itoa(s.Aliases),
			strconv.Itoa(s.Episodes),
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Aliases", "Episodes"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
	)
}

// EpisodeTable renders one show's episodes, title variants joined by " / "
func EpisodeTable(episodes []types.EpisodeRecord) string {
	rows := make([][]string, 0, len(episodes))
	for _, ep := range episodes {
		num := ""
		if ep.Number > 0 {
			num = strconv.Itoa(ep.Number)
		}
		rows = append(rows, []string{num, ep.Date.String(), strings.Join(ep.Titles, " / ")})
	}
	return renderTable(
		[]string{"#", "Aired", "Title"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	)
}

// BackupTable renders the backup registry
func BackupTable(records []types.BackupRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.SourceDir, r.Timestamp.Format("2006-01-02 15:04")})
	}
	return renderTable([]string{"Directory", "Created"}, rows, nil)
}

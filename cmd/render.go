package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

type tone int

const (
	toneInfo tone = iota
	toneOK
	toneWarn
	toneError
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 || len(rows) == 0 {
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
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toneColors(t tone) text.Colors {
	switch t {
	case toneOK:
		return text.Colors{text.FgGreen}
	case toneWarn:
		return text.Colors{text.FgYellow}
	case toneError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

// printer writes the human readable report, colouring only terminals.
type printer struct {
	w        io.Writer
	colorize bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, colorize: shouldColorize(w)}
}

func (p *printer) section(t tone, title string, count int) {
	line := fmt.Sprintf("== %s (%d) ==", strings.TrimSpace(title), count)
	if p.colorize {
		line = toneColors(t).Sprint(line)
	}
	fmt.Fprintln(p.w, line)
}

func (p *printer) line(t tone, format string, args ...any) {
	s := "  " + fmt.Sprintf(format, args...)
	if p.colorize {
		s = toneColors(t).Sprint(s)
	}
	fmt.Fprintln(p.w, s)
}

func (p *printer) table(headers []string, rows [][]string, aligns ...columnAlignment) {
	if out := renderTable(headers, rows, aligns); out != "" {
		fmt.Fprintln(p.w, out)
	}
}

func (p *printer) blank() {
	fmt.Fprintln(p.w)
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

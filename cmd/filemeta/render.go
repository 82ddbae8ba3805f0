package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/filemeta/internal/core"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#01FAC6")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(13)
)

// renderSummary prints the layout of one file followed by its field table.
func renderSummary(w io.Writer, m *core.FileMetadata) {
	fmt.Fprintln(w, titleStyle.Render(m.FileName))

	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(label), value)
	}
	row("charset", m.Charset)
	row("delimiter", displayChar(m.Delimiter))
	row("enclosure", displayChar(m.Enclosure))
	row("header", yesNo(m.HasHeader))
	row("bad headers", strconv.Itoa(m.BadHeaders))
	row("bad footers", strconv.Itoa(m.BadFooters))
	row("data lines", strconv.Itoa(m.DataLines))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tNAME\tTYPE\tLENGTH\tPRECISION\tFORMAT")
	for i, f := range m.Fields {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, f.Name, f.Type, optionalInt(f.Length), optionalInt(f.Precision), fieldFormat(f))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func displayChar(s string) string {
	switch s {
	case "":
		return "none"
	case "\t":
		return "tab"
	case " ":
		return "space"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// optionalInt renders -1 as a dash.
func optionalInt(n int) string {
	if n < 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func fieldFormat(f core.FieldMeta) string {
	out := f.ConversionMask
	if f.DecimalSymbol != "" {
		out += fmt.Sprintf(" (decimal %q", f.DecimalSymbol)
		if f.GroupingSymbol != "" {
			out += fmt.Sprintf(", grouping %q", f.GroupingSymbol)
		}
		out += ")"
	}
	if out == "" {
		return "-"
	}
	return out
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// renderTable prints a bordered table. Column widths are content-sized with
// runewidth (window titles routinely carry wide runes); when the table would
// exceed the terminal width the widest column is truncated to fit.
// rightAlign marks numeric columns.
func (f *Formatter) renderTable(headers []string, rows [][]string, rightAlign map[int]bool) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	f.fitWidths(widths)

	f.printBorder(widths, "top")
	f.printRow(headers, widths, nil)
	f.printBorder(widths, "middle")
	for _, row := range rows {
		f.printRow(row, widths, rightAlign)
	}
	f.printBorder(widths, "bottom")
}

// fitWidths shrinks the widest column until the table fits the terminal.
func (f *Formatter) fitWidths(widths []int) {
	const minColumnWidth = 6

	total := func() int {
		// Per column: two padding spaces and one border, plus the closing border.
		sum := 1
		for _, w := range widths {
			sum += w + 3
		}
		return sum
	}

	for total() > f.width {
		widest, at := 0, -1
		for i, w := range widths {
			if w > widest {
				widest, at = w, i
			}
		}
		if at < 0 || widths[at] <= minColumnWidth {
			return
		}
		widths[at]--
	}
}

func (f *Formatter) printBorder(widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	fmt.Fprint(f.w, left)
	for i, width := range widths {
		fmt.Fprint(f.w, strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			fmt.Fprint(f.w, middle)
		}
	}
	fmt.Fprintln(f.w, right)
}

func (f *Formatter) printRow(values []string, widths []int, rightAlign map[int]bool) {
	fmt.Fprint(f.w, "│")
	for i, value := range values {
		cell := value
		if runewidth.StringWidth(cell) > widths[i] {
			cell = runewidth.Truncate(cell, widths[i], "…")
		}
		pad := widths[i] - runewidth.StringWidth(cell)
		if pad < 0 {
			pad = 0
		}
		if rightAlign[i] {
			fmt.Fprintf(f.w, " %s%s │", strings.Repeat(" ", pad), cell)
		} else {
			fmt.Fprintf(f.w, " %s%s │", cell, strings.Repeat(" ", pad))
		}
	}
	fmt.Fprintln(f.w)
}

// Package render draws slot counts as text charts.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/xtding233/galton-board/internal/galton"
)

// barLength scales v against max to at most size cells, rounding to nearest.
// An empty run (max == 0) draws nothing.
func barLength(v, max uint64, size int) int {
	if max == 0 {
		return 0
	}
	return int(float64(v)/float64(max)*float64(size) + 0.5)
}

// percent is v's share of total, 0 when nothing landed.
func percent(v, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(v) / float64(total) * 100
}

// Vertical draws one column per slot, height rows tall, the fullest slot
// reaching the top row.
func Vertical(counts galton.SlotCounts, height int) string {
	max := counts.Max()
	heights := make([]int, len(counts))
	for i, v := range counts {
		heights[i] = barLength(v, max, height)
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for _, h := range heights {
			if height-y <= h {
				b.WriteString("| ")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Horizontal draws one '#' bar per slot followed by its count and share.
func Horizontal(counts galton.SlotCounts, width int) string {
	max, total := counts.Max(), counts.Total()
	var b strings.Builder
	for _, v := range counts {
		fmt.Fprintf(&b, "%s | %d, %f%%\n", strings.Repeat("#", barLength(v, max, width)), v, percent(v, total))
	}
	return b.String()
}

// Columns lists each slot's count and share, one line per slot.
func Columns(counts galton.SlotCounts) string {
	total := counts.Total()
	var b strings.Builder
	for i, v := range counts {
		fmt.Fprintf(&b, "Column %d | %d, %f%%\n", i, v, percent(v, total))
	}
	return b.String()
}

// Table writes the per-slot listing as a bordered table.
func Table(w io.Writer, counts galton.SlotCounts) error {
	total := counts.Total()
	table := tablewriter.NewWriter(w)
	table.Header("Column", "Balls", "Percent")
	for i, v := range counts {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatUint(v, 10),
			strconv.FormatFloat(percent(v, total), 'f', 4, 64) + "%",
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// Chart renders counts in the named style ("vertical", "horizontal", "table").
// Vertical charts are followed by the column listing.
func Chart(w io.Writer, counts galton.SlotCounts, style string, height, width int) error {
	switch style {
	case "horizontal":
		_, err := io.WriteString(w, Horizontal(counts, width))
		return err
	case "table":
		return Table(w, counts)
	case "", "vertical":
		if _, err := io.WriteString(w, Vertical(counts, height)); err != nil {
			return err
		}
		_, err := io.WriteString(w, Columns(counts))
		return err
	default:
		return fmt.Errorf("unknown chart style %q", style)
	}
}

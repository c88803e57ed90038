// Package cli holds the terminal helpers of the demo binary: boxed banners
// and promptui menus for switching conditions by hand.
package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	dividerLeft    = "┠"
	dividerMiddle  = "─"
	dividerRight   = "┨"
	ellipsis       = "…"
)

// Alignment of banner lines.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

const (
	bannerPadding  = 2
	dividerPadding = 2
	halfDivisor    = 2
)

// DefaultTerminalWidth is used when the terminal size cannot be read.
const DefaultTerminalWidth = 80

var suppressBanner atomic.Bool //nolint:gochecknoglobals

// SuppressBanners makes Banner return its text unboxed, e.g. when output is
// piped or in CI.
func SuppressBanners(suppress bool) {
	suppressBanner.Store(suppress)
}

// TerminalWidth returns the terminal width, or DefaultTerminalWidth.
func TerminalWidth() int {
	_, w, err := TerminalDimensions()
	if err != nil || w == 0 {
		return DefaultTerminalWidth
	}

	return int(w) //nolint:gosec // Terminal width is bounded by screen size, no overflow risk
}

// Divider returns a horizontal rule of the given width.
func Divider(width int) string {
	if width < dividerPadding {
		return ""
	}

	return dividerLeft + strings.Repeat(dividerMiddle, width-dividerPadding) + dividerRight + "\n"
}

// Banner boxes s, one box line per line of s. Lines longer than the box are
// truncated with an ellipsis.
func Banner(s string, width int, alignment Alignment) string {
	if suppressBanner.Load() {
		return s + "\n"
	}

	if width <= bannerPadding {
		return ""
	}

	inner := width - bannerPadding
	parts := []string{boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight}

	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		line, ok := pad(l, inner, alignment)
		if !ok {
			return ""
		}

		parts = append(parts, boxSide+line+boxSide)
	}

	parts = append(parts, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(parts, "\n") + "\n"
}

// MachineBanner summarizes a machine position for the terminal.
func MachineBanner(machine string, tick uint64, current string, switches map[string]bool, order []string) string {
	lines := []string{
		fmt.Sprintf("%s  tick %d", machine, tick),
		"state: " + orDash(current),
	}

	flags := make([]string, 0, len(order))
	for _, name := range order {
		flags = append(flags, toggleItem(name, switches[name]))
	}

	if len(flags) > 0 {
		lines = append(lines, strings.Join(flags, "  "))
	}

	return Banner(strings.Join(lines, "\n"), TerminalWidth(), AlignLeft)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func countGraphic(s string) int {
	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			count++
		}
	}

	return count
}

func truncateGraphic(s string, n int) string {
	var sb strings.Builder

	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			count++
		}

		if count > n {
			break
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

func pad(text string, width int, alignment Alignment) (string, bool) {
	length := countGraphic(text)
	if length > width {
		text = truncateGraphic(text, width-1) + ellipsis
		length = width
	}

	diff := width - length

	switch alignment {
	case AlignLeft:
		return text + strings.Repeat(" ", diff), true
	case AlignRight:
		return strings.Repeat(" ", diff) + text, true
	case AlignCenter:
		left := diff / halfDivisor

		return strings.Repeat(" ", left) + text + strings.Repeat(" ", diff-left), true
	default:
		return "", false
	}
}

func size() (string, error) {
	f, err := os.Open("/dev/tty")
	if err != nil {
		return "", err
	}

	defer f.Close() //nolint:errcheck

	// Outputs: "rows columns"
	cmd := exec.Command("stty", "size")
	cmd.Stdin = f

	out, err := cmd.Output()

	return string(out), err
}

func parse(input string) (uint, uint, error) {
	parts := strings.Fields(input)
	if len(parts) != 2 { //nolint:mnd
		return 0, 0, fmt.Errorf("unexpected stty output %q", input)
	}

	rows, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}

	cols, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}

	return uint(rows), uint(cols), nil //nolint:gosec // Terminal dimensions are small positive integers, no overflow risk
}

// TerminalDimensions returns (rows, cols, err).
func TerminalDimensions() (uint, uint, error) {
	output, err := size()
	if err != nil {
		return 0, 0, err
	}

	return parse(output)
}

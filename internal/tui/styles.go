package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ddzoom/internal/hue"
)

var (
	primary   = lipgloss.Color("#00d4ff")
	secondary = lipgloss.Color("#ff6b9d")
	accent    = lipgloss.Color("#c792ea")
	success   = lipgloss.Color("#50fa7b")
	warning   = lipgloss.Color("#ffb86c")
	danger    = lipgloss.Color("#ff5555")
	muted     = lipgloss.Color("#6272a4")
	surface   = lipgloss.Color("#282a36")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(9)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f8f8f2"))

	modeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(surface).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().
			Foreground(muted)

	errStyle = lipgloss.NewStyle().
			Foreground(danger)

	promptStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	barFull  = lipgloss.NewStyle().Foreground(primary)
	barEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("#44475a"))
)

// ProgressBar draws a fixed width bar for percent in [0, 1].
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	filled := int(percent * float64(width))
	return barFull.Render(strings.Repeat("━", filled)) +
		barEmpty.Render(strings.Repeat("─", width-filled))
}

func modeBadge(label string, bg lipgloss.Color) string {
	return modeStyle.Background(bg).Render(label)
}

func hexRGB(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// HalfBlocks renders img two pixel rows per text line: the upper pixel is
// the foreground of a "▀" and the lower one its background.
func HalfBlocks(img *image.RGBA) string {
	if img == nil {
		return ""
	}
	bd := img.Bounds()
	var sb strings.Builder
	for y := bd.Min.Y; y < bd.Max.Y; y += 2 {
		if y > bd.Min.Y {
			sb.WriteByte('\n')
		}
		for x := bd.Min.X; x < bd.Max.X; x++ {
			top := img.RGBAAt(x, y)
			st := lipgloss.NewStyle().Foreground(lipgloss.Color(hexRGB(top.R, top.G, top.B)))
			if y+1 < bd.Max.Y {
				bot := img.RGBAAt(x, y+1)
				st = st.Background(lipgloss.Color(hexRGB(bot.R, bot.G, bot.B)))
			}
			sb.WriteString(st.Render("▀"))
		}
	}
	return sb.String()
}

// Swatch samples the color table into width cells and marks the selected
// breakpoint with a caret on the line below.
func Swatch(p *hue.Palette, width int) string {
	if width <= 0 {
		return ""
	}
	table := p.Table()
	var top, marks strings.Builder
	sel := -1
	if ivs := p.Intervals(); p.Len() > 0 {
		sel = int(ivs[p.Selected()].Pos) * width / hue.TableSize
	}
	for i := 0; i < width; i++ {
		c := table[i*hue.TableSize/width]
		top.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render(" "))
		if i == sel {
			marks.WriteString(promptStyle.Render("^"))
		} else {
			marks.WriteByte(' ')
		}
	}
	return top.String() + "\n" + marks.String()
}

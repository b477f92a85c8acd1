package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	modalMinWidth = 36
	modalMaxWidth = 76
)

// modalWidth sizes a dialog for a screen of the given width.
func modalWidth(screenW int) int {
	w := screenW - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < modalMinWidth {
		w = modalMinWidth
	}
	return w
}

// modalBodyWidth is the usable text width inside a dialog of width w.
func modalBodyWidth(w int) int {
	if w-4 < 10 {
		return 10
	}
	return w - 4
}

func renderModalBox(width int, title string, body string) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Width(width - 2).
		Padding(0, 1).
		Render(title)
	content := lipgloss.NewStyle().
		Width(width-2).
		Padding(1, 1, 0, 1).
		Render(body)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Width(width - 2).
		Render(header + "\n" + content)
}

// placeModal centers box over a screen of w x h.
func placeModal(w, h int, box string) string {
	if w <= 0 || h <= 0 {
		return box
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

// renderButtons draws a row of buttons; focused is the index of the highlighted one or
// -1. Disabled buttons render muted.
func renderButtons(labels []string, focused int, disabled bool) string {
	base := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	active := base.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
	if disabled {
		base = base.Foreground(colorMuted)
		active = active.Foreground(colorMuted).Bold(false)
	}

	parts := make([]string, 0, len(labels)*2)
	for i, l := range labels {
		if i > 0 {
			parts = append(parts, " ")
		}
		if i == focused {
			parts = append(parts, active.Render(l))
		} else {
			parts = append(parts, base.Render(l))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus, busy bool) string {
	focused := 0
	if focus == confirmFocusCancel {
		focused = 1
	}
	controls := renderButtons([]string{confirmLabel, cancelLabel}, focused, busy)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

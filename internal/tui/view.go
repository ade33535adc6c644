package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"iqamahs/core-go/internal/canvas"
	"iqamahs/core-go/internal/directory"
	"iqamahs/core-go/internal/masjid"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	snap := m.browser.State().Snapshot()
	l := computeLayout(m.width, m.height)

	header := titleStyle.Render(" iqamahs ─ Houston masjid directory ")
	header = lipgloss.NewStyle().Width(m.width).Render(header)
	search := lipgloss.NewStyle().Width(m.width).Render(m.search.View())

	var body string
	switch {
	case snap.View == directory.ViewList:
		m.list.SetSize(m.width, l.bodyHeight)
		body = m.list.View()
	case l.wide:
		sidebar := m.renderSidebar(snap, l.bodyHeight)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", m.renderMap(l))
	default:
		body = m.renderMap(l)
	}
	body = lipgloss.NewStyle().Height(l.bodyHeight).MaxHeight(l.bodyHeight).Render(body)

	footer := m.renderFooter(snap, l)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, search, body, footer)
	return appStyle.Width(m.width).Height(m.height).MaxHeight(m.height).Render(ui)
}

func (m Model) renderSidebar(snap directory.Snapshot, height int) string {
	card := ""
	if snap.PopupVisible() {
		card = renderCard(*snap.Selected, sidebarWidth-2)
	}
	listHeight := max(height-lipgloss.Height(card), 3)
	m.list.SetSize(sidebarWidth, listHeight)
	col := m.list.View()
	if card != "" {
		col = lipgloss.JoinVertical(lipgloss.Left, col, card)
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(col)
}

func (m Model) renderMap(l layout) string {
	mp := m.host.Current()
	style := lipgloss.NewStyle().Width(l.mapWidth).Height(l.bodyHeight)
	if mp == nil {
		return style.Render(dimStyle.Render("map loading…"))
	}
	return style.Render(renderGrid(mp.Render()))
}

// renderGrid styles runs of glyphs of the same kind together.
func renderGrid(grid [][]canvas.Glyph) string {
	var b strings.Builder
	for r, row := range grid {
		if r > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for i := 1; i <= len(row); i++ {
			if i < len(row) && row[i].Kind == row[start].Kind {
				continue
			}
			var run strings.Builder
			for _, g := range row[start:i] {
				run.WriteRune(g.Rune)
			}
			b.WriteString(glyphStyle(row[start].Kind).Render(run.String()))
			start = i
		}
	}
	return b.String()
}

func glyphStyle(k canvas.GlyphKind) lipgloss.Style {
	switch k {
	case canvas.GlyphMarker:
		return markerStyle
	case canvas.GlyphSelected:
		return selectedStyle
	case canvas.GlyphControl:
		return controlStyle
	}
	return lipgloss.NewStyle()
}

// renderCard shows the selected masjid with its iqamah and Jumu'ah times.
func renderCard(mj masjid.Masjid, width int) string {
	lines := []string{
		cardTitle.Render(mj.Name),
		dimStyle.Render(mj.Address),
		"",
	}
	for _, p := range mj.PrayerTimes.Entries() {
		lines = append(lines, fmt.Sprintf("%-8s %s", p.Name, p.Time))
	}
	if len(mj.JumuahTimes) > 0 {
		lines = append(lines, "", "Jumu'ah  "+strings.Join(mj.JumuahTimes, ", "))
	}
	lines = append(lines, dimStyle.Render("esc close"))
	return cardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter(snap directory.Snapshot, l layout) string {
	status := m.status
	if !l.wide && snap.PopupVisible() {
		sel := snap.Selected
		status = fmt.Sprintf("%s · Fajr %s · Isha %s", sel.Name, sel.PrayerTimes.Fajr, sel.PrayerTimes.Isha)
	}
	help := "/ search • enter select • esc close • tab map/list • a add place • q quit"
	if mp := m.host.Current(); mp != nil && snap.View == directory.ViewMap {
		if attr := mp.Snapshot().Attribution; attr != "" {
			help += " • " + attr
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Bottom, dimStyle.Render(" "+status+" "), dimStyle.Render(help))
	return lipgloss.NewStyle().Width(m.width).MaxWidth(m.width).Render(line)
}

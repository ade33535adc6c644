// Package tui is the terminal front end of the masjid browser: a search bar,
// a list of results, the canvas map and a card for the selected masjid.
package tui

import (
	"context"
	"fmt"

	list "github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"iqamahs/core-go/internal/canvas"
	"iqamahs/core-go/internal/directory"
	"iqamahs/core-go/internal/masjid"
)

const (
	headerHeight = 1
	searchHeight = 1
	footerHeight = 1

	sidebarWidth = 38
	// wideWidth is the narrowest terminal that shows list and map side by side.
	wideWidth = 90
)

// addPlaceNotice answers the "add a praying space" action until submissions exist.
const addPlaceNotice = "Add New/Missing Praying Space selected"

type item struct{ m masjid.Masjid }

func (i item) Title() string       { return i.m.Name }
func (i item) Description() string { return i.m.Address }
func (i item) FilterValue() string { return i.m.Name }

type layout struct {
	wide       bool
	mapX, mapY int
	mapWidth   int
	bodyHeight int
}

func computeLayout(width, height int) layout {
	l := layout{
		mapY:       headerHeight + searchHeight,
		bodyHeight: max(height-headerHeight-searchHeight-footerHeight, 1),
	}
	if width >= wideWidth {
		l.wide = true
		l.mapX = sidebarWidth + 1
	}
	l.mapWidth = max(width-l.mapX, 1)
	return l
}

type Model struct {
	browser  *directory.Browser
	host     *canvas.Host
	pane     *canvas.Pane
	notifier *Notifier

	width  int
	height int

	search    textinput.Model
	list      list.Model
	listQuery string
	listBuilt bool

	status string
}

// New builds the model. host and pane must be the ones the browser's map
// controller draws into; notifier should be wired to the host's change hook.
func New(browser *directory.Browser, host *canvas.Host, pane *canvas.Pane, notifier *Notifier) Model {
	ti := textinput.New()
	ti.Placeholder = "Search by name or address"
	ti.Prompt = " / "
	ti.CharLimit = 120

	d := list.NewDefaultDelegate()
	l := list.New(nil, d, sidebarWidth, 10)
	l.Title = "Masjids"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	m := Model{
		browser:  browser,
		host:     host,
		pane:     pane,
		notifier: notifier,
		search:   ti,
		list:     l,
		status:   "ready",
	}
	m.syncList()
	return m
}

// Run starts the browser and blocks until the program exits or ctx ends.
func Run(ctx context.Context, browser *directory.Browser, host *canvas.Host, pane *canvas.Pane, notifier *Notifier) error {
	unsub := browser.State().Subscribe(func(directory.Snapshot) { notifier.Notify() })
	defer unsub()
	browser.Start()
	defer browser.Close()

	p := tea.NewProgram(New(browser, host, pane, notifier),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd { return m.notifier.Wait() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	state := m.browser.State()
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case refreshMsg:
		m.syncList()
		return m, m.notifier.Wait()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		l := computeLayout(m.width, m.height)
		m.pane.Resize(l.mapWidth, l.bodyHeight)
		m.search.Width = max(m.width-len(m.search.Prompt)-1, 1)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.search.Focused() {
			switch msg.Type {
			case tea.KeyEnter:
				state.Commit()
				m.search.Blur()
				m.status = fmt.Sprintf("%d results", len(state.Snapshot().Filtered))
			case tea.KeyEsc:
				m.search.Blur()
			default:
				var cmd tea.Cmd
				m.search, cmd = m.search.Update(msg)
				state.SetInput(m.search.Value())
				cmds = append(cmds, cmd)
			}
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "/":
			cmds = append(cmds, m.search.Focus())
		case "a":
			m.status = addPlaceNotice
		case "tab", "v":
			next := directory.ViewList
			if state.Snapshot().View == directory.ViewList {
				next = directory.ViewMap
			}
			_ = state.SetView(next)
			m.status = string(next) + " view"
		case "esc", "x":
			state.ClearSelection()
		case "enter":
			if it, ok := m.list.SelectedItem().(item); ok {
				sel := it.m
				state.Select(&sel)
				m.status = sel.Name
			}
		default:
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y)
		}
	}

	m.syncList()
	return m, tea.Batch(cmds...)
}

// click forwards a press inside the map area to the canvas.
func (m Model) click(x, y int) {
	if m.browser.State().Snapshot().View != directory.ViewMap {
		return
	}
	mp := m.host.Current()
	if mp == nil {
		return
	}
	l := computeLayout(m.width, m.height)
	col, row := x-l.mapX, y-l.mapY
	if col < 0 || row < 0 || col >= l.mapWidth || row >= l.bodyHeight {
		return
	}
	mp.Click(col, row)
}

// syncList rebuilds list items when the committed query changed and keeps
// the selected masjid under the cursor.
func (m *Model) syncList() {
	snap := m.browser.State().Snapshot()
	if !m.listBuilt || snap.Query != m.listQuery {
		items := make([]list.Item, 0, len(snap.Filtered))
		for _, mj := range snap.Filtered {
			items = append(items, item{m: mj})
		}
		m.list.SetItems(items)
		m.list.ResetSelected()
		m.listQuery, m.listBuilt = snap.Query, true
	}
	if !m.search.Focused() && m.search.Value() != snap.Input {
		m.search.SetValue(snap.Input)
	}
	if snap.Selected == nil {
		return
	}
	for i, mj := range snap.Filtered {
		if mj.ID == snap.Selected.ID {
			if m.list.Index() != i {
				m.list.Select(i)
			}
			return
		}
	}
}

package tui

import tea "github.com/charmbracelet/bubbletea"

// Notifier coalesces change signals from the map and the directory state
// into redraws. Notify never blocks, so it is safe to call while the map
// controller holds its lock.
type Notifier struct {
	ch chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

type refreshMsg struct{}

// Wait returns a command that resolves on the next signal.
func (n *Notifier) Wait() tea.Cmd {
	return func() tea.Msg {
		<-n.ch
		return refreshMsg{}
	}
}

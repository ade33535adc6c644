package directory

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"iqamahs/core-go/internal/masjid"
)

type View string

const (
	ViewMap  View = "map"
	ViewList View = "list"
)

var (
	ErrUnknownMasjid = errors.New("unknown masjid")
	ErrInvalidView   = errors.New("invalid view")
)

// ParseView accepts "map" or "list" in any case.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewMap:
		return ViewMap, nil
	case ViewList:
		return ViewList, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}

// Snapshot is a consistent copy of the directory state.
type Snapshot struct {
	Input    string
	Query    string
	Filtered []masjid.Masjid
	Selected *masjid.Masjid
	View     View
}

// PopupVisible reports whether the selected masjid's card overlays the map.
func (s Snapshot) PopupVisible() bool {
	return s.View == ViewMap && s.Selected != nil
}

// State holds the search input, the committed query with its filtered list,
// the selection and the active view. Listeners run after every change,
// outside the lock.
type State struct {
	mu        sync.Mutex
	all       []masjid.Masjid
	input     string
	query     string
	filtered  []masjid.Masjid
	selected  *masjid.Masjid
	view      View
	listeners map[int]func(Snapshot)
	next      int
}

func NewState(all []masjid.Masjid) *State {
	return &State{
		all:       all,
		filtered:  masjid.Filter(all, ""),
		view:      ViewMap,
		listeners: make(map[int]func(Snapshot)),
	}
}

// SetInput edits the search box without committing it.
func (s *State) SetInput(input string) {
	s.mu.Lock()
	s.input = input
	s.mu.Unlock()
}

// Commit applies the current input as the query and clears the selection.
func (s *State) Commit() {
	s.mu.Lock()
	s.query = s.input
	s.filtered = masjid.Filter(s.all, s.query)
	s.selected = nil
	s.mu.Unlock()
	s.notify()
}

// Search sets the input and commits it.
func (s *State) Search(query string) {
	s.mu.Lock()
	s.input = query
	s.mu.Unlock()
	s.Commit()
}

// Select changes the selection. nil clears it.
func (s *State) Select(m *masjid.Masjid) {
	s.mu.Lock()
	if m == nil {
		s.selected = nil
	} else {
		cp := *m
		s.selected = &cp
	}
	s.mu.Unlock()
	s.notify()
}

// SelectID selects a dataset entry by identifier, visible or not.
func (s *State) SelectID(id int) error {
	s.mu.Lock()
	m, ok := masjid.Find(s.all, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMasjid, id)
	}
	s.Select(&m)
	return nil
}

func (s *State) ClearSelection() { s.Select(nil) }

func (s *State) SetView(v View) error {
	if v != ViewMap && v != ViewList {
		return fmt.Errorf("%w: %q", ErrInvalidView, v)
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Input:    s.input,
		Query:    s.query,
		Filtered: append([]masjid.Masjid(nil), s.filtered...),
		View:     s.view,
	}
	if s.selected != nil {
		cp := *s.selected
		snap.Selected = &cp
	}
	return snap
}

// Subscribe registers fn for change notifications and returns a cancel func.
func (s *State) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *State) notify() {
	snap := s.Snapshot()
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

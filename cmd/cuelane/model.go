package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/cuelane/internal/config"
	"github.com/daviddao/cuelane/internal/datasource"
	"github.com/daviddao/cuelane/internal/snapshot"
)

// frameInterval paces animation frames and playhead updates.
const frameInterval = time.Second / 30

// --- Messages ---

type frameMsg struct{}

type configChangedMsg struct{}

type configLoadedMsg struct {
	cfg *config.Config
	err error
}

// --- Key bindings ---

type keyMap struct {
	Quit      key.Binding
	Help      key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Overview  key.Binding
	ScrollL   key.Binding
	ScrollR   key.Binding
	Next      key.Binding
	Prev      key.Binding
	Left      key.Binding
	Right     key.Binding
	DragStart key.Binding
	DragEnd   key.Binding
	Enter     key.Binding
	Esc       key.Binding
	Add       key.Binding
	Delete    key.Binding
	Play      key.Binding
	Editing   key.Binding
	Markers   key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Overview:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overview")),
	ScrollL:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "scroll left")),
	ScrollR:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "scroll right")),
	Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next interval")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous interval")),
	Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "seek/drag left")),
	Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "seek/drag right")),
	DragStart: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "drag start marker")),
	DragEnd:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "drag end marker")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop/click")),
	Esc:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "drop marker")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add at playhead")),
	Delete:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
	Play:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Editing:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle editing")),
	Markers:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle markers")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Next, k.Play, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.Overview, k.ScrollL, k.ScrollR},
		{k.Next, k.Prev, k.Enter, k.Add, k.Delete},
		{k.DragStart, k.DragEnd, k.Left, k.Right, k.Esc},
		{k.Play, k.Editing, k.Markers, k.Help, k.Quit},
	}
}

// contextHelp returns the status bar hint for the current mode.
func contextHelp(dragging bool) string {
	if dragging {
		return "←/→: move marker | enter/esc: drop | q: quit"
	}
	return "+/-: zoom | h/l: scroll | tab: select | [/]: drag | a: add | space: play | ?: help | q: quit"
}

// --- Model ---

type uiModel struct {
	app     *app
	watcher *datasource.Watcher
	snap    *snapshot.DataSnapshot
	logger  *slog.Logger

	width    int
	height   int
	selected string // interval id, "" for none
	focused  bool
	status   string
	err      error

	help     help.Model
	showHelp bool

	lastReload time.Time
}

func newModel(a *app, w *datasource.Watcher, logger *slog.Logger) uiModel {
	m := uiModel{
		app:        a,
		watcher:    w,
		logger:     logger,
		focused:    true,
		help:       help.New(),
		lastReload: time.Now(),
	}
	m.refresh()
	return m
}

func (m uiModel) Init() tea.Cmd {
	return nextFrame()
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// refresh rebuilds the snapshot and keeps the selection valid.
func (m *uiModel) refresh() {
	snap, err := m.app.snapshot()
	if err != nil {
		m.err = err
		return
	}
	m.snap = snap
	if m.selected == "" {
		return
	}
	if _, ok := m.app.store.Get(m.selected); !ok {
		m.selected = ""
		return
	}
	// Shapes are rebuilt on scroll and update; keep the selected one hovered.
	if sh, ok := m.app.layer.Shape(m.selected); ok && !sh.Hovered() {
		sh.MouseEnter()
	}
}

func (m uiModel) isDragging() bool {
	if m.selected == "" {
		return false
	}
	active, _ := m.app.dragging(m.selected)
	return active
}

// selectStep moves the selection by step through the intervals in store
// order, wrapping around.
func (m *uiModel) selectStep(step int) {
	ivs := m.snap.Intervals
	if len(ivs) == 0 {
		return
	}
	idx := -1
	for i, iv := range ivs {
		if iv.ID == m.selected {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = len(ivs) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + step + len(ivs)) % len(ivs)
	}
	if m.isDragging() {
		m.app.endDrag(m.selected)
	}
	prev := m.selected
	m.selected = ivs[idx].ID
	m.app.hover(prev, m.selected)
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err, m.status = nil, ""
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}
		m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.app.resize(max(1, msg.Width))
		m.refresh()

	case tea.FocusMsg:
		m.focused = true

	case tea.BlurMsg:
		m.focused = false

	case frameMsg:
		if m.focused {
			m.app.frame()
			m.refresh()
		}
		return m, nextFrame()

	case configChangedMsg:
		path := m.app.path
		return m, func() tea.Msg {
			cfg, _, err := datasource.Open(path)
			return configLoadedMsg{cfg: cfg, err: err}
		}

	case configLoadedMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("reload: %w", msg.err)
			m.logger.Warn("config reload failed", "error", msg.err)
			return m, nil
		}
		m.reload(msg.cfg)
	}

	return m, nil
}

// reload swaps in a freshly built app, keeping the playhead.
func (m *uiModel) reload(cfg *config.Config) {
	next, err := newApp(cfg, m.app.path, m.app.tl.Width(), m.logger)
	if err != nil {
		m.err = fmt.Errorf("reload: %w", err)
		return
	}
	playhead := m.app.clock.CurrentTime()
	m.app.close()
	m.app = next
	m.app.seekTo(playhead)
	m.lastReload = time.Now()
	m.status = "reloaded " + displayPath(m.app.path)
	m.refresh()
}

// handleKey applies one key press. It returns a command only when the
// program should stop.
func (m *uiModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	a := m.app
	switch {
	case key.Matches(msg, keys.Quit):
		if m.watcher != nil {
			m.watcher.Close()
		}
		a.close()
		return tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, keys.ZoomIn):
		m.err = a.zoomIn()

	case key.Matches(msg, keys.ZoomOut):
		m.err = a.zoomOut()

	case key.Matches(msg, keys.Overview):
		m.err = a.toggleOverview()

	case key.Matches(msg, keys.ScrollL):
		a.scroll(-max(1, a.tl.Width()/4))

	case key.Matches(msg, keys.ScrollR):
		a.scroll(max(1, a.tl.Width()/4))

	case key.Matches(msg, keys.Next):
		m.selectStep(1)

	case key.Matches(msg, keys.Prev):
		m.selectStep(-1)

	case key.Matches(msg, keys.DragStart, keys.DragEnd):
		if m.selected == "" {
			m.status = "select an interval first"
			break
		}
		m.err = a.startDrag(m.selected, key.Matches(msg, keys.DragStart))

	case key.Matches(msg, keys.Left, keys.Right):
		dx := 1
		if key.Matches(msg, keys.Left) {
			dx = -1
		}
		if m.isDragging() {
			if !a.dragBy(m.selected, dx) {
				m.status = "marker cannot move further"
			}
			break
		}
		a.seekTo(a.clock.CurrentTime() + float64(dx))

	case key.Matches(msg, keys.Enter):
		if m.isDragging() {
			a.endDrag(m.selected)
			break
		}
		if m.selected != "" {
			a.click(m.selected)
		}

	case key.Matches(msg, keys.Esc):
		if m.isDragging() {
			a.endDrag(m.selected)
		}

	case key.Matches(msg, keys.Add):
		iv, err := a.addAtPlayhead()
		if err != nil {
			m.err = err
			break
		}
		prev := m.selected
		m.selected = iv.ID()
		a.hover(prev, m.selected)

	case key.Matches(msg, keys.Delete):
		if m.selected != "" && a.remove(m.selected) {
			m.status = "deleted " + m.selected
			m.selected = ""
		}

	case key.Matches(msg, keys.Play):
		a.clock.Toggle()

	case key.Matches(msg, keys.Editing):
		if a.toggleEditing() {
			m.status = "editing on"
		} else {
			m.status = "editing off"
		}

	case key.Matches(msg, keys.Markers):
		if a.toggleMarkers() {
			m.status = "markers shown"
		} else {
			m.status = "markers hidden"
		}
	}
	return nil
}

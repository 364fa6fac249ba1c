package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"incimap/internal/incident"
	"incimap/internal/layout"
)

func getMoveSpeed(key string) int {
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down", "H", "J", "K", "L":
		return 4
	default:
		return 1
	}
}

func (m *Model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m *Model) handleStartupKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "n":
		m.store.NewMap()
		m.enterNormal()
	case "s":
		m.store.LoadMap(incident.SampleMap())
		m.enterNormal()
	case "o":
		return m.openPicker()
	case "q", "ctrl+c":
		return tea.Quit
	}
	return nil
}

func (m *Model) enterNormal() {
	m.mode = ModeNormal
	m.detach()
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	m.clearMessages()
	s := m.store
	sel := s.SelectionID()

	switch key {
	case "ctrl+c", "q":
		if m.cfg.Editor.Confirmations && m.Dirty() {
			m.askConfirm(confirmQuit)
			return nil
		}
		return tea.Quit
	case "?":
		m.help = true
		m.helpTop = 0
	case "z":
		m.panMode = !m.panMode
	case "c":
		m.recentre()
	case "esc":
		m.panMode = false
		s.ClearSelection()

	case "left", "right", "up", "down", "shift+left", "shift+right", "shift+up", "shift+down",
		"h", "j", "k", "l", "H", "J", "K", "L":
		speed := getMoveSpeed(key)
		if m.panMode {
			m.handlePan(key, speed)
			return nil
		}
		if _, ok := s.Node(sel); !ok {
			return nil
		}
		step := float64(layout.GridSize * speed)
		switch key {
		case "left", "shift+left", "h", "H":
			s.NudgeNodeBy(sel, -step, 0)
		case "right", "shift+right", "l", "L":
			s.NudgeNodeBy(sel, step, 0)
		case "up", "shift+up", "k", "K":
			s.NudgeNodeBy(sel, 0, -step)
		case "down", "shift+down", "j", "J":
			s.NudgeNodeBy(sel, 0, step)
		}

	case "enter":
		s.AddChild("")
		return m.renameEditing()
	case "alt+enter", "s":
		if s.AddSibling("") == "" {
			m.errorMessage = "select a node to add a sibling"
			return nil
		}
		return m.renameEditing()
	case "e":
		if !s.StartEditing(sel) {
			m.errorMessage = "select a node to rename"
			return nil
		}
		return m.renameEditing()
	case "delete", "backspace":
		s.DeleteSelection()
	case "tab":
		s.SelectNext(1)
	case "shift+tab":
		s.SelectNext(-1)

	case "b":
		if _, ok := s.Node(sel); !ok {
			m.errorMessage = "select a node to guard"
			return nil
		}
		if s.AddBarrierForFirstDownstream(sel) == "" {
			m.errorMessage = "node has no downstream link"
		}
	case "x":
		if !s.ToggleBreached(sel) {
			m.errorMessage = "select a barrier to toggle"
		}
	case "d":
		s.ToggleShowDetails()
	case "t":
		return m.openPrompt(promptTitle, s.Title())

	case "y":
		m.yankTitle()
	case "Y":
		m.yankDocument()

	case "ctrl+z", "u":
		if !s.Undo() {
			m.successMessage = "nothing to undo"
		}
	case "ctrl+y", "U":
		if !s.Redo() {
			m.successMessage = "nothing to redo"
		}

	case "n":
		if m.cfg.Editor.Confirmations && m.Dirty() {
			m.askConfirm(confirmNewMap)
			return nil
		}
		m.newMap()
	case "ctrl+s":
		return m.save()
	case "S":
		return m.openPrompt(promptSave, m.suggestedName())
	case "ctrl+o":
		return m.openPicker()
	case "p":
		return m.openPrompt(promptExportPNG, pngName(s.Title()))
	}
	return nil
}

func (m *Model) newMap() {
	m.store.NewMap()
	m.detach()
}

func (m *Model) askConfirm(action confirmAction) {
	m.mode = ModeConfirm
	m.confirm = action
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	m.mode = ModeNormal
	switch msg.String() {
	case "y", "Y":
	default:
		m.pendingPath = ""
		return nil
	}
	switch m.confirm {
	case confirmQuit:
		return tea.Quit
	case confirmNewMap:
		m.newMap()
	case confirmOverwrite:
		path := m.pendingPath
		m.pendingPath = ""
		return m.saveTo(path)
	case confirmReload:
		return m.loadFrom(m.path)
	}
	return nil
}

func (m *Model) handleHelpKey(key string) {
	switch key {
	case "j", "down":
		if m.helpTop < m.maxHelpScroll() {
			m.helpTop++
		}
	case "k", "up":
		if m.helpTop > 0 {
			m.helpTop--
		}
	default:
		m.help = false
		m.helpTop = 0
	}
}

func (m Model) maxHelpScroll() int {
	limit := len(helpLines) - m.canvasHeight()
	if limit < 0 {
		return 0
	}
	return limit
}

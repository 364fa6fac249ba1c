package tui

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"incimap/internal/export"
	"incimap/internal/incident"
	"incimap/internal/mapfile"
)

// changeMsg carries one notification from the watcher that produced it.
type changeMsg struct {
	watcher *mapfile.Watcher
	change  mapfile.Change
	err     error
	closed  bool
}

func (m Model) suggestedName() string {
	if m.path != "" {
		return m.path
	}
	return mapfile.SuggestedName(m.store.Title(), m.cfg.Format())
}

func (m *Model) save() tea.Cmd {
	if m.path == "" {
		return m.openPrompt(promptSave, m.suggestedName())
	}
	return m.saveTo(m.path)
}

func (m *Model) saveTo(path string) tea.Cmd {
	digest, err := mapfile.Save(path, m.store.Document())
	if err != nil {
		m.errorMessage = describe(err)
		m.logger.Warn("save failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	m.path = path
	m.fileDigest = digest
	m.markClean()
	m.successMessage = "Saved " + filepath.Base(path)
	m.logger.Info("map saved", zap.String("path", path), zap.Stringer("digest", digest))
	return m.startWatching()
}

func (m *Model) loadFrom(path string) tea.Cmd {
	doc, digest, err := mapfile.Load(path)
	if err != nil {
		m.errorMessage = describe(err)
		m.logger.Warn("load failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	m.store.LoadMap(doc)
	if m.mode == ModePrompt {
		m.closePrompt()
	}
	m.mode = ModeNormal
	m.path = path
	m.fileDigest = digest
	m.markClean()
	m.recentre()
	m.successMessage = "Opened " + filepath.Base(path)
	m.logger.Info("map loaded", zap.String("path", path), zap.Int("nodes", len(doc.Nodes)))
	return m.startWatching()
}

// detach forgets the backing file, for maps that start from scratch.
func (m *Model) detach() {
	m.path = ""
	m.fileDigest = mapfile.Digest{}
	m.stopWatching()
	m.markClean()
	m.recentre()
}

func (m *Model) exportPNG(path string) {
	err := export.PNGFile(path, m.store.Document(), export.Options{ShowDetails: m.store.ShowDetails()})
	if err != nil {
		m.errorMessage = describe(err)
		return
	}
	m.successMessage = "Exported " + filepath.Base(path)
	m.logger.Info("png exported", zap.String("path", path))
}

// describe turns an error into one status line.
func describe(err error) string {
	var schema *incident.SchemaError
	if errors.As(err, &schema) && len(schema.Issues) > 0 {
		if len(schema.Issues) == 1 {
			return "invalid map: " + schema.Issues[0].String()
		}
		return fmt.Sprintf("invalid map: %s (+%d more)", schema.Issues[0].String(), len(schema.Issues)-1)
	}
	return err.Error()
}

func (m *Model) yankTitle() {
	n, ok := m.store.Node(m.store.SelectionID())
	if !ok {
		m.errorMessage = "select a node to yank"
		return
	}
	if err := m.copy(n.Title); err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return
	}
	m.successMessage = "Copied title"
}

func (m *Model) yankDocument() {
	data, err := incident.Serialize(m.store.Document())
	if err != nil {
		m.errorMessage = describe(err)
		return
	}
	if err := m.copy(string(data)); err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return
	}
	m.successMessage = "Copied map"
}

// startWatching follows the current file unless it is already watched.
func (m *Model) startWatching() tea.Cmd {
	if !m.watch || m.path == "" {
		return nil
	}
	if abs, err := filepath.Abs(m.path); err == nil && m.watcher != nil && m.watcher.Path() == abs {
		return nil
	}
	m.stopWatching()
	w, err := mapfile.Watch(m.path)
	if err != nil {
		m.logger.Warn("watch failed", zap.String("path", m.path), zap.Error(err))
		return nil
	}
	m.watcher = w
	return m.waitForChange()
}

func (m *Model) stopWatching() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		m.logger.Debug("close watcher", zap.Error(err))
	}
	m.watcher = nil
}

func (m Model) waitForChange() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case c, ok := <-w.Changes():
			if !ok {
				return changeMsg{watcher: w, closed: true}
			}
			return changeMsg{watcher: w, change: c}
		case err, ok := <-w.Errors():
			if !ok {
				return changeMsg{watcher: w, closed: true}
			}
			return changeMsg{watcher: w, err: err}
		}
	}
}

func (m *Model) handleChange(msg changeMsg) tea.Cmd {
	if msg.closed || msg.watcher != m.watcher {
		return nil
	}
	switch {
	case msg.err != nil:
		m.logger.Warn("watch error", zap.Error(msg.err))
	case msg.change.Removed:
		m.errorMessage = filepath.Base(m.path) + " was removed on disk"
	case msg.change.Digest == m.fileDigest:
		// our own write
	case m.Dirty():
		m.fileDigest = msg.change.Digest
		if m.mode == ModeNormal {
			m.askConfirm(confirmReload)
		} else {
			m.errorMessage = filepath.Base(m.path) + " changed on disk"
		}
	default:
		if cmd := m.loadFrom(m.path); cmd != nil {
			return tea.Batch(cmd, m.waitForChange())
		}
		m.successMessage = "Reloaded " + filepath.Base(m.path)
	}
	return m.waitForChange()
}

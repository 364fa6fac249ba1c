package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"incimap/internal/incident"
	"incimap/internal/mapfile"
)

func (k promptKind) label() string {
	switch k {
	case promptRename:
		return "Title"
	case promptTitle:
		return "Map title"
	case promptSave:
		return "Save as"
	case promptExportPNG:
		return "Export PNG"
	default:
		return ""
	}
}

func (m *Model) openPrompt(kind promptKind, value string) tea.Cmd {
	m.mode = ModePrompt
	m.prompt = kind
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.input.Blur()
	m.input.SetValue("")
	m.mode = ModeNormal
}

// renameEditing opens the rename prompt for the node in edit mode.
func (m *Model) renameEditing() tea.Cmd {
	n, ok := m.store.Node(m.store.EditingID())
	if !ok {
		return nil
	}
	return m.openPrompt(promptRename, n.Title)
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		if m.prompt == promptRename {
			m.store.FinishEditing()
		}
		m.errorMessage = ""
		m.closePrompt()
		return nil
	case "enter":
		return m.submitPrompt()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) submitPrompt() tea.Cmd {
	value := m.input.Value()
	m.errorMessage = ""
	switch m.prompt {
	case promptRename:
		if _, err := m.store.RenameNode(m.store.EditingID(), value); err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.store.FinishEditing()
		m.closePrompt()

	case promptTitle:
		m.store.SetMapTitle(value)
		m.closePrompt()

	case promptSave:
		m.closePrompt()
		path, err := m.savePath(value, m.cfg.Format().Ext())
		if errors.Is(err, mapfile.ErrCancelled) {
			return nil
		}
		if err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		if m.cfg.Editor.Confirmations && path != m.path && exists(path) {
			m.pendingPath = path
			m.askConfirm(confirmOverwrite)
			return nil
		}
		return m.saveTo(path)

	case promptExportPNG:
		m.closePrompt()
		path, err := m.savePath(value, ".png")
		if errors.Is(err, mapfile.ErrCancelled) {
			return nil
		}
		if err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.exportPNG(path)
	}
	return nil
}

// savePath resolves prompt input against the configured save directory.
func (m *Model) savePath(input, ext string) (string, error) {
	input = strings.TrimSpace(input)
	if input != "" && filepath.Ext(input) == "" {
		input += ext
	}
	path, err := mapfile.Resolve("", input, m.cfg.Format())
	if err != nil {
		return "", err
	}
	return m.cfg.GetSavePath(path)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func pngName(title string) string {
	name := mapfile.SuggestedName(title, incident.FormatJSON)
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// openPicker lists the maps in the save directory.
func (m *Model) openPicker() tea.Cmd {
	m.fromStartup = m.mode == ModeStartup
	m.mode = ModeOpen
	m.fileList = nil
	m.selectedFile = -1
	m.input.SetValue("")

	files, err := mapfile.List(m.openDir())
	if err != nil {
		m.errorMessage = err.Error()
	}
	m.fileList = files
	if len(files) > 0 {
		m.selectedFile = 0
		m.input.SetValue(files[0])
		m.input.CursorEnd()
	}
	return m.input.Focus()
}

func (m Model) openDir() string {
	if m.cfg.Files.SaveDirectory != "" {
		return m.cfg.Files.SaveDirectory
	}
	return "."
}

func (m *Model) handleOpenKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.errorMessage = ""
		if m.fromStartup {
			m.mode = ModeStartup
		} else {
			m.mode = ModeNormal
		}
		return nil
	case "up":
		if m.selectedFile > 0 {
			m.selectedFile--
			m.input.SetValue(m.fileList[m.selectedFile])
			m.input.CursorEnd()
		}
		return nil
	case "down":
		if m.selectedFile < len(m.fileList)-1 {
			m.selectedFile++
			m.input.SetValue(m.fileList[m.selectedFile])
			m.input.CursorEnd()
		}
		return nil
	case "enter":
		path, err := mapfile.Resolve(m.openDir(), m.input.Value(), m.cfg.Format())
		if errors.Is(err, mapfile.ErrCancelled) {
			return nil
		}
		if err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		return m.loadFrom(path)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"incimap/internal/render"
)

var (
	cellStyles = map[render.Style]lipgloss.Style{
		render.StylePlain:    lipgloss.NewStyle(),
		render.StyleNode:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		render.StyleSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		render.StyleEditing:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		render.StyleEdge:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		render.StyleHolding:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		render.StyleBreached: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
	statusStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

var helpLines = []string{
	"incimap help",
	"============",
	"",
	"Editing:",
	"  Enter            Add a child of the selected node",
	"  s / Alt+Enter    Add a sibling of the selected node",
	"  e                Rename the selected node",
	"  Delete/Backspace Delete the selection (a node takes its descendants)",
	"  b                Add a barrier on the first link leaving the node",
	"  x                Toggle breached on the selected barrier",
	"  t                Set the map title",
	"  Arrows / hjkl    Nudge the selected node one grid step",
	"  Shift+Arrows     Nudge four grid steps",
	"",
	"Selection and view:",
	"  Tab / Shift+Tab  Select next / previous node",
	"  Esc              Clear the selection",
	"  Click            Select the card under the pointer",
	"  d                Toggle details",
	"  z                Toggle pan mode (arrows scroll the window)",
	"  c                Centre the view",
	"",
	"History:",
	"  u / Ctrl+Z       Undo",
	"  U / Ctrl+Y       Redo",
	"",
	"Files:",
	"  Ctrl+S           Save",
	"  S                Save as",
	"  Ctrl+O           Open",
	"  n                New map",
	"  p                Export PNG",
	"  y                Copy the selected title",
	"  Y                Copy the whole map as JSON",
	"",
	"  ?                Toggle this help",
	"  q / Ctrl+C       Quit",
}

func (m Model) View() string {
	switch {
	case m.help:
		return m.helpView()
	case m.mode == ModeStartup:
		return m.startupView()
	case m.mode == ModeOpen:
		return m.openView()
	}

	c := render.NewCanvas(m.canvasWidth(), m.canvasHeight())
	render.Draw(c, render.Scene{
		Nodes:       m.store.Nodes(),
		Edges:       m.store.Edges(),
		Barriers:    m.store.Barriers(),
		SelectionID: m.store.SelectionID(),
		EditingID:   m.store.EditingID(),
		ShowDetails: m.store.ShowDetails(),
	}, m.origin)

	var b strings.Builder
	for y := 0; y < c.Height(); y++ {
		for _, run := range c.Runs(y) {
			b.WriteString(cellStyles[run.Style].Render(run.Text))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	var status string
	switch m.mode {
	case ModePrompt:
		status = fmt.Sprintf("%s: %s", m.prompt.label(), m.input.View())
		if m.errorMessage != "" {
			status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		}
		status += faintStyle.Render(" | Enter=confirm, Esc=cancel")
	case ModeConfirm:
		status = "Mode: CONFIRM | " + m.confirmMessage()
	default:
		mode := m.mode.String()
		if m.panMode {
			mode = "PAN"
		}
		title := m.store.Title()
		if m.Dirty() {
			title += " *"
		}
		status = fmt.Sprintf("Mode: %s | %s", mode, title)
		if label := m.selectionLabel(); label != "" {
			status += " | Selected: " + label
		}
		switch {
		case m.errorMessage != "":
			status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		case m.successMessage != "":
			status += " | " + successStyle.Render(m.successMessage)
		default:
			status += faintStyle.Render(" | ? for help | q to quit")
		}
	}
	return statusStyle.MaxWidth(m.canvasWidth()).Render(status)
}

func (m Model) selectionLabel() string {
	id := m.store.SelectionID()
	if n, ok := m.store.Node(id); ok {
		return n.Title
	}
	if b, ok := m.store.Barrier(id); ok {
		return render.BarrierLabel(b)
	}
	return ""
}

func (m Model) confirmMessage() string {
	switch m.confirm {
	case confirmQuit:
		return "Quit with unsaved changes? (y/n)"
	case confirmNewMap:
		return "Start a new map? Unsaved changes will be lost. (y/n)"
	case confirmOverwrite:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.pendingPath)
	case confirmReload:
		return "The file changed on disk. Reload and drop your changes? (y/n)"
	default:
		return ""
	}
}

func (m Model) startupView() string {
	lines := []string{
		"+--------------------------------+",
		"|  incimap                       |",
		"|  incident chain mapper         |",
		"|                                |",
		"|  'n' New map                   |",
		"|  's' Sample map                |",
		"|  'o' Open existing map         |",
		"|  'q' Quit                      |",
		"+--------------------------------+",
	}
	out := strings.Join(lines, "\n")
	if m.errorMessage != "" {
		out += "\n\n" + errorStyle.Render("ERROR: "+m.errorMessage)
	}
	return out
}

func (m Model) openView() string {
	width := m.canvasWidth()
	var b strings.Builder
	b.WriteString("Select a saved map:\n")
	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")

	if len(m.fileList) == 0 {
		b.WriteString("(No map files found in " + m.openDir() + ")\n")
	} else {
		maxFiles := m.canvasHeight() - 4
		if maxFiles < 1 {
			maxFiles = 1
		}
		start := 0
		if m.selectedFile >= maxFiles {
			start = m.selectedFile - maxFiles + 1
		}
		end := start + maxFiles
		if end > len(m.fileList) {
			end = len(m.fileList)
		}
		for i := start; i < end; i++ {
			if i == m.selectedFile {
				b.WriteString("> " + m.fileList[i] + " <")
			} else {
				b.WriteString("  " + m.fileList[i])
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")
	b.WriteString("Filename: " + m.input.View())
	if m.errorMessage != "" {
		b.WriteString("\n" + errorStyle.Render("ERROR: "+m.errorMessage))
	}
	return b.String()
}

func (m Model) helpView() string {
	end := m.helpTop + m.canvasHeight()
	if end > len(helpLines) {
		end = len(helpLines)
	}
	return strings.Join(helpLines[m.helpTop:end], "\n")
}

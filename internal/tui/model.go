// Package tui is the terminal editor for incident maps.
package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"incimap/internal/config"
	"incimap/internal/layout"
	"incimap/internal/mapfile"
	"incimap/internal/store"
)

type Mode int

const (
	ModeStartup Mode = iota
	ModeNormal
	ModePrompt
	ModeOpen
	ModeConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeStartup:
		return "STARTUP"
	case ModeNormal:
		return "NORMAL"
	case ModePrompt:
		return "INPUT"
	case ModeOpen:
		return "OPEN"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

type promptKind int

const (
	promptRename promptKind = iota
	promptTitle
	promptSave
	promptExportPNG
)

type confirmAction int

const (
	confirmQuit confirmAction = iota
	confirmNewMap
	confirmOverwrite
	confirmReload
)

// Options configure a Model.
type Options struct {
	Store  *store.Store
	Config *config.Config
	Logger *zap.Logger
	// Path is the file the store was loaded from, if any.
	Path string
	// Digest is the content digest of the file at Path.
	Digest mapfile.Digest
	// Clipboard receives yanked text. Defaults to the system clipboard.
	Clipboard func(string) error
	// Watch turns on change notifications for the open file.
	Watch bool
}

// Model is the bubbletea model of the editor.
type Model struct {
	store  *store.Store
	cfg    *config.Config
	logger *zap.Logger
	copy   func(string) error

	width      int
	height     int
	origin     layout.Point
	panMode    bool
	seenLayout int

	mode    Mode
	help    bool
	helpTop int

	input       textinput.Model
	prompt      promptKind
	confirm     confirmAction
	pendingPath string

	fileList     []string
	selectedFile int
	fromStartup  bool

	path       string
	fileDigest mapfile.Digest
	clean      mapfile.Digest
	watch      bool
	watcher    *mapfile.Watcher

	errorMessage   string
	successMessage string
}

// New builds the editor around opts.Store.
func New(opts Options) Model {
	s := opts.Store
	if s == nil {
		s = store.New()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = ""

	m := Model{
		store:        s,
		cfg:          cfg,
		logger:       logger,
		copy:         copyFn,
		width:        80,
		height:       24,
		mode:         ModeNormal,
		input:        ti,
		selectedFile: -1,
		path:         opts.Path,
		fileDigest:   opts.Digest,
		watch:        opts.Watch,
	}
	if opts.Path == "" && cfg.Editor.StartMenu {
		m.mode = ModeStartup
	}
	m.markClean()
	m.recentre()
	if m.watch && m.path != "" {
		m.startWatching()
	}
	return m
}

// Store returns the store being edited.
func (m Model) Store() *store.Store { return m.store }

// Mode returns the current input mode.
func (m Model) Mode() Mode { return m.mode }

// Path returns the file backing the map, if any.
func (m Model) Path() string { return m.path }

// Dirty reports whether the map differs from what was last loaded or saved.
func (m Model) Dirty() bool {
	return mapfile.DocumentDigest(m.store.Document()) != m.clean
}

func (m *Model) markClean() {
	m.clean = mapfile.DocumentDigest(m.store.Document())
}

func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// Close releases the file watcher.
func (m Model) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recentre()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)

	case changeMsg:
		cmd = m.handleChange(msg)

	case tea.KeyMsg:
		switch {
		case m.help:
			m.handleHelpKey(msg.String())
			return m, nil
		case m.mode == ModeStartup:
			cmd = m.handleStartupKey(msg)
		case m.mode == ModePrompt:
			cmd = m.handlePromptKey(msg)
		case m.mode == ModeOpen:
			cmd = m.handleOpenKey(msg)
		case m.mode == ModeConfirm:
			cmd = m.handleConfirmKey(msg)
		default:
			cmd = m.handleNormalKey(msg)
		}
	}

	if v := m.store.LayoutVersion(); v != m.seenLayout {
		m.recentre()
	} else {
		m.ensureVisible(m.store.SelectionID())
	}
	return m, cmd
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"incimap/internal/history"
	"incimap/internal/logging"
	"incimap/internal/mapfile"
	"incimap/internal/store"
	"incimap/internal/tui"
)

var errNoTerminal = errors.New("the editor needs an interactive terminal")

var isTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func editCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the interactive editor",
		Long: `Open the interactive editor.

With a file argument the map is loaded from it, or started empty and saved
there if the file does not exist yet.

  incimap edit                  # start screen
  incimap edit outage.json      # edit a map`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errNoTerminal
	}
	cfg := loadConfig()

	logger, err := logging.NewFile(cfg.Log.Level, cfg.LogFile())
	if err != nil {
		Warn.Fprintf(cmd.ErrOrStderr(), "incimap: logging disabled: %v\n", err)
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	s := store.New(
		store.WithLogger(logger),
		store.WithHistoryOptions(history.WithWindow(cfg.Debounce())),
		store.WithShowDetails(cfg.Editor.ShowDetails),
	)

	opts := tui.Options{Store: s, Config: cfg, Logger: logger, Watch: true}
	if len(args) == 1 {
		path := args[0]
		doc, digest, err := mapfile.Load(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.NewMap()
		case err != nil:
			return err
		default:
			s.LoadMap(doc)
			opts.Digest = digest
		}
		opts.Path = path
	}

	model := tui.New(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		if cerr := m.Close(); cerr != nil {
			logger.Debug("close watcher", zap.Error(cerr))
		}
	}
	if err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}

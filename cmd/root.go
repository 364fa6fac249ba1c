package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"incimap/internal/config"
	"incimap/internal/logging"
)

var version = "0.3.0"

// Output colours.
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
	Warn   = color.New(color.FgYellow)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "incimap [file]",
		Short: "incimap — incident chain mapper",
		Long: Brand.Sprint("incimap") + " — map how an incident unfolded\n" +
			Subtle.Sprint("Chain events, link causes to effects and mark the barriers that held or failed"),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args)
		},
	}
	root.SetVersionTemplate("incimap {{ .Version }}\n")

	root.AddCommand(
		editCmd(),
		validateCmd(),
		fmtCmd(),
		exportCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil && err != errInvalid {
		Bad.Fprintf(root.ErrOrStderr(), "incimap: %v\n", err)
	}
	return err
}

// loadConfig reads the config file. A broken file is reported on stderr
// and the defaults are used.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.NewConsole()
		logger.Warn("using default config", zap.String("path", config.Path()), zap.Error(err))
		_ = logger.Sync()
	}
	return cfg
}

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"incimap/internal/incident"
	"incimap/internal/mapfile"
)

func fmtCmd() *cobra.Command {
	var (
		write  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "fmt [-w] [--format json|yaml] FILE",
		Short: "Rewrite a map in canonical form",
		Long: `Rewrite a map in canonical form: positions snapped to the grid, fields in
schema order.

Without -w the result goes to stdout. With -w and a format that differs
from the file extension, the output is written next to the input with
the new extension.

  incimap fmt outage.json
  incimap fmt -w --format yaml outage.json   # writes outage.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, _, err := mapfile.Load(path)
			if err != nil {
				return err
			}

			f := incident.FormatForPath(path)
			if cmd.Flags().Changed("format") {
				if f, err = incident.ParseFormat(format); err != nil {
					return err
				}
			}
			data, err := f.Encode(doc)
			if err != nil {
				return err
			}

			if !write {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			target := path
			if incident.FormatForPath(path) != f {
				target = strings.TrimSuffix(path, filepath.Ext(path)) + f.Ext()
			}
			if err := mapfile.WriteFile(target, data); err != nil {
				return err
			}
			Good.Fprint(cmd.OutOrStdout(), "  ✓ ")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back instead of printing it")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml (default: from extension)")
	return cmd
}

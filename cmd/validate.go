package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"incimap/internal/incident"
	"incimap/internal/mapfile"
)

// errInvalid is returned after the offending files have been reported.
var errInvalid = errors.New("invalid incident map")

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check incident map files",
		Long: `Check incident map files and list every problem found.

Exits non-zero if any file is invalid.

  incimap validate outage.json
  incimap validate maps/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				doc, _, err := mapfile.Load(path)
				if err != nil {
					failed++
					Bad.Fprint(out, "  ✗ ")
					fmt.Fprintln(out, path)
					var schema *incident.SchemaError
					if errors.As(err, &schema) {
						for _, issue := range schema.Issues {
							fmt.Fprintf(out, "      %s\n", issue.String())
						}
					} else {
						fmt.Fprintf(out, "      %v\n", err)
					}
					continue
				}
				Good.Fprint(out, "  ✓ ")
				fmt.Fprintf(out, "%s %s\n", path, Subtle.Sprintf("(%d nodes, %d edges, %d barriers)",
					len(doc.Nodes), len(doc.Edges), len(doc.Barriers)))
			}
			if failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files invalid\n", failed, len(args))
				return errInvalid
			}
			return nil
		},
	}
}

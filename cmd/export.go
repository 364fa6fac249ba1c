package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"incimap/internal/export"
	"incimap/internal/mapfile"
)

func exportCmd() *cobra.Command {
	var (
		pngOut  string
		txtOut  string
		details bool
		scale   float64
	)

	cmd := &cobra.Command{
		Use:   "export (--png OUT | --txt OUT) FILE",
		Short: "Render a map to an image or text file",
		Long: `Render a map to a PNG image or to a plain text drawing.

  incimap export --png outage.png outage.json
  incimap export --txt - outage.json          # drawing on stdout`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (pngOut == "") == (txtOut == "") {
				return errors.New("exactly one of --png or --txt is required")
			}
			doc, _, err := mapfile.Load(args[0])
			if err != nil {
				return err
			}

			var target string
			switch {
			case pngOut != "":
				target = pngOut
				err = export.PNGFile(pngOut, doc, export.Options{ShowDetails: details, Scale: scale})
			case txtOut == "-":
				return export.Text(cmd.OutOrStdout(), doc, details)
			default:
				target = txtOut
				err = export.TextFile(txtOut, doc, details)
			}
			if err != nil {
				return err
			}
			Good.Fprint(cmd.OutOrStdout(), "  ✓ ")
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&pngOut, "png", "", "Write a PNG image to this path")
	cmd.Flags().StringVar(&txtOut, "txt", "", "Write a text drawing to this path (- for stdout)")
	cmd.Flags().BoolVar(&details, "details", true, "Include descriptions and consequences")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Pixels per map unit for PNG output")
	return cmd
}

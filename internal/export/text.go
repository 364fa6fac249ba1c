package export

import (
	"fmt"
	"io"
	"strings"

	"incimap/internal/incident"
	"incimap/internal/mapfile"
	"incimap/internal/render"
)

// Text writes the character-cell drawing of the whole map, headed by its
// title when one is set.
func Text(w io.Writer, d incident.Document, showDetails bool) error {
	if len(d.Nodes) == 0 {
		return ErrEmpty
	}
	c, err := render.Full(render.Scene{
		Nodes:       d.Nodes,
		Edges:       d.Edges,
		Barriers:    d.Barriers,
		ShowDetails: showDetails,
	})
	if err != nil {
		return err
	}
	var b strings.Builder
	if title := d.Title(); title != "" {
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString(c.String())
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

// TextFile writes Text output to path.
func TextFile(path string, d incident.Document, showDetails bool) error {
	var b strings.Builder
	if err := Text(&b, d, showDetails); err != nil {
		return err
	}
	return mapfile.WriteFile(path, []byte(b.String()))
}

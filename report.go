package sxm

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bodgit/sxm/header"
	"github.com/bodgit/sxm/metadata"
)

// WriteHeaderKeys writes the available header keys to w as a
// column-major table. It is purely diagnostic and plays no part in
// decoding.
func WriteHeaderKeys(w io.Writer, m *header.Map, columns int) error {
	keys := m.Keys()
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "no header keys")
		return err
	}

	if columns < 1 {
		columns = 1
	}

	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}
	width += 2

	rows := (len(keys) + columns - 1) / columns
	for r := 0; r < rows; r++ {
		cells := make([]string, 0, columns)
		for c := 0; c < columns; c++ {
			if i := r + c*rows; i < len(keys) {
				cells = append(cells, fmt.Sprintf("%-*s", width, keys[i]))
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " | "), " ")); err != nil {
			return err
		}
	}

	return nil
}

// WriteChannels writes the resolved channel table to w.
func WriteChannels(w io.Writer, channels []metadata.Channel) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tUNIT")
	for _, c := range channels {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, c.Unit)
	}

	return tw.Flush()
}

// WriteShapes writes the per-channel grid dimensions of a fully
// decoded image to w.
func WriteShapes(w io.Writer, img *Image) error {
	if img.Data == nil {
		_, err := fmt.Fprintln(w, "no data loaded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	for _, c := range img.Metadata.Channels {
		d, ok := img.Data[c.Name]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\tforward\t(%d, %d)\n", c.Name, d.Forward.Rows(), d.Forward.Cols())
		fmt.Fprintf(tw, "%s\tbackward\t(%d, %d)\n", c.Name, d.Backward.Rows(), d.Backward.Cols())
	}

	return tw.Flush()
}

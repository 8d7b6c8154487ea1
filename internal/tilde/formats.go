package tilde

import (
	"fmt"
	"strings"

	"go.followtheprocess.codes/tilde/internal/convert"
	"go.followtheprocess.codes/tilde/internal/format"
)

// Formats implements the formats subcommand, listing every format and the
// formats it can be converted to.
func (t Tilde) Formats() {
	converter := convert.New(nil)

	formats := converter.Formats()

	width := 0
	for _, f := range formats {
		width = max(width, len(f.String()))
	}

	for _, f := range formats {
		name := f.String()
		padding := strings.Repeat(" ", width-len(name))

		fmt.Fprintf(
			t.stdout,
			"%s%s  %s %s\n",
			formatStyle.Text(name),
			padding,
			dimmed.Text("converts to"),
			format.Names(converter.Targets(f)),
		)
	}
}

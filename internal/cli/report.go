package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	houdini "github.com/luxalpa/houdini-node"
)

// formatIssue renders a codec failure for humans:
//
//	✗ CARDINALITY_MISMATCH at input 0 /attributes/point/0
//	   point attribute "mass" (float)
//	   got 2 values, expected 3
func formatIssue(iss houdini.Issue) string {
	var b strings.Builder
	header := color.New(color.FgRed, color.Bold)
	body := color.New(color.FgRed)
	dim := color.New(color.FgHiBlack)

	header.Fprintf(&b, "✗ %s", strings.ToUpper(iss.Code))
	if iss.Input >= 0 {
		header.Fprintf(&b, " at input %d", iss.Input)
	}
	if iss.Path != "" {
		dim.Fprintf(&b, " %s", iss.Path)
	}
	b.WriteString("\n")
	if iss.Name != "" {
		body.Fprintf(&b, "   %s attribute %q", iss.Class, iss.Name)
		if iss.Kind != "" {
			body.Fprintf(&b, " (%s)", iss.Kind)
		}
		b.WriteString("\n")
	}
	if iss.Message != "" {
		body.Fprintf(&b, "   %s\n", iss.Message)
	}
	return b.String()
}

// writeError prints err, using the structured form when it carries an Issue.
func writeError(w io.Writer, err error) {
	if iss, ok := houdini.AsIssue(err); ok {
		fmt.Fprint(w, formatIssue(iss))
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(w, "Error: %v\n", err)
}

func success(w io.Writer, format string, a ...any) {
	color.New(color.FgGreen, color.Bold).Fprintf(w, "✓ "+format+"\n", a...)
}

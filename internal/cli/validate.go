package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	houdini "github.com/luxalpa/houdini-node"
	"github.com/luxalpa/houdini-node/decl"
)

func (a *app) newValidateCommand() *cobra.Command {
	var declPath string
	cmd := &cobra.Command{
		Use:   "validate <payload|->",
		Short: "Check a transfer payload against the exchange rules",
		Long: `Decode a transfer payload and report the first problem found.

With --decl the parameters of a node declaration are checked on input 0,
and absent ones are reported as defaulted.

Examples:
  hnode validate input.json
  houdini_dump | hnode validate -
  hnode validate --decl node.yaml input.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, geos, err := a.decodeArg(cmd, args[0], declPath)
			if err != nil {
				return err
			}
			describeGeometries(cmd.OutOrStdout(), geos)
			success(cmd.OutOrStdout(), "%s: %d input(s) valid", args[0], len(geos))
			return nil
		},
	}
	cmd.Flags().StringVar(&declPath, "decl", "", "Node declaration whose parameter schema applies to input 0")
	return cmd
}

// decodeArg reads the payload named by arg and decodes it with the
// configured limits and the optional declaration schemas.
func (a *app) decodeArg(cmd *cobra.Command, arg, declPath string) ([]byte, []*houdini.Geometry, error) {
	payload, err := readInput(cmd, arg)
	if err != nil {
		return nil, nil, err
	}
	var schemas []*houdini.Schema
	if declPath != "" {
		d, err := decl.Load(declPath)
		if err != nil {
			return nil, nil, err
		}
		if schemas, err = d.InputSchemas(); err != nil {
			return nil, nil, err
		}
		a.log.Debug("declaration loaded", "name", d.Name, "params", len(d.Params))
	}
	opt := a.cfg.DecodeOpt(schemas...)
	opt.OnWarning = func(iss houdini.Issue) {
		a.log.Warn(iss.Message, "code", iss.Code, "path", iss.Path)
	}
	geos, err := houdini.Decode(payload, opt)
	if err != nil {
		return nil, nil, err
	}
	a.log.Debug("payload decoded", "bytes", len(payload), "inputs", len(geos))
	return payload, geos, nil
}

func describeGeometries(w io.Writer, geos []*houdini.Geometry) {
	title := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	for i, g := range geos {
		if g == nil {
			title.Fprintf(w, "input %d: ", i)
			dim.Fprintln(w, "not connected")
			continue
		}
		c := g.Counts()
		title.Fprintf(w, "input %d: ", i)
		fmt.Fprintf(w, "%d points, %d primitives, %d vertices\n", c.Points, c.Primitives, c.Vertices)
		for _, class := range houdini.Classes {
			for attr := range g.AttributesOf(class) {
				fmt.Fprintf(w, "  %s", attr)
				if attr.Presence().DefaultOnly() {
					dim.Fprint(w, " (default)")
				}
				fmt.Fprintln(w)
			}
		}
		if t := g.Topology(); t != nil {
			fmt.Fprintf(w, "  topology: vertex points %v, primitive vertices %v\n", t.HasVertexPoints(), t.HasPrimitiveVertices())
		}
	}
}

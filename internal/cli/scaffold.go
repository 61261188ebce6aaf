package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxalpa/houdini-node/decl"
	"github.com/luxalpa/houdini-node/internal/watch"
	"github.com/luxalpa/houdini-node/scaffold"
)

const defaultDebounce = 100 * time.Millisecond

func (a *app) newScaffoldCommand() *cobra.Command {
	var (
		outputDir string
		watchDecl bool
	)
	cmd := &cobra.Command{
		Use:   "scaffold <decl>",
		Short: "Generate the digital asset sections for a node declaration",
		Long: `Render the expanded digital asset library that runs a node executable
from inside Houdini: INDEX__SECTION (operator name and input count),
houdini.hdalibrary, and the operator's DialogScript, PythonCook and
Sections.list.

The library is written to <output>/<name>.hda/ and can be collapsed into a
single file with hotl -l <output>/<name>.hda <name>.hda.

Examples:
  hnode scaffold node.yaml
  hnode scaffold -o otls node.toml
  hnode scaffold --watch node.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = a.cfg.Scaffold.OutputDir
			}
			gen := func() error { return a.scaffold(cmd, args[0], outputDir) }
			if err := gen(); err != nil {
				return err
			}
			if !watchDecl {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch.File(ctx, args[0], gen, watch.Options{
				Debounce: defaultDebounce,
				OnError: func(err error) {
					a.log.Error("regeneration failed", "err", err)
				},
				OnReady: func() {
					a.log.Info("watching for changes", "file", args[0])
				},
			})
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default scaffold.output_dir from config)")
	cmd.Flags().BoolVar(&watchDecl, "watch", false, "Regenerate whenever the declaration changes")
	return cmd
}

func (a *app) scaffold(cmd *cobra.Command, path, outputDir string) error {
	d, err := decl.Load(path)
	if err != nil {
		return err
	}
	if d.Inputs > a.cfg.Scaffold.MaxInputs {
		return fmt.Errorf("%s declares %d inputs, at most %d allowed", path, d.Inputs, a.cfg.Scaffold.MaxInputs)
	}
	asset, err := scaffold.Generate(d)
	if err != nil {
		return err
	}
	root, err := asset.WriteDir(outputDir)
	if err != nil {
		return err
	}
	a.log.Debug("asset rendered", "name", d.Name, "sections", len(asset.Sections))
	success(cmd.OutOrStdout(), "%s written to %s", d.Name, root)
	return nil
}

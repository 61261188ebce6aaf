package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	houdini "github.com/luxalpa/houdini-node"
)

func (a *app) newFmtCommand() *cobra.Command {
	var (
		declPath string
		indent   bool
		preserve bool
		write    bool
	)
	cmd := &cobra.Command{
		Use:   "fmt <payload|->",
		Short: "Rewrite a transfer payload in canonical form",
		Long: `Decode a transfer payload and encode it again. The output always carries
all four class arrays and the three counts, in a stable order. A single
geometry object stays an object; an array of input slots stays an array.

Examples:
  hnode fmt input.json
  hnode fmt --indent - < input.json
  hnode fmt --decl node.yaml --preserve input.json
  hnode fmt -w input.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, geos, err := a.decodeArg(cmd, args[0], declPath)
			if err != nil {
				return err
			}
			opt := a.cfg.EncodeOpt()
			if cmd.Flags().Changed("indent") {
				opt.Indent = indent
			}
			if cmd.Flags().Changed("preserve") {
				opt.Mode = houdini.EncodeCanonical
				if preserve {
					opt.Mode = houdini.EncodePreserve
				}
			}
			var out []byte
			if bytes.HasPrefix(bytes.TrimSpace(payload), []byte("{")) {
				out, err = houdini.EncodeOne(geos[0], opt)
			} else {
				out, err = houdini.Encode(geos, opt)
			}
			if err != nil {
				return err
			}
			if write && args[0] != "-" {
				if err := os.WriteFile(args[0], append(out, '\n'), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
				a.log.Info("formatted", "file", args[0])
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&declPath, "decl", "", "Node declaration whose parameter schema applies to input 0")
	cmd.Flags().BoolVar(&indent, "indent", false, "Indent the output")
	cmd.Flags().BoolVar(&preserve, "preserve", false, "Omit attributes that only exist because of declaration defaults")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the payload file")
	return cmd
}

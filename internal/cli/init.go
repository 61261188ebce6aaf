package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/luxalpa/houdini-node/decl"
)

type initOptions struct {
	command string
	inputs  int
	format  string
	output  string
	noInput bool
}

func (a *app) newInitCommand() *cobra.Command {
	var opts initOptions
	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a node declaration",
		Long: `Create a node declaration file describing the node name, its executable
and its inputs. Missing values are asked for interactively unless
--no-input is given.

Examples:
  hnode init double_mass
  hnode init double_mass --command ./double_mass --inputs 2 --format toml
  hnode init`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			if !cmd.Flags().Changed("inputs") {
				opts.inputs = a.cfg.Scaffold.MaxInputs
			}
			return a.runInit(cmd, name, opts, cmd.Flags().Changed("format"))
		},
	}
	cmd.Flags().StringVar(&opts.command, "command", "", "Node executable (default ./<name>)")
	cmd.Flags().IntVar(&opts.inputs, "inputs", 0, "Number of geometry inputs (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", string(decl.FormatYAML), "Declaration format: yaml or toml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Declaration file (default <name>.<format>)")
	cmd.Flags().BoolVar(&opts.noInput, "no-input", false, "Never prompt; fail on missing values")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, name string, opts initOptions, formatSet bool) error {
	if name == "" {
		if opts.noInput {
			return errors.New("a node name is required with --no-input")
		}
		prompt := &survey.Input{
			Message: "Node name:",
		}
		if err := survey.AskOne(prompt, &name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if opts.command == "" {
		opts.command = "./" + name
		if !opts.noInput {
			prompt := &survey.Input{
				Message: "Node executable:",
				Default: opts.command,
			}
			if err := survey.AskOne(prompt, &opts.command, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
			var inputs string
			prompt = &survey.Input{
				Message: "Geometry inputs:",
				Default: strconv.Itoa(opts.inputs),
			}
			if err := survey.AskOne(prompt, &inputs); err != nil {
				return err
			}
			n, err := strconv.Atoi(inputs)
			if err != nil {
				return fmt.Errorf("invalid number of inputs %q: %w", inputs, err)
			}
			opts.inputs = n
		}
	}
	if !formatSet && !opts.noInput {
		sel := &survey.Select{
			Message: "Declaration format:",
			Options: []string{string(decl.FormatYAML), string(decl.FormatTOML)},
			Default: string(decl.FormatYAML),
		}
		if err := survey.AskOne(sel, &opts.format); err != nil {
			return err
		}
	}

	format := decl.Format(opts.format)
	if format != decl.FormatYAML && format != decl.FormatTOML {
		return fmt.Errorf("format must be yaml or toml, got: %s", opts.format)
	}
	if opts.inputs > a.cfg.Scaffold.MaxInputs {
		return fmt.Errorf("%d inputs requested, at most %d allowed", opts.inputs, a.cfg.Scaffold.MaxInputs)
	}

	d := &decl.Declaration{
		Name:    name,
		Command: opts.command,
		Inputs:  opts.inputs,
	}
	if err := d.Validate(); err != nil {
		return err
	}
	data, err := d.Marshal(format)
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = name + "." + string(format)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.log.Debug("declaration written", "file", path, "format", format)
	success(cmd.OutOrStdout(), "created %s", path)
	return nil
}

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/datapack/vm"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file> [function...]",
		Short: "Simulate a program: run its load functions, then each named function",
		Long: `Simulate a program in the command interpreter. Functions tagged
minecraft:load run first. A function named without a namespace, such as
"main", resolves to the program's own function of that name.`,
		RunE: runHandler,
	}
	flags := cmd.Flags()
	flags.Int("max-commands", vm.DefaultMaxCommands, "Stop after executing this many commands")
	flags.Bool("trace", false, "Log every executed command")
	flags.Bool("scores", true, "Print the final scores")
	flags.Bool("strict-objectives", false, "Fail on scores of undeclared objectives")
	viper.BindPFlag("max-commands", flags.Lookup("max-commands"))
	return cmd
}

func runHandler(cmd *cobra.Command, args []string) error {
	var paths []string
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		paths, args = args, nil
	} else if len(args) > 0 {
		paths, args = args[1:], args[:1]
	}
	c, err := compileSource(cmd, args)
	if err != nil {
		return err
	}
	listing, err := c.Emit()
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), c.Warnings())

	if programs := c.Programs(); len(programs) > 0 {
		root := programs[0].Root().Name()
		for i, p := range paths {
			if !strings.Contains(p, ":") {
				paths[i] = root + ":" + p + "/" + p
			}
		}
	}

	opts := []vm.Option{vm.WithMaxCommands(viper.GetInt("max-commands"))}
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		logger := newLogger(cmd.ErrOrStderr()).Level(zerolog.TraceLevel)
		opts = append(opts, vm.WithObserver(vm.NewLogObserver(logger)))
	}
	if strict, _ := cmd.Flags().GetBool("strict-objectives"); strict {
		opts = append(opts, vm.WithStrictObjectives())
	}
	m, runErr := vm.RunListing(cmd.Context(), listing, paths, opts...)

	out := cmd.OutOrStdout()
	for _, line := range m.Chat() {
		fmt.Fprintln(out, line)
	}
	if scores, _ := cmd.Flags().GetBool("scores"); scores {
		for _, objective := range m.Objectives() {
			values := m.Scores(objective)
			holders := make([]string, 0, len(values))
			for holder := range values {
				holders = append(holders, holder)
			}
			sort.Strings(holders)
			for _, holder := range holders {
				fmt.Fprintf(out, "%s %s = %d\n", objective, holder, values[holder])
			}
		}
	}
	return runErr
}

package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/datapack/export"
)

// packFs is where build writes packs.
var packFs = afero.NewOsFs()

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a program and write it as a data pack",
		Args:  cobra.MaximumNArgs(1),
		RunE:  buildHandler,
	}
	flags := cmd.Flags()
	flags.StringP("output", "o", "out", "Pack directory")
	flags.Int("pack-format", export.DefaultPackFormat, "Value of pack_format in pack.mcmeta")
	flags.String("description", "", "Pack description")
	flags.String("function-dir", export.DefaultFunctionDir, "Name of the function directory")
	flags.Bool("clean", false, "Remove the pack's data directory first")
	for _, name := range []string{"pack-format", "description", "function-dir"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func buildHandler(cmd *cobra.Command, args []string) error {
	c, err := compileSource(cmd, args)
	if err != nil {
		return err
	}
	listing, err := c.Emit()
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), c.Warnings())

	dir, _ := cmd.Flags().GetString("output")
	clean, _ := cmd.Flags().GetBool("clean")
	summary, err := export.Write(packFs, dir, listing, export.Config{
		PackFormat:  viper.GetInt("pack-format"),
		Description: viper.GetString("description"),
		FunctionDir: viper.GetString("function-dir"),
		Clean:       clean,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if viper.GetBool("verbose") {
		for _, f := range summary.Files {
			fmt.Fprintln(out, f)
		}
	}
	fmt.Fprintf(out, "wrote %d functions and %d tags to %s\n", summary.Functions, summary.Tags, dir)
	return nil
}

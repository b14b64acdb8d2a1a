package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/datapack"
)

func getDatapackOptions(cmd *cobra.Command, filename string) []datapack.Option {
	opts := []datapack.Option{
		datapack.WithLogger(newLogger(cmd.ErrOrStderr())),
	}
	if filename != "" {
		opts = append(opts, datapack.WithFilename(filename))
	}
	if objective := viper.GetString("objective"); objective != "" {
		opts = append(opts, datapack.WithObjective(objective))
	}
	if viper.GetBool("no-std") {
		return append(opts, datapack.WithoutStd())
	}
	if library := viper.GetString("library"); library != "" {
		opts = append(opts, datapack.WithNamespace(library))
	}
	if viper.GetBool("greeting") {
		opts = append(opts, datapack.WithGreeting())
	}
	return opts
}

// getSource returns the program document and the name it is reported
// under. The document comes from --code, a path, or stdin when the path
// is "-".
func getSource(cmd *cobra.Command, args []string) (string, string, error) {
	var codeFlagSet bool
	if f := cmd.Flags().Lookup("code"); f != nil && f.Changed {
		codeFlagSet = true
	}
	pathSupplied := len(args) > 0 && args[0] != ""
	if pathSupplied && codeFlagSet {
		return "", "", errors.New("multiple input sources specified")
	}
	if codeFlagSet {
		return viper.GetString("code"), "", nil
	}
	if !pathSupplied {
		return "", "", errors.New("no input: pass a file, - for stdin, or --code")
	}
	if args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return string(data), args[0], nil
}

func compileSource(cmd *cobra.Command, args []string) (*datapack.Compilation, error) {
	source, filename, err := getSource(cmd, args)
	if err != nil {
		return nil, err
	}
	c, err := datapack.New(getDatapackOptions(cmd, filename)...)
	if err != nil {
		return nil, err
	}
	if _, err := c.Compile(cmd.Context(), source); err != nil {
		printWarnings(cmd.ErrOrStderr(), c.Warnings())
		return nil, err
	}
	return c, nil
}

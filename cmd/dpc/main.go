// Command dpc compiles program documents into data packs, lists the
// rendered functions and simulates them.
package main

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dpc",
		Short:         "Compile structured programs into data packs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			processGlobalFlags()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default $HOME/.dpc.yaml)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Log compilation steps to stderr")
	flags.String("objective", "", "Scoreboard objective for variables")
	flags.String("library", "", "Name of the standard library namespace")
	flags.Bool("no-std", false, "Compile without the standard library")
	flags.Bool("greeting", false, "Announce the library when it loads")
	flags.StringP("code", "c", "", "Program source to compile")
	for _, name := range []string{
		"config", "no-color", "verbose", "objective", "library", "no-std",
		"greeting", "code",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newBuildCmd(),
		newListCmd(),
		newRunCmd(),
		newVersionCmd(),
	)
	return root
}

// initConfig reads the optional config file and DPC_ environment
// variables. Flags set on the command line take precedence.
func initConfig() error {
	viper.SetEnvPrefix("dpc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfg := viper.GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		return nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(".dpc")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

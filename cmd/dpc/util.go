package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/datapack/errors"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = errors.NewFormatter(useColor()).FormatError(msg)
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(strings.TrimRight(s, "\n")))
	os.Exit(1)
}

func isTerminalIO() bool {
	stdout := os.Stdout.Fd()
	stderr := os.Stderr.Fd()
	outTerm := isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
	errTerm := isatty.IsTerminal(stderr) || isatty.IsCygwinTerminal(stderr)
	return outTerm && errTerm
}

func useColor() bool {
	return !viper.GetBool("no-color") && isTerminalIO()
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() {
	if !useColor() {
		color.NoColor = true
	}
}

func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !useColor()}).
		Level(level).
		With().Timestamp().Logger()
}

var outputFormatsCompletion = []string{"json", "text"}

func getOutputJSON(v any) ([]byte, error) {
	if !useColor() {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}

func printWarnings(w io.Writer, warnings []*errors.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprint(w, errors.NewFormatter(useColor()).FormatWarnings(warnings))
}

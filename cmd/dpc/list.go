package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/datapack/emit"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "Print the rendered functions of a program",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listHandler,
	}
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

type listedFunction struct {
	Path        string   `json:"path"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Lines       []string `json:"lines"`
}

type listed struct {
	Functions []listedFunction    `json:"functions"`
	Tags      map[string][]string `json:"tags"`
}

func listHandler(cmd *cobra.Command, args []string) error {
	c, err := compileSource(cmd, args)
	if err != nil {
		return err
	}
	listing, err := c.Emit()
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), c.Warnings())

	format, _ := cmd.Flags().GetString("output")
	switch strings.ToLower(format) {
	case "", "text":
		fmt.Fprint(cmd.OutOrStdout(), listingText(listing))
		return nil
	case "json":
		output, err := getOutputJSON(listingJSON(listing))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func listingText(listing *emit.Listing) string {
	var b strings.Builder
	for i, fn := range listing.Functions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "# %s\n", fn.Path)
		b.WriteString(fn.Text())
	}
	return b.String()
}

func listingJSON(listing *emit.Listing) listed {
	out := listed{Tags: listing.Tags}
	for _, fn := range listing.Functions {
		lines := fn.Lines
		if lines == nil {
			lines = []string{}
		}
		out.Functions = append(out.Functions, listedFunction{
			Path:        fn.Path,
			Description: fn.Description,
			Tags:        fn.Tags,
			Lines:       lines,
		})
	}
	return out
}

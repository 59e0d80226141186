package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlstate"
	"github.com/vango-dev/urlstate/pkg/codec"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "urlstate",
		Short: "Serialize state trees to URL-safe text and back",
		Long: `urlstate converts JSON state to compact query-string text and back.

Two layouts are available: a single namespaced string (the default) and
flat key=value fields. Pipe JSON in to encode, pipe encoded text in to
decode.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("plain", false, "plain mode: no type markers, types recovered heuristically")
	rootCmd.PersistentFlags().Bool("digit-bools", false, "write booleans as 1/0")
	rootCmd.PersistentFlags().Bool("iso-dates", false, "write times as ISO 8601 instead of epoch millis")
	rootCmd.PersistentFlags().Bool("bracket-index", false, "address array elements as items[0] instead of items.0")

	rootCmd.AddCommand(
		encodeCmd(),
		decodeCmd(),
		fieldsCmd(),
		versionCmd(),
	)

	return rootCmd
}

// engineFromFlags builds the Engine shared by every subcommand.
func engineFromFlags(cmd *cobra.Command) (*urlstate.Engine, error) {
	var opts []codec.Option
	flags := cmd.Flags()
	if v, _ := flags.GetBool("plain"); v {
		opts = append(opts, codec.Plain())
	}
	if v, _ := flags.GetBool("digit-bools"); v {
		opts = append(opts, codec.WithBooleanStyle(codec.BooleanDigit))
	}
	if v, _ := flags.GetBool("iso-dates"); v {
		opts = append(opts, codec.WithDateStyle(codec.DateISO))
	}
	if v, _ := flags.GetBool("bracket-index"); v {
		opts = append(opts, codec.WithIndexStyle(codec.IndexBracket))
	}
	return urlstate.New(opts...)
}

// readInput returns the first positional argument, or all of stdin.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}
	return io.ReadAll(cmd.InOrStdin())
}

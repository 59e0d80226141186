package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlstate/pkg/value"
)

func decodeCmd() *cobra.Command {
	var asQuery bool
	var hintJSON string

	cmd := &cobra.Command{
		Use:   "decode [text]",
		Short: "Decode URL state text back to JSON",
		Long: `Decode namespaced URL state text (or, with --query, a full query
string) back into JSON.

A hint is a JSON document with the expected shape; it guides type
recovery where the text alone is ambiguous, which matters most in
plain mode.

Examples:
  urlstate decode 'count:5,nested.hello=World'
  urlstate decode --query 'q=shoes&page=2'
  urlstate decode --plain --hint '{"page":0}' 'page=2'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := engineFromFlags(cmd)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			text := strings.TrimRight(string(data), "\r\n")

			hint := value.Undefined()
			if hintJSON != "" {
				hint, err = value.FromJSON([]byte(hintJSON))
				if err != nil {
					return fmt.Errorf("invalid hint JSON: %w", err)
				}
			}

			var v value.Value
			if asQuery {
				v = engine.ParseQuery(text, hint)
			} else {
				v, err = engine.Parse(text, hint)
				if err != nil {
					return err
				}
			}
			out, err := value.ToJSON(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asQuery, "query", "q", false, "treat input as a full query string in the standalone layout")
	cmd.Flags().StringVar(&hintJSON, "hint", "", "JSON document describing the expected shape")

	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlstate/pkg/value"
)

func encodeCmd() *cobra.Command {
	var asQuery bool

	cmd := &cobra.Command{
		Use:   "encode [json]",
		Short: "Encode JSON state as URL text",
		Long: `Encode a JSON document as namespaced URL state text.

Reads JSON from the argument or stdin and prints the encoded form.

Examples:
  urlstate encode '{"count":5,"nested":{"hello":"World"}}'
  echo '{"q":"shoes","page":2}' | urlstate encode
  urlstate encode --query '{"q":"shoes","tags":["a","b"]}'`,
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
			v, err := value.FromJSON(data)
			if err != nil {
				return fmt.Errorf("invalid JSON input: %w", err)
			}
			if asQuery {
				fmt.Fprintln(cmd.OutOrStdout(), engine.FormatQuery(v))
				return nil
			}
			text, err := engine.Stringify(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asQuery, "query", "q", false, "emit a full query string in the standalone layout")

	return cmd
}

func fieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields [json]",
		Short: "Flatten JSON state into key=value fields",
		Long: `Flatten a JSON document into standalone fields, one "key=value" per
line, unescaped. Use "encode --query" for a percent-escaped query string.`,
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
			v, err := value.FromJSON(data)
			if err != nil {
				return fmt.Errorf("invalid JSON input: %w", err)
			}
			var b strings.Builder
			for _, f := range engine.StringifyFields(v) {
				b.WriteString(f.Key)
				b.WriteByte('=')
				b.WriteString(f.Value)
				b.WriteByte('\n')
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}

	return cmd
}

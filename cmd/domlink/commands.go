package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/QuadTriangle/domlink/internal/registry"
	"github.com/QuadTriangle/domlink/internal/shellwords"
)

func newCommandsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the commands a server may send",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTARGET\tKIND\tDESCRIPTION")
			for _, h := range reg.Handlers() {
				kind := "mutation"
				if h.Query {
					kind = "query"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Name, targetName(h.Target), kind, h.Desc)
			}
			return w.Flush()
		},
	}
}

func targetName(t registry.Target) string {
	switch t {
	case registry.TargetRequired:
		return "required"
	case registry.TargetOptional:
		return "optional"
	default:
		return "none"
	}
}

func newTokenizeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tokenize <text>...",
		Short: "Show how typed input is split into CMD arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := shellwords.Split(strings.Join(args, " "))
			if asJSON {
				data, err := json.Marshal(tokens)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			for _, t := range tokens {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tokens as a JSON array")
	return cmd
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/engine"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [AUTHENTICATOR]",
	Short: "Show the configuration schema of the built-in authenticators",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		factories := engine.DefaultRegistry().List()
		if len(args) == 1 {
			factory, ok := engine.DefaultRegistry().Get(args[0])
			if !ok {
				return fmt.Errorf("unknown authenticator '%s'", args[0])
			}
			factories = []core.AuthenticatorFactory{factory}
		}

		for _, factory := range factories {
			printSchema(factory)
		}
		return nil
	},
}

func printSchema(factory core.AuthenticatorFactory) {
	choices := make([]string, 0)
	for _, r := range factory.RequirementChoices() {
		choices = append(choices, string(r))
	}

	fmt.Printf("\n%s %s\n", bold(factory.DisplayType()), faint("("+factory.ID()+")"))
	fmt.Printf("  %s\n", factory.HelpText())
	fmt.Printf("  %s: %s\n", faint("Category"), factory.ReferenceCategory())
	fmt.Printf("  %s: %s\n\n", faint("Requirements"), strings.Join(choices, ", "))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Key", "Label", "Type", "Default", "Help"})
	for _, p := range factory.ConfigProperties() {
		t.AppendRow(table.Row{
			bold(p.Name),
			p.Label,
			string(p.Type),
			p.DefaultString(),
			truncate(p.HelpText, 60),
		})
	}
	applyTableFormat(t)
	t.Render()
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

package cli

import (
	"maps"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvillar/layoutpdf/vars"
)

func newVarsCmd() *cobra.Command {
	var (
		varsFile string
		sets     []string
	)

	cmd := &cobra.Command{
		Use:   "vars <template.json>",
		Short: "Report a template's variables",
		Long:  `Print, as JSON, the variables a template declares and references, which required ones have no value yet, and sample values for previews.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readTemplate(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			values := map[string]string{}
			if varsFile != "" {
				if values, err = readValues(varsFile); err != nil {
					return err
				}
			}
			assigned, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			maps.Copy(values, assigned)
			return writeJSON(cmd.OutOrStdout(), vars.Inspect(doc, values, time.Now()))
		},
	}

	cmd.Flags().StringVar(&varsFile, "vars", "", "JSON file with variable values")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "set a variable (name=value), repeatable")
	return cmd
}

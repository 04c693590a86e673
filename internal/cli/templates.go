package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lvillar/layoutpdf/store"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Manage stored templates",
		Long:    `Manage the template repository configured in the [store] section.`,
	}

	cmd.AddCommand(
		newTemplatesListCmd(),
		newTemplatesGetCmd(),
		newTemplatesImportCmd(),
		newTemplatesDuplicateCmd(),
		newTemplatesDeleteCmd(),
	)
	return cmd
}

// withRepository opens the configured repository for the duration of fn.
func withRepository(cmd *cobra.Command, fn func(store.Repository) error) error {
	ctx := cmd.Context()
	repo, closeRepo, err := openRepository(ctx, configFromContext(ctx), loggerFromContext(ctx))
	if err != nil {
		return err
	}
	defer closeRepo()
	return fn(repo)
}

func newTemplatesListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(repo store.Repository) error {
				list, err := repo.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), list)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tELEMENTS\tUPDATED")
				for _, s := range list {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Elements, s.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newTemplatesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(repo store.Repository) error {
				doc, err := repo.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), doc)
			})
		},
	}
}

func newTemplatesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <template.json>",
		Short: "Store a template file and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readTemplate(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withRepository(cmd, func(repo store.Repository) error {
				stored, err := repo.Create(cmd.Context(), doc)
				if err != nil {
					return err
				}
				loggerFromContext(cmd.Context()).Info("Imported template", "id", stored.ID, "name", stored.Name)
				fmt.Fprintln(cmd.OutOrStdout(), stored.ID)
				return nil
			})
		},
	}
}

func newTemplatesDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a stored template and print the new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(repo store.Repository) error {
				doc, err := repo.Duplicate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
				return nil
			})
		},
	}
}

func newTemplatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(repo store.Repository) error {
				return repo.Delete(cmd.Context(), args[0])
			})
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-autocategorize/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the list of valid categories",
		Long:  `List or add the categories transactions can be labeled with.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <database>",
		Short: "List all categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			vocabulary, err := store.ListCategories(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if vocabulary.Len() == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'spice categories add' to create one."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Categories (%d)", vocabulary.Len())))
			for _, name := range vocabulary.Names() {
				fmt.Fprintf(out, "  • %s\n", name)
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <database> <name> [name...]",
		Short: "Add one or more categories",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			names := args[1:]
			added, err := store.AddCategories(cmd.Context(), names)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Added %d categories", added)))
			if skipped := len(names) - added; skipped > 0 {
				fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%d already existed", skipped)))
			}
			return nil
		},
	}
}

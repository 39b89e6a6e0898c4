// Package categories imports and lists transaction categories.
package categories

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"fjacquet/fintrack/cmd/root"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/store"
	"fjacquet/fintrack/internal/validation"

	"github.com/spf13/cobra"
)

var input string

// Cmd groups the category commands
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage transaction categories",
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import categories from a YAML file",
	Long: `Import categories from a YAML file. Parents may be listed after their
children; categories the user already has are skipped.`,
	RunE: importFunc,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the categories of a user",
	RunE:  listFunc,
}

func init() {
	importCmd.Flags().StringVarP(&input, "input", "i", "", "Category YAML file")
	Cmd.AddCommand(importCmd, listCmd)
}

func importFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidInputFile(input); err != nil {
		return err
	}
	user, err := root.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	specs, err := store.LoadCategoryFile(input)
	if err != nil {
		return err
	}
	c, _ := root.GetContainer()
	result, err := c.GetStore().ImportCategories(cmd.Context(), user.ID, specs)
	if err != nil {
		return err
	}
	return root.WriteOutput([]byte(fmt.Sprintf("created %d, skipped %d\n", result.Created, result.Skipped)))
}

func listFunc(cmd *cobra.Command, args []string) error {
	user, err := root.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	c, _ := root.GetContainer()
	cats, err := c.GetStore().ListCategories(cmd.Context(), user.ID)
	if err != nil {
		return err
	}
	return root.WriteOutput(table(cats))
}

func table(cats []models.Category) []byte {
	names := make(map[uint]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPARENT\tBUSINESS")
	for _, c := range cats {
		parent := ""
		if c.ParentID != nil {
			parent = names[*c.ParentID]
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", c.ID, c.Name, parent, c.IsBusinessExpense)
	}
	_ = w.Flush()
	return buf.Bytes()
}

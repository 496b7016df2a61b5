package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"
)

// writeRecipes 以表格或 JSON 輸出食譜清單
func writeRecipes(w io.Writer, recipes []common.Recipe, asJSON bool) error {
	if asJSON {
		return writeJSON(w, recipe.NewSearchResponse(recipes))
	}

	if len(recipes) == 0 {
		_, err := fmt.Fprintln(w, "No matching recipes.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tINGREDIENTS\tONLY IN INSTRUCTIONS")
	fmt.Fprintln(tw, "--\t-----\t--------\t-----------\t--------------------")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Title, r.Category, len(r.Ingredients), strings.Join(r.UnmatchedRequested, ", "))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\n%d recipe(s)\n", len(recipes))
	return err
}

// writeRecipe 輸出單一食譜
func writeRecipe(w io.Writer, r *common.Recipe, asJSON bool) error {
	if asJSON {
		return writeJSON(w, r)
	}

	fmt.Fprintf(w, "%s (%s)\n", r.Title, r.Category)
	if r.Image != nil {
		fmt.Fprintf(w, "%s\n", *r.Image)
	}

	fmt.Fprintln(w, "\nIngredients:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, line := range r.Ingredients {
		fmt.Fprintf(tw, "  %s\t%s\n", line.Measure, line.Name)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	fmt.Fprintln(w, "\nInstructions:")
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := common.ToJSONIndent(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, data)
	return err
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/recommend"
)

func newCatalogCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "catalog <fair|medium|dark>",
		Short: "Print catalog recommendations for a skin tone",
		Long: `Print the products recommended for a skin tone category without
analyzing a photo. Brand and type filters behave like the web form.`,
		Args: cobra.ExactArgs(1),
		RunE: runCatalog,
	}
	c.Flags().StringSlice("brand", nil, "only include these brands (repeatable)")
	c.Flags().StringSlice("type", nil, "only include these product types (repeatable)")
	c.Flags().Int("max-per-type", recommend.DefaultMaxPerType, "products per type, 0 for all")
	c.Flags().Bool("json", false, "print JSON instead of text")
	return c
}

func init() {
	rootCmd.AddCommand(newCatalogCmd())
}

func runCatalog(cmd *cobra.Command, args []string) error {
	category, err := catalog.ParseCategory(args[0])
	if err != nil {
		return err
	}

	brands, _ := cmd.Flags().GetStringSlice("brand")
	rawTypes, _ := cmd.Flags().GetStringSlice("type")
	maxPerType, _ := cmd.Flags().GetInt("max-per-type")
	asJSON, _ := cmd.Flags().GetBool("json")

	criteria := recommend.Criteria{Brands: brands, MaxPerType: maxPerType}
	for _, raw := range rawTypes {
		t, err := catalog.ParseProductType(raw)
		if err != nil {
			return err
		}
		criteria.Types = append(criteria.Types, t)
	}

	groups := recommend.Group(recommend.Recommend(catalog.Default(), category, criteria))
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}
	printGroups(cmd.OutOrStdout(), category, criteria, groups)
	return nil
}

func printGroups(w io.Writer, category catalog.Category, criteria recommend.Criteria, groups []recommend.TypeGroup) {
	fmt.Fprintf(w, "Recommendations for %s skin\n", category.Label())
	if summary := criteria.Summary(); summary != "" {
		fmt.Fprintf(w, "Filtered by: %s\n", summary)
	}
	if len(groups) == 0 {
		fmt.Fprintln(w, "No products match your filter criteria.")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s (%s)\n", g.Label, g.Family)
		for _, p := range g.Products {
			fmt.Fprintf(w, "  %-12s %-20s %s\n", p.Name, p.Brand, p.Shade)
		}
	}
}

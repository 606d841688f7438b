package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"proxysmith/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List catalog endpoints",
	Long:  "Load the endpoint catalog and list one page of it, optionally filtered by country or provider.",
	Example: `  proxysmith catalog --catalog proxies.txt --country SG --page 2
  proxysmith catalog --countries`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("catalog")
		eps, err := appInstance.LoadCatalog(context.Background(), source)
		if err != nil {
			return err
		}

		if listCountries, _ := cmd.Flags().GetBool("countries"); listCountries {
			for _, c := range catalog.Countries(eps) {
				fmt.Println(c)
			}
			return nil
		}

		var q catalog.Query
		q.Countries, _ = cmd.Flags().GetStringSlice("country")
		q.Provider, _ = cmd.Flags().GetString("provider")
		q.Search, _ = cmd.Flags().GetString("search")
		matched := catalog.Filter(eps, q)
		if len(matched) == 0 {
			fmt.Println("No endpoints found.")
			return nil
		}

		page, _ := cmd.Flags().GetInt("page")
		size := appInstance.Config.Catalog.PageSize
		items, pages := catalog.Page(matched, page, size)
		page = max(1, min(page, pages))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tENDPOINT\tCOUNTRY\tPROVIDER")
		fmt.Fprintln(w, "-\t--------\t-------\t--------")
		offset := (page - 1) * size
		for i, ep := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", offset+i+1, ep.ID(), ep.Country, truncateName(ep.Provider, 40))
		}
		w.Flush()

		fmt.Printf("\nPage %d/%d  (%d of %d endpoints match)\n", page, pages, len(matched), len(eps))
		return nil
	},
}

func init() {
	catalogCmd.Flags().String("catalog", "", "catalog URL or file (default: catalog.url)")
	catalogCmd.Flags().StringSlice("country", nil, "filter by country codes")
	catalogCmd.Flags().String("provider", "", "filter by exact provider name")
	catalogCmd.Flags().StringP("search", "s", "", "filter by provider substring")
	catalogCmd.Flags().IntP("page", "p", 1, "page number")
	catalogCmd.Flags().Bool("countries", false, "list country codes only")

	catalogCmd.RegisterFlagCompletionFunc("country", completeCountries)

	rootCmd.AddCommand(catalogCmd)
}

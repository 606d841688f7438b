package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"proxysmith/internal/catalog"
	"proxysmith/internal/generator"
	"proxysmith/internal/proxy"
	"proxysmith/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and probe the catalog interactively",
	Long: `Open a full-screen table of catalog endpoints. The endpoints of each page
are probed as the page comes into view.

With --domain and a credential, enter shows the selected endpoint's link.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("catalog")
		eps, err := appInstance.LoadCatalog(context.Background(), source)
		if err != nil {
			return err
		}
		if countries, _ := cmd.Flags().GetStringSlice("country"); len(countries) > 0 {
			eps = catalog.Filter(eps, catalog.Query{Countries: countries})
		}

		onUpdate, updates := tui.Notifier()
		sched, err := appInstance.NewScheduler(onUpdate)
		if err != nil {
			return err
		}
		defer sched.Close()

		deps := tui.Deps{
			Endpoints: eps,
			Scheduler: sched,
			Updates:   updates,
			PageSize:  appInstance.Config.Catalog.PageSize,
		}

		credential, err := credentialFlag(cmd)
		if err != nil {
			return err
		}
		if credential != "" {
			opts := generator.SingleOptions{
				Credential:   credential,
				Domain:       appInstance.Config.Domain(),
				PathTemplate: appInstance.Config.PathTemplate,
			}
			protocol, _ := cmd.Flags().GetString("protocol")
			opts.Protocol = proxy.Type(protocol)
			opts.TLS, _ = cmd.Flags().GetBool("tls")
			if d, _ := cmd.Flags().GetString("domain"); d != "" {
				opts.Domain = d
			}
			deps.Link = func(ep proxy.Endpoint) (string, error) {
				link, err := generator.Link(ep, opts)
				return link.URI, err
			}
		}

		p := tui.NewProgram(deps)
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func init() {
	browseCmd.Flags().String("catalog", "", "catalog URL or file (default: catalog.url)")
	browseCmd.Flags().StringSlice("country", nil, "only show these country codes")
	browseCmd.Flags().StringP("protocol", "p", "vless", "protocol for links shown with enter")
	browseCmd.Flags().Bool("tls", true, "TLS links on port 443")
	browseCmd.Flags().String("credential", "", "credential for links shown with enter")
	browseCmd.Flags().Bool("random-uuid", false, "generate a random UUID credential")
	browseCmd.Flags().String("domain", "", "fronting domain (default: first configured domain)")

	browseCmd.RegisterFlagCompletionFunc("country", completeCountries)
	browseCmd.RegisterFlagCompletionFunc("protocol", completeProtocols)

	rootCmd.AddCommand(browseCmd)
}

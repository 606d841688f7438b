package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"proxysmith/internal/generator"
	"proxysmith/internal/liveness"
	"proxysmith/internal/render"
)

var subCmd = &cobra.Command{
	Use:     "sub",
	Aliases: []string{"subscription"},
	Short:   "Generate a subscription from catalog endpoints",
	Long: `Pick random endpoints from the catalog, optionally keep only the ones
that answer a liveness check, and render one link per endpoint, bug host
and protocol.`,
	Example: `  proxysmith sub --catalog proxies.txt --country SG,ID --kind mix --random-uuid --limit 10
  proxysmith sub --kind trojan --credential s3cret --bug a.io --bug b.io --validate --format singbox -o sub.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		source, _ := cmd.Flags().GetString("catalog")
		eps, err := appInstance.LoadCatalog(ctx, source)
		if err != nil {
			return err
		}

		credential, err := credentialFlag(cmd)
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")
		formatName, _ := cmd.Flags().GetString("format")
		format, err := render.ParseTarget(formatName)
		if err != nil {
			return err
		}
		domain, _ := cmd.Flags().GetString("domain")
		if domain == "" {
			domain = appInstance.Config.Domain()
		}

		opts := generator.SubscriptionOptions{
			Kind:         generator.Kind(kind),
			Credential:   credential,
			Domain:       domain,
			Format:       format,
			PathTemplate: appInstance.Config.PathTemplate,
		}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Countries, _ = cmd.Flags().GetStringSlice("country")
		opts.TLS, _ = cmd.Flags().GetBool("tls")
		opts.Bugs, _ = cmd.Flags().GetStringSlice("bug")
		opts.Wildcard, _ = cmd.Flags().GetBool("wildcard")
		opts.Validate, _ = cmd.Flags().GetBool("validate")
		opts.Seed, _ = cmd.Flags().GetInt64("seed")

		var validator generator.Validator
		if opts.Validate {
			v, err := appInstance.NewValidator()
			if err != nil {
				return err
			}
			validator = v
			opts.Progress = func(p liveness.Progress) {
				fmt.Fprintf(os.Stderr, "\rValidating %d/%d  active %d  dead %d", p.Checked, p.Total, p.Active, p.Dead)
				if p.Checked == p.Total {
					fmt.Fprintln(os.Stderr)
				}
			}
		}

		res, err := generator.Subscription(ctx, eps, opts, validator)
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if err := writeOutput(output, res.Document); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Generated %d links from %d endpoints\n", len(res.Descriptors), len(res.Endpoints))
		return nil
	},
}

func init() {
	subCmd.Flags().String("catalog", "", "catalog URL or file (default: catalog.url)")
	subCmd.Flags().IntP("limit", "n", 10, "number of endpoints to pick (1-50)")
	subCmd.Flags().StringSlice("country", nil, "country codes to pick from")
	subCmd.Flags().StringP("kind", "k", "mix", "protocols (trojan, vless, shadowsocks, mix)")
	subCmd.Flags().Bool("tls", true, "use TLS on port 443 (false: plain on port 80)")
	subCmd.Flags().String("credential", "", "UUID for vless/mix, password for trojan/ss")
	subCmd.Flags().Bool("random-uuid", false, "generate a random UUID credential")
	subCmd.Flags().String("domain", "", "fronting domain (default: first configured domain)")
	subCmd.Flags().StringSlice("bug", nil, "bug hosts; each endpoint gets one link per bug")
	subCmd.Flags().Bool("wildcard", false, "use <bug>.<domain> as SNI/Host")
	subCmd.Flags().Bool("validate", false, "keep only endpoints that pass a liveness check")
	subCmd.Flags().StringP("format", "f", "v2ray", "output format (clash, singbox, v2ray)")
	subCmd.Flags().Int64("seed", 0, "shuffle seed (0: random)")
	subCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")

	subCmd.RegisterFlagCompletionFunc("kind", completeKinds)
	subCmd.RegisterFlagCompletionFunc("format", completeTargets)
	subCmd.RegisterFlagCompletionFunc("country", completeCountries)

	rootCmd.AddCommand(subCmd)
}

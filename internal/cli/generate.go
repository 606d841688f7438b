package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"proxysmith/internal/generator"
	"proxysmith/internal/proxy"
)

var generateCmd = &cobra.Command{
	Use:   "generate <ip:port>",
	Short: "Generate a link for one endpoint",
	Long: `Generate a vless/trojan/ss/vmess link that reaches one catalog endpoint
through the fronting domain. The ws path carries the endpoint address.`,
	Example: `  proxysmith generate 203.0.113.7:443 --protocol vless --random-uuid --domain cdn.example.com
  proxysmith generate 203.0.113.7:443 --protocol trojan --credential s3cret --bug bug.io --wildcard --format clash`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		country, _ := cmd.Flags().GetString("country")
		provider, _ := cmd.Flags().GetString("provider")
		ep, err := parseEndpoint(args[0], country, provider)
		if err != nil {
			return err
		}

		protocol, _ := cmd.Flags().GetString("protocol")
		credential, err := credentialFlag(cmd)
		if err != nil {
			return err
		}
		domain, _ := cmd.Flags().GetString("domain")
		if domain == "" {
			domain = appInstance.Config.Domain()
		}

		opts := generator.SingleOptions{
			Protocol:     proxy.Type(protocol),
			Credential:   credential,
			Domain:       domain,
			PathTemplate: appInstance.Config.PathTemplate,
		}
		opts.TLS, _ = cmd.Flags().GetBool("tls")
		opts.Bug, _ = cmd.Flags().GetString("bug")
		opts.Wildcard, _ = cmd.Flags().GetBool("wildcard")
		opts.Name, _ = cmd.Flags().GetString("name")

		link, err := generator.Link(ep, opts)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "uri":
			fmt.Println(link.URI)
		case "clash":
			fmt.Print(link.Clash)
		case "both":
			fmt.Println(link.URI)
			fmt.Println()
			fmt.Print(link.Clash)
		default:
			return fmt.Errorf("unknown format: %s (use uri, clash or both)", format)
		}
		return nil
	},
}

// credentialFlag returns --credential, or a fresh UUID with --random-uuid.
func credentialFlag(cmd *cobra.Command) (string, error) {
	credential, _ := cmd.Flags().GetString("credential")
	random, _ := cmd.Flags().GetBool("random-uuid")
	switch {
	case random && credential != "":
		return "", fmt.Errorf("--credential and --random-uuid are mutually exclusive")
	case random:
		id := uuid.NewString()
		fmt.Fprintf(os.Stderr, "Credential: %s\n", id)
		return id, nil
	}
	return credential, nil
}

func init() {
	generateCmd.Flags().StringP("protocol", "p", "vless", "protocol (vless, trojan, shadowsocks, vmess)")
	generateCmd.Flags().Bool("tls", true, "use TLS on port 443 (false: plain on port 80)")
	generateCmd.Flags().String("credential", "", "UUID for vless/vmess, password for trojan/ss")
	generateCmd.Flags().Bool("random-uuid", false, "generate a random UUID credential")
	generateCmd.Flags().String("domain", "", "fronting domain (default: first configured domain)")
	generateCmd.Flags().String("bug", "", "bug host used as the server address")
	generateCmd.Flags().Bool("wildcard", false, "use <bug>.<domain> as SNI/Host")
	generateCmd.Flags().String("country", "", "endpoint country code for the link name")
	generateCmd.Flags().String("provider", "", "endpoint provider for the link name")
	generateCmd.Flags().String("name", "", "link name (default: derived from country and provider)")
	generateCmd.Flags().StringP("format", "f", "uri", "output format (uri, clash, both)")

	generateCmd.RegisterFlagCompletionFunc("protocol", completeProtocols)
	generateCmd.RegisterFlagCompletionFunc("format", fixedCompletion("uri", "clash", "both"))

	rootCmd.AddCommand(generateCmd)
}

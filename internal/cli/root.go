package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"proxysmith/internal/app"
)

var (
	appInstance *app.App
	version     = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "proxysmith",
	Short: "Proxy link converter, config generator and liveness prober",
	Long: `proxysmith - proxy link converter, config generator and liveness prober

  Turn vmess/vless/trojan/ss links into Clash, sing-box or plain URI lists,
  generate links for catalog endpoints behind a fronting domain, and check
  which endpoints are alive.

  Quick start:
    proxysmith convert -i links.txt --target clash --full -o clash.yaml
    proxysmith catalog --catalog proxies.txt --country SG
    proxysmith sub --catalog proxies.txt --kind mix --random-uuid --validate
    proxysmith probe --catalog proxies.txt --country SG --watch
    proxysmith browse --catalog proxies.txt`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		logLevel, _ := cmd.Flags().GetString("log-level")

		var err error
		appInstance, err = app.New(app.Options{
			ConfigPath: configPath,
			LogLevel:   logLevel,
			Verbose:    verbose,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance != nil {
			return appInstance.Close()
		}
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.RegisterFlagCompletionFunc("log-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("proxysmith %s\n", version)
	},
}

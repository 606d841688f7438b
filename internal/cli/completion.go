package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"proxysmith/internal/app"
	"proxysmith/internal/catalog"
	"proxysmith/internal/generator"
	"proxysmith/internal/proxy"
	"proxysmith/internal/render"
)

// ensureApp lazily initializes appInstance for shell completion.
// Cobra may invoke ValidArgsFunction without running PersistentPreRunE.
func ensureApp(cmd *cobra.Command) error {
	if appInstance != nil {
		return nil
	}
	configPath, _ := cmd.Flags().GetString("config")
	var err error
	appInstance, err = app.New(app.Options{ConfigPath: configPath, LogLevel: "error"})
	return err
}

func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

var (
	completeTargets   = fixedCompletion(string(render.TargetClash), string(render.TargetSingBox), string(render.TargetURIList))
	completeKinds     = fixedCompletion(string(generator.KindMix), string(generator.KindTrojan), string(generator.KindVLESS), string(generator.KindShadowsocks))
	completeProtocols = fixedCompletion(string(proxy.TypeVLESS), string(proxy.TypeTrojan), string(proxy.TypeShadowsocks), string(proxy.TypeVMess))
	completeCheckers  = fixedCompletion("http", "tcp")
)

// completeCountries offers the country codes of the configured catalog.
func completeCountries(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := ensureApp(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	source, _ := cmd.Flags().GetString("catalog")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	eps, err := appInstance.LoadCatalog(ctx, source)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var completions []string
	for _, c := range catalog.Countries(eps) {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(toComplete)) {
			completions = append(completions, c)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

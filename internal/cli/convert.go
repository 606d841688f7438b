package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proxysmith/internal/proxy"
	"proxysmith/internal/render"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert proxy links into a client config",
	Long: `Convert a list of vmess/vless/trojan/ss links (plain or base64) into a
Clash document, a sing-box document or a normalized URI list.

Links that fail to decode are reported and skipped.`,
	Example: `  proxysmith convert -i links.txt --target clash --full --best-ping
  cat sub.b64 | proxysmith convert --target singbox --host bug.example.com --wildcard`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		targetName, _ := cmd.Flags().GetString("target")
		host, _ := cmd.Flags().GetString("host")
		wildcard, _ := cmd.Flags().GetBool("wildcard")

		target, err := render.ParseTarget(targetName)
		if err != nil {
			return err
		}

		data, err := readInput(input)
		if err != nil {
			return err
		}

		batch, err := appInstance.Codecs.DecodeSubscription(data)
		for _, e := range batch.Errors {
			appInstance.Logger.Warn("link skipped", zap.Error(e))
		}
		if err != nil {
			return fmt.Errorf("no links could be decoded (%d failed): %w", batch.Failed, err)
		}

		ds := proxy.Rewrite(batch.Descriptors, host, wildcard)

		var opts render.Options
		opts.Clash.Full, _ = cmd.Flags().GetBool("full")
		opts.Clash.FakeIP, _ = cmd.Flags().GetBool("fake-ip")
		opts.Clash.BestPing, _ = cmd.Flags().GetBool("best-ping")
		opts.Clash.LoadBalance, _ = cmd.Flags().GetBool("load-balance")
		opts.Clash.Fallback, _ = cmd.Flags().GetBool("fallback")
		if opts.Clash.Full {
			opts.Clash.Generated = time.Now()
		}

		out, err := render.Render(target, ds, opts)
		if err != nil {
			return err
		}
		if err := writeOutput(output, out); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Converted %d links to %s", len(ds), target)
		if batch.Failed > 0 {
			fmt.Fprintf(os.Stderr, " (%d skipped)", batch.Failed)
		}
		fmt.Fprintln(os.Stderr)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringP("input", "i", "-", "input file with links (- for stdin)")
	convertCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
	convertCmd.Flags().StringP("target", "t", "clash", "output format (clash, singbox, v2ray)")
	convertCmd.Flags().Bool("full", false, "emit a complete Clash document with DNS, rules and groups")
	convertCmd.Flags().Bool("fake-ip", false, "use fake-ip DNS mode (with --full)")
	convertCmd.Flags().Bool("best-ping", false, "add a url-test group")
	convertCmd.Flags().Bool("load-balance", false, "add a load-balance group")
	convertCmd.Flags().Bool("fallback", false, "add a fallback group")
	convertCmd.Flags().String("host", "", "replace every server with this host")
	convertCmd.Flags().Bool("wildcard", false, "use <host>.<original host> as SNI/Host (with --host)")

	convertCmd.RegisterFlagCompletionFunc("target", completeTargets)

	rootCmd.AddCommand(convertCmd)
}

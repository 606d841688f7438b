package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"proxysmith/internal/catalog"
	"proxysmith/internal/liveness"
	"proxysmith/internal/proxy"
)

var probeCmd = &cobra.Command{
	Use:   "probe [ip:port...]",
	Short: "Check which endpoints are alive",
	Long: `Check endpoints in batches through the configured liveness checker.

Endpoints come from the arguments or from the catalog. With --watch a new
probing cycle starts every probe.interval until interrupted.`,
	Example: `  proxysmith probe 203.0.113.7:443 198.51.100.2:8443
  proxysmith probe --catalog proxies.txt --country SG --limit 40
  proxysmith probe --catalog proxies.txt --checker tcp --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eps, err := probeTargets(ctx, cmd, args)
		if err != nil {
			return err
		}

		if name, _ := cmd.Flags().GetString("checker"); name != "" {
			appInstance.Config.Probe.Checker = name
		}
		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			return watchEndpoints(ctx, eps)
		}

		sched, err := appInstance.NewScheduler(nil)
		if err != nil {
			return err
		}
		defer sched.Close()

		fmt.Fprintf(os.Stderr, "Probing %d endpoints...\n", len(eps))
		sched.Enqueue(eps)
		if err := sched.Wait(ctx); err != nil {
			return fmt.Errorf("probe interrupted: %w", err)
		}
		printStatuses(eps, sched)
		return nil
	},
}

// probeTargets resolves the endpoints named by arguments or catalog flags.
func probeTargets(ctx context.Context, cmd *cobra.Command, args []string) ([]proxy.Endpoint, error) {
	if len(args) > 0 {
		eps := make([]proxy.Endpoint, 0, len(args))
		for _, arg := range args {
			ep, err := parseEndpoint(arg, "", "")
			if err != nil {
				return nil, err
			}
			eps = append(eps, ep)
		}
		return eps, nil
	}

	source, _ := cmd.Flags().GetString("catalog")
	eps, err := appInstance.LoadCatalog(ctx, source)
	if err != nil {
		return nil, err
	}
	countries, _ := cmd.Flags().GetStringSlice("country")
	eps = catalog.Filter(eps, catalog.Query{Countries: countries})
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && limit < len(eps) {
		eps = eps[:limit]
	}
	if len(eps) == 0 {
		return nil, errors.New("no endpoints to probe")
	}
	return eps, nil
}

// watchEndpoints prints a table each time a probing cycle finishes.
func watchEndpoints(ctx context.Context, eps []proxy.Endpoint) error {
	started := make(chan struct{}, 1)
	sched, err := appInstance.NewScheduler(func(u liveness.Update) {
		if u.Status.State != liveness.StateLoading {
			return
		}
		select {
		case started <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer sched.Close()

	interval := appInstance.Config.Probe.Interval
	w, err := liveness.NewWatcher(sched, interval, appInstance.Logger.Named("watch"))
	if err != nil {
		return err
	}
	w.Track(eps)
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(os.Stderr, "Watching %d endpoints every %s (Ctrl+C to stop)\n", len(eps), interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-started:
		}
		if err := sched.Wait(ctx); err != nil {
			return nil
		}
		// Drop signals raised by the cycle that just finished.
		select {
		case <-started:
		default:
		}

		fmt.Printf("\n%s\n", time.Now().Format("15:04:05"))
		printStatuses(eps, sched)
	}
}

func printStatuses(eps []proxy.Endpoint, sched *liveness.Scheduler) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tCOUNTRY\tPROVIDER\tSTATE\tLATENCY")
	fmt.Fprintln(w, "--------\t-------\t--------\t-----\t-------")

	for _, ep := range eps {
		st := sched.Status(ep.ID())
		latStr := "-"
		if st.State == liveness.StateActive {
			latStr = fmt.Sprintf("%d ms", st.LatencyMs)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ep.ID(), ep.Country, truncateName(ep.Provider, 30), st.State, latStr)
	}
	w.Flush()

	stats := sched.Stats()
	fmt.Printf("\nActive: %d  Dead: %d  Total: %d\n", stats.Active, stats.Dead, len(eps))
}

func init() {
	probeCmd.Flags().String("catalog", "", "catalog URL or file (default: catalog.url)")
	probeCmd.Flags().StringSlice("country", nil, "only probe these country codes")
	probeCmd.Flags().IntP("limit", "n", 0, "probe at most this many catalog endpoints (0: all)")
	probeCmd.Flags().String("checker", "", "liveness checker (http, tcp; default: probe.checker)")
	probeCmd.Flags().BoolP("watch", "w", false, "re-probe every probe.interval")

	probeCmd.RegisterFlagCompletionFunc("checker", completeCheckers)
	probeCmd.RegisterFlagCompletionFunc("country", completeCountries)

	rootCmd.AddCommand(probeCmd)
}

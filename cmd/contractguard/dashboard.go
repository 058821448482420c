package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"contractguard-web/internal/dashboard"
)

var dashboardParallel int

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [job...]",
	Short: "Print the dashboard for one or more jobs",
	Long: `Fetches each job's analysis and prints the derived dashboard: highlight
cards, vendor risk, alerts and the monthly leakage trend. Without a job the
sample dashboard is printed.`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().IntVar(&dashboardParallel, "parallel", 4, "Jobs fetched concurrently")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	deriver := dashboard.NewDeriver(dashboard.ParseDateOrder(cfg.DateOrder))
	if cfg.DefaultCurrency != "" {
		deriver.Currency = cfg.DefaultCurrency
	}

	if len(args) == 0 {
		return renderDashboard(out, deriver.Assemble(dashboard.Input{}))
	}

	vms, err := loadDashboards(ctx, deriver, args)
	for _, vm := range vms {
		if rerr := renderDashboard(out, vm); rerr != nil {
			return rerr
		}
	}
	return err
}

// loadDashboards fetches jobs concurrently. Every job gets a view-model;
// failed ones carry the failure banner and do not cancel the others. The
// first error is returned.
func loadDashboards(ctx context.Context, deriver *dashboard.Deriver, jobs []string) ([]dashboard.ViewModel, error) {
	vms := make([]dashboard.ViewModel, len(jobs))
	var g errgroup.Group
	if dashboardParallel > 0 {
		g.SetLimit(dashboardParallel)
	}
	for i, job := range jobs {
		g.Go(func() error {
			summary, err := api.Summary(ctx, job)
			if err != nil {
				vms[i] = deriver.Assemble(dashboard.Input{JobID: job, Error: dashboard.FailureBanner(err)})
				return fmt.Errorf("job %s: %w", job, err)
			}
			vms[i] = deriver.Assemble(dashboard.Input{JobID: job, Analysis: summary})
			return nil
		})
	}
	return vms, g.Wait()
}

func renderDashboard(w io.Writer, vm dashboard.ViewModel) error {
	if jsonOutput {
		return printJSON(w, vm)
	}

	title := "Sample dashboard"
	if vm.JobID != "" {
		title = "Job " + vm.JobID
		if vm.VendorName != "" {
			title += " (" + vm.VendorName + ")"
		}
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	if vm.Error != "" {
		fmt.Fprintf(w, "! %s\n", vm.Error)
	}
	if vm.Notice != "" {
		fmt.Fprintln(w, vm.Notice)
	}

	for _, card := range vm.Highlights {
		fmt.Fprintf(w, "%-24s %-14s %s\n", card.Label, card.Value, card.Delta)
	}
	if vm.VendorRisk != nil {
		fmt.Fprintf(w, "\nVendor risk: %d (%s) %s\n", vm.VendorRisk.Score, vm.VendorRisk.Level, vm.VendorRisk.Summary)
	}
	if vm.PatternSummary != "" {
		fmt.Fprintf(w, "\n%s\n", vm.PatternSummary)
	}

	if len(vm.Alerts) > 0 {
		fmt.Fprintln(w, "\nAlerts")
		for _, a := range vm.Alerts {
			fmt.Fprintf(w, "  [%s] %s: %s (%s, due %s)\n", a.Priority, a.Customer, a.Issue, a.Value, a.Due)
		}
	}

	if len(vm.Trend) > 0 {
		fmt.Fprintln(w, "\nLeakage trend")
		for _, b := range vm.Trend {
			fmt.Fprintf(w, "  %-4s %s\n", b.Month, dashboard.FormatCurrency(float64(b.Total()), vm.Currency))
		}
	}

	for _, s := range vm.TeamStats {
		fmt.Fprintf(w, "%s: %s\n", s.Label, s.Value)
	}
	fmt.Fprintln(w)
	return nil
}

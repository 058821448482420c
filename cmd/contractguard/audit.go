package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"contractguard-web/internal/auditapi"
	"contractguard-web/internal/bootstrap"
	"contractguard-web/internal/upload"
)

var (
	auditVendor    string
	auditContracts []string
	auditBilling   []string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Upload contracts and billing exports and run an audit",
	Long: `Uploads the vendor's contracts, attaches the billing exports, submits the
job and follows it through upload, document extraction, LLM extraction and
reconciliation until it completes or fails.

Example:
  contractguard audit --vendor Acme --contracts msa.pdf,order.pdf --billing invoices.csv`,
	RunE: runAudit,
}

var statusCmd = &cobra.Command{
	Use:   "status [job]",
	Short: "Show the processing stages of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var statusWatch bool

func init() {
	auditCmd.Flags().StringVar(&auditVendor, "vendor", "", "Vendor name")
	auditCmd.Flags().StringSliceVar(&auditContracts, "contracts", nil, "Contract files (PDF)")
	auditCmd.Flags().StringSliceVar(&auditBilling, "billing", nil, "Billing exports (.csv, .xls, .xlsx)")
	_ = auditCmd.MarkFlagRequired("contracts")
	_ = auditCmd.MarkFlagRequired("billing")

	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Poll until the job completes or fails")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()

	contracts, closeContracts, err := openFiles(auditContracts)
	if err != nil {
		return err
	}
	defer closeContracts()
	billing, closeBilling, err := openFiles(auditBilling)
	if err != nil {
		return err
	}
	defer closeBilling()

	flow := upload.NewFlow(api)
	flow.Poller = bootstrap.NewPoller(api, cfg)
	flow.RedirectDelay = cfg.RedirectDelay
	lastStage := upload.Stage("")
	flow.OnChange = func(s upload.State) {
		if s.Step != upload.StepProcessing || s.Stage == lastStage || s.Stage == "" {
			return
		}
		lastStage = s.Stage
		if !jsonOutput {
			fmt.Fprintf(out, "\nJob %s\n", s.JobID)
			printBoard(out, s.Board())
		}
	}
	flow.OnComplete = func(url string) {
		fmt.Fprintf(out, "Dashboard: %s\n", url)
	}

	fmt.Fprintf(out, "Uploading %d contract file(s)...\n", len(contracts))
	jobID, err := flow.UploadContracts(ctx, auditVendor, contracts)
	if err != nil {
		return flowError(flow, err)
	}
	fmt.Fprintf(out, "Created job %s. Uploading %d billing file(s)...\n", jobID, len(billing))
	if err := flow.UploadBilling(ctx, billing); err != nil {
		return flowError(flow, err)
	}

	state, err := flow.Start(ctx)
	if jsonOutput {
		_ = printJSON(out, state)
	} else if state.Message != "" {
		fmt.Fprintln(out, state.Message)
	}
	return err
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	out := cmd.OutOrStdout()
	jobID := args[0]

	show := func(status *auditapi.JobStatus) {
		if jsonOutput {
			_ = printJSON(out, status)
			return
		}
		fmt.Fprintf(out, "Job %s: %s\n", status.Identifier(), status.Status)
		stage, _ := upload.ActiveStage(status.Stages)
		if status.Status != auditapi.StatusCompleted {
			printBoard(out, upload.Board(stage, status.Metrics.ReconciliationProgress))
		}
		if status.Message != "" {
			fmt.Fprintln(out, status.Message)
		}
	}

	if !statusWatch {
		status, err := api.Status(ctx, jobID)
		if err != nil {
			return err
		}
		show(status)
		return nil
	}

	poller := bootstrap.NewPoller(api, cfg)
	poller.OnUpdate = func(u upload.Update) { show(u.Status) }
	_, err := poller.Poll(ctx, jobID)
	return err
}

func flowError(flow *upload.Flow, err error) error {
	if msg := flow.State().Message; msg != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

// openFiles opens every path for upload. The returned func closes them all.
func openFiles(paths []string) ([]auditapi.File, func(), error) {
	var files []auditapi.File
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open %s: %w", p, err)
		}
		opened = append(opened, f)
		files = append(files, auditapi.File{Name: filepath.Base(p), Reader: f})
	}
	return files, closeAll, nil
}

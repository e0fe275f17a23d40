package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <name>",
	Short: "Print an identity's attendance grouped by day",
	Long: `Print an identity's attendance history grouped by UTC calendar day,
newest day first.

Examples:
  attendance report "Jane Doe"
  attendance report "Jane Doe" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("json", false, "Output as JSON")
}

type reportDay struct {
	Date         string     `json:"date"`
	CheckinTime  *time.Time `json:"checkin_time"`
	CheckoutTime *time.Time `json:"checkout_time"`
}

func runReport(cmd *cobra.Command, args []string) error {
	name := args[0]
	jsonOutput := mustGetBool(cmd, "json")

	cfg, pool, err := connectDatabase()
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, _, _ := buildService(cfg, pool)

	report, err := svc.Report(context.Background(), name)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	days := make([]reportDay, 0, len(report))
	for _, d := range report {
		days = append(days, reportDay{
			Date:         d.Date.Format(time.DateOnly),
			CheckinTime:  d.CheckinTime,
			CheckoutTime: d.CheckoutTime,
		})
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{"name": name, "days": days})
	}

	if len(days) == 0 {
		fmt.Printf("No attendance recorded for %q.\n", name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCHECKIN\tCHECKOUT")
	fmt.Fprintln(w, "----\t-------\t--------")

	for _, day := range days {
		checkin, checkout := "-", "-"
		if day.CheckinTime != nil {
			checkin = day.CheckinTime.UTC().Format("15:04:05")
		}
		if day.CheckoutTime != nil {
			checkout = day.CheckoutTime.UTC().Format("15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", day.Date, checkin, checkout)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d days\n", len(days))

	return nil
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "List and manage enrolled identities",
	Long:  `List all enrolled identities with their latest attendance. Use subcommands to delete identities.`,
	RunE:  runIdentitiesList,
}

var identitiesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an identity and its attendance history",
	Long: `Delete an enrolled identity by name. The identity's face embedding and
all of its attendance events are removed.

Example:
  attendance identities delete "Jane Doe"`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentitiesDelete,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesDeleteCmd)

	identitiesDeleteCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

// formatEventTime renders an optional timestamp for table output.
func formatEventTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	cfg, pool, err := connectDatabase()
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, _, _ := buildService(cfg, pool)

	identities, err := svc.Identities(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list identities: %w", err)
	}

	if len(identities) == 0 {
		fmt.Println("No identities enrolled.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tENROLLED\tLAST CHECKIN\tLAST CHECKOUT")
	fmt.Fprintln(w, "--\t----\t--------\t------------\t-------------")

	for _, identity := range identities {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			identity.ID,
			identity.Name,
			identity.CreatedAt.UTC().Format("2006-01-02"),
			formatEventTime(identity.LatestCheckin),
			formatEventTime(identity.LatestCheckout),
		)
	}

	w.Flush()

	fmt.Printf("\nTotal: %d identities\n", len(identities))

	return nil
}

func runIdentitiesDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	skipConfirm := mustGetBool(cmd, "yes")

	cfg, pool, err := connectDatabase()
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, _, _ := buildService(cfg, pool)

	if !skipConfirm {
		fmt.Printf("Delete identity %q and all of its attendance history? (y/N): ", name)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	deleted, err := svc.Delete(context.Background(), name)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if !deleted {
		return fmt.Errorf("identity %q not found", name)
	}

	fmt.Printf("Deleted identity %q\n", name)
	return nil
}

package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/services"
	"github.com/spf13/cobra"
)

var migrateYes bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database checks and scratch database bootstrap",
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Count rows and list companies with their users and agent config",
	RunE:  runDBCheck,
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity with a raw pgx pool",
	RunE:  runDBPing,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the tables on a scratch database",
	Long: `Create the tables on a scratch database.

The production schema belongs to the backend. Run this only against a local
database, and confirm with --yes.`,
	RunE: runDBMigrate,
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo company, admin user and agent config",
	RunE:  runDBSeed,
}

func init() {
	dbMigrateCmd.Flags().BoolVar(&migrateYes, "yes", false, "Confirm the target is a scratch database")

	dbCmd.AddCommand(dbCheckCmd)
	dbCmd.AddCommand(dbPingCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSeedCmd)
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := services.CheckDatabase(cmd.Context(), repo)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	c := report.Counts
	fmt.Fprintf(out, "Companies: %d  Users: %d  AgentConfigs: %d  GlobalConfigs: %d  TestMessages: %d\n\n",
		c.Companies, c.Users, c.AgentConfigs, c.GlobalConfigs, c.TestMessages)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUSERS\tAGENT CONFIG")
	for _, company := range report.Companies {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", company.ID, company.Name, company.Users, yesNo(company.HasAgentConfig))
	}
	tw.Flush()

	for _, id := range report.OrphanConfigs {
		fmt.Fprintf(out, "\nAgentConfig for missing company %s\n", id)
	}
	return nil
}

func runDBPing(cmd *cobra.Command, args []string) error {
	result, err := services.PingDatabase(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database %s in %s (PostgreSQL %s)\n",
		result.Status, result.Latency.Round(time.Millisecond), result.ServerVersion)
	return nil
}

func runDBMigrate(cmd *cobra.Command, args []string) error {
	if !migrateYes {
		return fmt.Errorf("refusing to migrate without --yes")
	}
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tables migrated")
	return nil
}

func runDBSeed(cmd *cobra.Command, args []string) error {
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := services.NewDatabaseSeeder(repo).SeedDatabase(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded company %s with admin %s\n", services.DemoCompanyID, services.DemoAdminMail)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

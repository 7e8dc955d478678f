// Package cmd wires the agentctl subcommands. Every command runs once against
// the backend database or one of its external services and exits.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/HugoGarcez/agentpromp/tools/repository"
	"github.com/HugoGarcez/agentpromp/tools/services"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logFormat string
	verbose   bool
	format    string

	cfg *services.Config
)

var rootCmd = &cobra.Command{
	Use:   "agentctl",
	Short: "Debug and maintenance tools for the sales-agent backend",
	Long: `agentctl inspects and patches the data of the sales-agent backend.

It reads the same DATABASE_URL as the backend, talks to the Wbuy commerce API
and the showChannel webhook, and can serve or smoke-test a front-end build.
Settings come from flags, then the environment, then a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr())
		cfg = services.LoadConfig(cfgFile)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./.env)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format: json or text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&format, "format", services.FormatJSON, "Dump format: json or yaml")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory for dump files (env OUTPUT_DIR)")
	viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))

	rootCmd.AddCommand(bracesCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(wbuyCmd)
	rootCmd.AddCommand(postmanCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(staticCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(messagesCmd)
}

// Execute runs the root command. Errors are logged once and exit with 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// setupLogging sends logs to w so that stdout only carries command output
func setupLogging(w io.Writer) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(logFormat, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openRepository connects to the database. The returned func closes it.
func openRepository() (*repository.GORMRepository, func(), error) {
	db, err := services.OpenDatabase(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewGORMRepository(db), func() { services.CloseDatabase(db) }, nil
}

func dumpWriter() (*services.DumpWriter, error) {
	return services.NewDumpWriter(cfg.Output.Dir, format)
}

// emit prints v on stdout or saves it as a dump file named name
func emit(cmd *cobra.Command, name string, v interface{}, stdout bool) error {
	writer, err := dumpWriter()
	if err != nil {
		return err
	}
	if stdout {
		return writer.Print(cmd.OutOrStdout(), v)
	}
	path, err := writer.Write(name, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func requireCompany(companyID string) error {
	if strings.TrimSpace(companyID) == "" {
		return fmt.Errorf("--company is required")
	}
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/HugoGarcez/agentpromp/tools/services"
	"github.com/spf13/cobra"
)

var (
	staticOpts     services.StaticOptions
	staticSmokeURL string
)

var staticCmd = &cobra.Command{
	Use:   "static",
	Short: "Serve or smoke-test a front-end build",
}

var staticServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a built bundle with single-page fallback",
	RunE:  runStaticServe,
}

var staticSmokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Serve the bundle on a local port and check it answers",
	Long: `Serve --dir on an ephemeral local port and GET the root, /health and the
first js and css assets. With --url an already running server is checked instead.`,
	RunE: runStaticSmoke,
}

func init() {
	staticCmd.PersistentFlags().StringVar(&staticOpts.Dir, "dir", "dist", "Build output directory")
	staticServeCmd.Flags().StringVar(&staticOpts.Port, "port", "4173", "Port to listen on")
	staticServeCmd.Flags().StringVar(&staticOpts.APIProxy, "api", "", "Backend URL to proxy /api to")
	staticSmokeCmd.Flags().StringVar(&staticSmokeURL, "url", "", "Check a running server instead")

	staticCmd.AddCommand(staticServeCmd)
	staticCmd.AddCommand(staticSmokeCmd)
}

func runStaticServe(cmd *cobra.Command, args []string) error {
	server, err := services.NewStaticServer(staticOpts)
	if err != nil {
		return err
	}
	return server.Start(cmd.Context())
}

func runStaticSmoke(cmd *cobra.Command, args []string) error {
	var report *services.SmokeReport
	if staticSmokeURL != "" {
		client := &http.Client{Timeout: cfg.HTTP.Timeout}
		report = services.Smoke(cmd.Context(), client, staticSmokeURL, []string{"/", "/health"})
	} else {
		var err error
		report, err = services.SmokeDir(cmd.Context(), staticOpts.Dir)
		if err != nil {
			return err
		}
	}

	printSmokeReport(cmd.OutOrStdout(), report)
	if !report.OK() {
		return fmt.Errorf("smoke check failed against %s", report.BaseURL)
	}
	return nil
}

func printSmokeReport(w io.Writer, report *services.SmokeReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSTATUS\tTYPE\tBYTES\tRESULT")
	for _, c := range report.Checks {
		result := "ok"
		if !c.OK() {
			result = "FAIL"
			if c.Error != "" {
				result += ": " + c.Error
			}
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n", c.Path, c.Status, c.ContentType, c.Bytes, result)
	}
	tw.Flush()
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/HugoGarcez/agentpromp/tools/services"
	"github.com/spf13/cobra"
)

var promptCompany string

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Check the product list the agent prompt is built from",
}

var promptPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the product prompt with its verification header",
	RunE:  runPromptPreview,
}

var promptInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Compare the saved system prompt with the stored catalog",
	RunE:  runPromptInspect,
}

func init() {
	promptCmd.PersistentFlags().StringVar(&promptCompany, "company", "", "Company ID (required)")

	promptCmd.AddCommand(promptPreviewCmd)
	promptCmd.AddCommand(promptInspectCmd)
}

func runPromptPreview(cmd *cobra.Command, args []string) error {
	if err := requireCompany(promptCompany); err != nil {
		return err
	}
	return withInspector(func(in *services.Inspector) error {
		prompt, err := in.ProductPrompt(cmd.Context(), promptCompany)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), prompt)
		return nil
	})
}

func runPromptInspect(cmd *cobra.Command, args []string) error {
	if err := requireCompany(promptCompany); err != nil {
		return err
	}
	return withInspector(func(in *services.Inspector) error {
		report, err := in.PromptReport(cmd.Context(), promptCompany)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "System prompt: %d chars\n", report.SystemPromptLength)
		fmt.Fprintf(out, "prompToken set: %s\n", yesNo(report.HasPrompToken))
		fmt.Fprintf(out, "Stored products: %d\n", report.ProductCount)
		if !report.HeaderFound {
			fmt.Fprintln(out, "Verification header: none")
			return nil
		}
		fmt.Fprintf(out, "Verification header: %d products\n", report.HeaderCount)
		if report.Mismatch {
			slog.Warn("Prompt header disagrees with stored catalog",
				"company_id", promptCompany,
				"header_count", report.HeaderCount,
				"product_count", report.ProductCount,
			)
			fmt.Fprintln(out, "MISMATCH: the saved prompt declares a different product count")
		}
		return nil
	})
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/HugoGarcez/agentpromp/tools/catalog"
	"github.com/HugoGarcez/agentpromp/tools/services"
	"github.com/spf13/cobra"
)

var (
	dumpCompany string
	dumpStdout  bool
	dumpReveal  bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Decode the JSON columns of an AgentConfig",
	Long: `Decode the products and integrations columns of a company's AgentConfig.

Results go to <output-dir>/<name>_<company>.<format> unless --stdout is set.`,
}

var dumpProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Dump the stored product catalog",
	RunE:  runDumpProducts,
}

var dumpIntegrationsCmd = &cobra.Command{
	Use:   "integrations",
	Short: "Dump integration settings, secrets masked",
	RunE:  runDumpIntegrations,
}

var dumpConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Dump the whole AgentConfig record",
	RunE:  runDumpConfig,
}

var dumpImagesCmd = &cobra.Command{
	Use:   "images",
	Short: "List product images and products without any",
	RunE:  runDumpImages,
}

var dumpAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Dump the product catalog of every company",
	RunE:  runDumpAll,
}

func init() {
	dumpCmd.PersistentFlags().StringVar(&dumpCompany, "company", "", "Company ID")
	dumpCmd.PersistentFlags().BoolVar(&dumpStdout, "stdout", false, "Print instead of writing a file")
	dumpIntegrationsCmd.Flags().BoolVar(&dumpReveal, "reveal", false, "Show secrets in clear")
	dumpConfigCmd.Flags().BoolVar(&dumpReveal, "reveal", false, "Show secrets in clear")

	dumpCmd.AddCommand(dumpProductsCmd)
	dumpCmd.AddCommand(dumpIntegrationsCmd)
	dumpCmd.AddCommand(dumpConfigCmd)
	dumpCmd.AddCommand(dumpImagesCmd)
	dumpCmd.AddCommand(dumpAllCmd)
}

// withInspector opens the database for the duration of fn
func withInspector(fn func(*services.Inspector) error) error {
	repo, closeDB, err := openRepository()
	if err != nil {
		return err
	}
	defer closeDB()
	return fn(services.NewInspector(repo))
}

func runDumpProducts(cmd *cobra.Command, args []string) error {
	if err := requireCompany(dumpCompany); err != nil {
		return err
	}
	return withInspector(func(in *services.Inspector) error {
		products, err := in.Products(cmd.Context(), dumpCompany)
		if err != nil {
			return err
		}
		slog.Info("Products decoded", "company_id", dumpCompany, "count", len(products))
		return emit(cmd, "products_"+dumpCompany, products, dumpStdout)
	})
}

func runDumpIntegrations(cmd *cobra.Command, args []string) error {
	if err := requireCompany(dumpCompany); err != nil {
		return err
	}
	return withInspector(func(in *services.Inspector) error {
		integrations, err := in.Integrations(cmd.Context(), dumpCompany, dumpReveal)
		if err != nil {
			return err
		}
		return emit(cmd, "integrations_"+dumpCompany, integrations, dumpStdout)
	})
}

func runDumpConfig(cmd *cobra.Command, args []string) error {
	if err := requireCompany(dumpCompany); err != nil {
		return err
	}
	return withInspector(func(in *services.Inspector) error {
		dump, err := in.Config(cmd.Context(), dumpCompany, dumpReveal)
		if err != nil {
			return err
		}
		if dump.ProductsError != "" {
			slog.Warn("Products column does not parse", "company_id", dumpCompany, "error", dump.ProductsError)
		}
		if dump.IntegrationsErr != "" {
			slog.Warn("Integrations column does not parse", "company_id", dumpCompany, "error", dump.IntegrationsErr)
		}
		return emit(cmd, "config_"+dumpCompany, dump, dumpStdout)
	})
}

func runDumpImages(cmd *cobra.Command, args []string) error {
	if err := requireCompany(dumpCompany); err != nil {
		return err
	}
	return withInspector(func(in *services.Inspector) error {
		report, err := in.Images(cmd.Context(), dumpCompany)
		if err != nil {
			return err
		}
		slog.Info("Images collected",
			"company_id", dumpCompany,
			"products", len(report.Products),
			"images", report.TotalImages,
			"without_images", len(report.WithoutIDs),
		)
		return emit(cmd, "images_"+dumpCompany, report, dumpStdout)
	})
}

func runDumpAll(cmd *cobra.Command, args []string) error {
	return withInspector(func(in *services.Inspector) error {
		written := 0
		failures, err := in.EachProducts(cmd.Context(), func(companyID string, products []catalog.Product) error {
			if err := emit(cmd, "products_"+companyID, products, dumpStdout); err != nil {
				return err
			}
			written++
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("Catalogs dumped", "written", written, "failed", failures)
		if failures > 0 {
			return fmt.Errorf("%d of %d catalogs could not be dumped", failures, written+failures)
		}
		return nil
	})
}

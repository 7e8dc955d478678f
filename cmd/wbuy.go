package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/HugoGarcez/agentpromp/tools/catalog"
	"github.com/HugoGarcez/agentpromp/tools/services"
	"github.com/HugoGarcez/agentpromp/tools/wbuy"
	"github.com/spf13/cobra"
)

var (
	wbuyCompany string
	wbuyStdout  bool
)

var wbuyCmd = &cobra.Command{
	Use:   "wbuy",
	Short: "Query the Wbuy commerce API",
	Long: `Query the Wbuy commerce API.

Credentials are read from the company's wbuy integration when --company is
set, otherwise from WBUY_USER and WBUY_PASSWORD.`,
}

var wbuyProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Dump the live Wbuy catalog",
	RunE:  runWbuyProducts,
}

var wbuyCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the live catalog with the stored one",
	RunE:  runWbuyCompare,
}

func init() {
	wbuyCmd.PersistentFlags().StringVar(&wbuyCompany, "company", "", "Company whose integration holds the credentials")
	wbuyCmd.PersistentFlags().BoolVar(&wbuyStdout, "stdout", false, "Print instead of writing a file")

	wbuyCmd.AddCommand(wbuyProductsCmd)
	wbuyCmd.AddCommand(wbuyCompareCmd)
}

// CatalogComparison lists products found on one side only, keyed by ID
type CatalogComparison struct {
	CompanyID    string            `json:"company_id" yaml:"company_id"`
	WbuyCount    int               `json:"wbuy_count" yaml:"wbuy_count"`
	StoredCount  int               `json:"stored_count" yaml:"stored_count"`
	OnlyInWbuy   []catalog.Product `json:"only_in_wbuy" yaml:"only_in_wbuy"`
	OnlyInConfig []catalog.Product `json:"only_in_config" yaml:"only_in_config"`
}

func newWbuyClient(creds catalog.WbuyCredentials) (*wbuy.Client, error) {
	token, err := creds.BearerToken()
	if err != nil {
		return nil, err
	}
	client := wbuy.NewClient(cfg.Wbuy.BaseURL, token, cfg.Wbuy.RequestsPerSecond, cfg.HTTP.Timeout)
	if cfg.Wbuy.PageSize > 0 {
		client.PageSize = cfg.Wbuy.PageSize
	}
	return client, nil
}

// liveProducts fetches every page. in is only used when a company is given.
func liveProducts(ctx context.Context, in *services.Inspector) ([]string, error) {
	creds := catalog.WbuyCredentials{User: cfg.Wbuy.User, Password: cfg.Wbuy.Password}
	if wbuyCompany != "" {
		var err error
		creds, err = in.WbuyCredentials(ctx, wbuyCompany)
		if err != nil {
			return nil, err
		}
	}
	client, err := newWbuyClient(creds)
	if err != nil {
		return nil, err
	}
	return client.AllProducts(ctx)
}

func runWbuyProducts(cmd *cobra.Command, args []string) error {
	var items []string
	var err error
	if wbuyCompany != "" {
		err = withInspector(func(in *services.Inspector) error {
			items, err = liveProducts(cmd.Context(), in)
			return err
		})
	} else {
		items, err = liveProducts(cmd.Context(), nil)
	}
	if err != nil {
		return err
	}

	decoded := make([]interface{}, 0, len(items))
	for _, raw := range items {
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("failed to decode wbuy product: %w", err)
		}
		decoded = append(decoded, v)
	}

	name := "wbuy_products"
	if wbuyCompany != "" {
		name += "_" + wbuyCompany
	}
	slog.Info("Wbuy products fetched", "company_id", wbuyCompany, "count", len(decoded))
	return emit(cmd, name, decoded, wbuyStdout)
}

func runWbuyCompare(cmd *cobra.Command, args []string) error {
	if err := requireCompany(wbuyCompany); err != nil {
		return err
	}

	return withInspector(func(in *services.Inspector) error {
		stored, err := in.Products(cmd.Context(), wbuyCompany)
		if err != nil {
			return err
		}
		items, err := liveProducts(cmd.Context(), in)
		if err != nil {
			return err
		}

		live := make([]catalog.Product, 0, len(items))
		for _, raw := range items {
			p, err := catalog.ProductFromJSON(raw)
			if err != nil {
				slog.Warn("Skipping unreadable wbuy product", "error", err)
				continue
			}
			live = append(live, p)
		}

		onlyWbuy, onlyStored := catalog.Diff(live, stored)
		comparison := &CatalogComparison{
			CompanyID:    wbuyCompany,
			WbuyCount:    len(live),
			StoredCount:  len(stored),
			OnlyInWbuy:   onlyWbuy,
			OnlyInConfig: onlyStored,
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wbuy: %d products, stored: %d, only in wbuy: %d, only stored: %d\n",
			len(live), len(stored), len(onlyWbuy), len(onlyStored))
		return emit(cmd, "wbuy_compare_"+wbuyCompany, comparison, wbuyStdout)
	})
}

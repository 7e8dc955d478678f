package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/catalog"
	"github.com/HugoGarcez/agentpromp/tools/models"
)

var ErrAgentConfigNotFound = errors.New("agent config not found")

type AgentConfigStore interface {
	GetAgentConfigByCompany(ctx context.Context, companyID string) (*models.AgentConfig, error)
	ListAgentConfigs(ctx context.Context) ([]models.AgentConfig, error)
}

// Inspector decodes the JSON columns of AgentConfig rows for manual review
type Inspector struct {
	store AgentConfigStore
}

func NewInspector(store AgentConfigStore) *Inspector {
	return &Inspector{store: store}
}

func (i *Inspector) load(ctx context.Context, companyID string) (*models.AgentConfig, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company ID is required")
	}
	config, err := i.store.GetAgentConfigByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent config: %w", err)
	}
	if config == nil {
		return nil, fmt.Errorf("%w: company %s", ErrAgentConfigNotFound, companyID)
	}
	return config, nil
}

// Products returns the decoded product catalog of a company
func (i *Inspector) Products(ctx context.Context, companyID string) ([]catalog.Product, error) {
	config, err := i.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	products, err := catalog.ParseProducts(config.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to parse products of company %s: %w", companyID, err)
	}
	return products, nil
}

// Integrations returns the decoded integration settings, masked unless reveal
func (i *Inspector) Integrations(ctx context.Context, companyID string, reveal bool) (map[string]interface{}, error) {
	config, err := i.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	integrations, err := catalog.ParseIntegrations(config.Integrations)
	if err != nil {
		return nil, fmt.Errorf("failed to parse integrations of company %s: %w", companyID, err)
	}
	return integrations.Masked(reveal), nil
}

// WbuyCredentials returns the Wbuy credentials stored for a company
func (i *Inspector) WbuyCredentials(ctx context.Context, companyID string) (catalog.WbuyCredentials, error) {
	config, err := i.load(ctx, companyID)
	if err != nil {
		return catalog.WbuyCredentials{}, err
	}
	integrations, err := catalog.ParseIntegrations(config.Integrations)
	if err != nil {
		return catalog.WbuyCredentials{}, fmt.Errorf("failed to parse integrations of company %s: %w", companyID, err)
	}
	creds, ok := integrations.Wbuy()
	if !ok {
		return catalog.WbuyCredentials{}, fmt.Errorf("company %s has no wbuy integration", companyID)
	}
	return creds, nil
}

// ConfigDump is an AgentConfig with its JSON columns decoded
type ConfigDump struct {
	ID              string                 `json:"id" yaml:"id"`
	CompanyID       string                 `json:"company_id" yaml:"company_id"`
	HasPrompToken   bool                   `json:"has_promp_token" yaml:"has_promp_token"`
	SystemPrompt    string                 `json:"system_prompt" yaml:"system_prompt"`
	ProductCount    int                    `json:"product_count" yaml:"product_count"`
	Products        []catalog.Product      `json:"products" yaml:"products"`
	ProductsError   string                 `json:"products_error,omitempty" yaml:"products_error,omitempty"`
	Integrations    map[string]interface{} `json:"integrations" yaml:"integrations"`
	IntegrationsErr string                 `json:"integrations_error,omitempty" yaml:"integrations_error,omitempty"`
	UpdatedAt       time.Time              `json:"updated_at" yaml:"updated_at"`
}

// Config decodes the whole record. Parse failures are reported in the dump
// instead of aborting, so a broken column can still be looked at.
func (i *Inspector) Config(ctx context.Context, companyID string, reveal bool) (*ConfigDump, error) {
	config, err := i.load(ctx, companyID)
	if err != nil {
		return nil, err
	}

	dump := &ConfigDump{
		ID:            config.ID,
		CompanyID:     config.CompanyID,
		HasPrompToken: config.PrompToken != "",
		SystemPrompt:  config.SystemPrompt,
		UpdatedAt:     config.UpdatedAt,
	}

	if products, err := catalog.ParseProducts(config.Products); err != nil {
		dump.ProductsError = err.Error()
	} else {
		dump.Products = products
		dump.ProductCount = len(products)
	}

	if integrations, err := catalog.ParseIntegrations(config.Integrations); err != nil {
		dump.IntegrationsErr = err.Error()
	} else {
		dump.Integrations = integrations.Masked(reveal)
	}

	return dump, nil
}

type ProductImages struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Images []string `json:"images" yaml:"images"`
}

type ImageReport struct {
	CompanyID   string          `json:"company_id" yaml:"company_id"`
	Products    []ProductImages `json:"products" yaml:"products"`
	TotalImages int             `json:"total_images" yaml:"total_images"`
	WithoutIDs  []string        `json:"without_images" yaml:"without_images"`
}

// Images lists the image URLs of every product and flags products without any
func (i *Inspector) Images(ctx context.Context, companyID string) (*ImageReport, error) {
	products, err := i.Products(ctx, companyID)
	if err != nil {
		return nil, err
	}

	report := &ImageReport{CompanyID: companyID, WithoutIDs: []string{}}
	for _, p := range products {
		images := p.Images
		if images == nil {
			images = []string{}
		}
		report.Products = append(report.Products, ProductImages{ID: p.ID, Name: p.Name, Images: images})
		report.TotalImages += len(images)
		if len(images) == 0 {
			report.WithoutIDs = append(report.WithoutIDs, p.ID)
		}
	}
	return report, nil
}

// EachProducts decodes the catalog of every AgentConfig row and hands it to fn.
// A row that fails is logged and counted; the loop carries on.
func (i *Inspector) EachProducts(ctx context.Context, fn func(companyID string, products []catalog.Product) error) (int, error) {
	configs, err := i.store.ListAgentConfigs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list agent configs: %w", err)
	}

	failures := 0
	for _, config := range configs {
		products, err := catalog.ParseProducts(config.Products)
		if err == nil {
			err = fn(config.CompanyID, products)
		}
		if err != nil {
			failures++
			slog.Error("Failed to dump products", "company_id", config.CompanyID, "error", err)
			continue
		}
	}
	return failures, nil
}

// PromptReport describes how the saved prompt relates to the stored catalog
type PromptReport struct {
	CompanyID          string `json:"company_id" yaml:"company_id"`
	SystemPromptLength int    `json:"system_prompt_length" yaml:"system_prompt_length"`
	HasPrompToken      bool   `json:"has_promp_token" yaml:"has_promp_token"`
	ProductCount       int    `json:"product_count" yaml:"product_count"`
	HeaderFound        bool   `json:"header_found" yaml:"header_found"`
	HeaderCount        int    `json:"header_count,omitempty" yaml:"header_count,omitempty"`
	Mismatch           bool   `json:"mismatch" yaml:"mismatch"`
}

// PromptReport checks the product count declared by an embedded verification
// header against the catalog actually stored
func (i *Inspector) PromptReport(ctx context.Context, companyID string) (*PromptReport, error) {
	config, err := i.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	products, err := catalog.ParseProducts(config.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to parse products of company %s: %w", companyID, err)
	}

	report := &PromptReport{
		CompanyID:          companyID,
		SystemPromptLength: len(config.SystemPrompt),
		HasPrompToken:      config.PrompToken != "",
		ProductCount:       len(products),
	}
	if n, ok := catalog.HeaderCount(config.SystemPrompt); ok {
		report.HeaderFound = true
		report.HeaderCount = n
		report.Mismatch = n != len(products)
	}
	return report, nil
}

// ProductPrompt renders the catalog with the verification header
func (i *Inspector) ProductPrompt(ctx context.Context, companyID string) (string, error) {
	products, err := i.Products(ctx, companyID)
	if err != nil {
		return "", err
	}
	return catalog.BuildProductPrompt(products), nil
}

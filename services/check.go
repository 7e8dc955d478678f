package services

import (
	"context"
	"fmt"

	"github.com/HugoGarcez/agentpromp/tools/models"
)

type DatabaseCheckStore interface {
	CountRecords(ctx context.Context) (*models.TableCounts, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	CountUsersByCompany(ctx context.Context) (map[string]int64, error)
	ListAgentConfigs(ctx context.Context) ([]models.AgentConfig, error)
}

type DatabaseReport struct {
	Counts    *models.TableCounts      `json:"counts" yaml:"counts"`
	Companies []models.CompanyOverview `json:"companies" yaml:"companies"`
	// OrphanConfigs are AgentConfig rows whose company does not exist
	OrphanConfigs []string `json:"orphan_configs,omitempty" yaml:"orphan_configs,omitempty"`
}

// CheckDatabase summarises what a database holds
func CheckDatabase(ctx context.Context, store DatabaseCheckStore) (*DatabaseReport, error) {
	counts, err := store.CountRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	companies, err := store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	users, err := store.CountUsersByCompany(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	configs, err := store.ListAgentConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent configs: %w", err)
	}

	hasConfig := make(map[string]bool, len(configs))
	for _, c := range configs {
		hasConfig[c.CompanyID] = true
	}

	report := &DatabaseReport{Counts: counts, Companies: []models.CompanyOverview{}}
	known := make(map[string]bool, len(companies))
	for _, c := range companies {
		known[c.ID] = true
		report.Companies = append(report.Companies, models.CompanyOverview{
			ID:             c.ID,
			Name:           c.Name,
			Users:          users[c.ID],
			HasAgentConfig: hasConfig[c.ID],
		})
	}
	for _, c := range configs {
		if !known[c.CompanyID] {
			report.OrphanConfigs = append(report.OrphanConfigs, c.CompanyID)
		}
	}
	return report, nil
}

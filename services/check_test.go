package services

import (
	"context"
	"testing"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckStore struct{}

func (fakeCheckStore) CountRecords(context.Context) (*models.TableCounts, error) {
	return &models.TableCounts{Companies: 2, Users: 3, AgentConfigs: 2}, nil
}

func (fakeCheckStore) ListCompanies(context.Context) ([]models.Company, error) {
	return []models.Company{{ID: "c1", Name: "Loja A"}, {ID: "c2", Name: "Loja B"}}, nil
}

func (fakeCheckStore) CountUsersByCompany(context.Context) (map[string]int64, error) {
	return map[string]int64{"c1": 3}, nil
}

func (fakeCheckStore) ListAgentConfigs(context.Context) ([]models.AgentConfig, error) {
	return []models.AgentConfig{{CompanyID: "c1"}, {CompanyID: "ghost"}}, nil
}

func TestCheckDatabase(t *testing.T) {
	report, err := CheckDatabase(context.Background(), fakeCheckStore{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Counts.Users)
	assert.Equal(t, []models.CompanyOverview{
		{ID: "c1", Name: "Loja A", Users: 3, HasAgentConfig: true},
		{ID: "c2", Name: "Loja B", Users: 0, HasAgentConfig: false},
	}, report.Companies)
	assert.Equal(t, []string{"ghost"}, report.OrphanConfigs)
}

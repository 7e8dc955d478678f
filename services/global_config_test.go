package services

import (
	"context"
	"testing"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGlobalConfigStore struct {
	rows    []models.GlobalConfig
	created []*models.GlobalConfig
	saved   []*models.GlobalConfig
	deleted []string
}

func (s *fakeGlobalConfigStore) ListGlobalConfigs(context.Context) ([]models.GlobalConfig, error) {
	return s.rows, nil
}

func (s *fakeGlobalConfigStore) CreateGlobalConfig(_ context.Context, c *models.GlobalConfig) error {
	s.created = append(s.created, c)
	return nil
}

func (s *fakeGlobalConfigStore) SaveGlobalConfig(_ context.Context, c *models.GlobalConfig) error {
	s.saved = append(s.saved, c)
	return nil
}

func (s *fakeGlobalConfigStore) DeleteGlobalConfigs(_ context.Context, ids []string) error {
	s.deleted = append(s.deleted, ids...)
	return nil
}

func TestPlanGlobalConfigFix(t *testing.T) {
	healthy := models.GlobalConfig{ID: "g1", DefaultModel: "gpt-4o", Temperature: 0, MaxTokens: 512}

	tests := []struct {
		name   string
		rows   []models.GlobalConfig
		create bool
		delete []string
		filled []string
		empty  bool
	}{
		{name: "no rows", create: true},
		{name: "healthy row", rows: []models.GlobalConfig{healthy}, empty: true},
		{
			name:   "duplicates keep newest",
			rows:   []models.GlobalConfig{healthy, {ID: "g0"}, {ID: "g-old"}},
			delete: []string{"g0", "g-old"},
		},
		{
			name:   "zero temperature is kept",
			rows:   []models.GlobalConfig{{ID: "g1", DefaultModel: "gpt-4o", Temperature: 0, MaxTokens: 0}},
			filled: []string{"maxTokens"},
		},
		{
			name:   "negative temperature replaced",
			rows:   []models.GlobalConfig{{ID: "g1", DefaultModel: "gpt-4o", Temperature: -0.5, MaxTokens: 256}},
			filled: []string{"temperature"},
		},
		{
			name:   "invalid fields filled",
			rows:   []models.GlobalConfig{{ID: "g1", Temperature: 3}},
			filled: []string{"defaultModel", "temperature", "maxTokens"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanGlobalConfigFix(tt.rows, DefaultGlobalConfig)
			assert.Equal(t, tt.create, plan.Create != nil)
			assert.Equal(t, tt.delete, plan.Delete)
			assert.Equal(t, tt.filled, plan.Filled)
			assert.Equal(t, tt.empty, plan.Empty())
			if tt.create {
				assert.NotEmpty(t, plan.Create.ID)
				assert.Equal(t, DefaultGlobalConfig.DefaultModel, plan.Create.DefaultModel)
			}
		})
	}
}

func TestGlobalConfigFixDryRunDoesNotWrite(t *testing.T) {
	store := &fakeGlobalConfigStore{rows: []models.GlobalConfig{{ID: "a"}, {ID: "b", DefaultModel: "x", MaxTokens: 1}}}

	plan, err := NewGlobalConfigService(store).Fix(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, plan.Applied)
	assert.Equal(t, []string{"b"}, plan.Delete)
	assert.Empty(t, store.created)
	assert.Empty(t, store.saved)
	assert.Empty(t, store.deleted)
}

func TestGlobalConfigFixApply(t *testing.T) {
	store := &fakeGlobalConfigStore{rows: []models.GlobalConfig{{ID: "a"}, {ID: "b"}}}

	plan, err := NewGlobalConfigService(store).Fix(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, plan.Applied)
	assert.Equal(t, []string{"b"}, store.deleted)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "a", store.saved[0].ID)
	assert.Equal(t, DefaultGlobalConfig.MaxTokens, store.saved[0].MaxTokens)

	empty := &fakeGlobalConfigStore{}
	plan, err = NewGlobalConfigService(empty).Fix(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, plan.Applied)
	require.Len(t, empty.created, 1)
}

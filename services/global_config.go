package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/google/uuid"
)

// DefaultGlobalConfig holds the values used to create or repair the row
var DefaultGlobalConfig = models.GlobalConfig{
	DefaultModel: "gpt-4o-mini",
	Temperature:  0.7,
	MaxTokens:    1024,
}

type GlobalConfigStore interface {
	ListGlobalConfigs(ctx context.Context) ([]models.GlobalConfig, error)
	CreateGlobalConfig(ctx context.Context, config *models.GlobalConfig) error
	SaveGlobalConfig(ctx context.Context, config *models.GlobalConfig) error
	DeleteGlobalConfigs(ctx context.Context, ids []string) error
}

// GlobalConfigPlan lists the writes that bring the table back to one valid row
type GlobalConfigPlan struct {
	Create  *models.GlobalConfig `json:"create,omitempty"`
	Keep    *models.GlobalConfig `json:"keep,omitempty"`
	Delete  []string             `json:"delete,omitempty"`
	Filled  []string             `json:"filled,omitempty"`
	Applied bool                 `json:"applied"`
}

// Empty reports whether the table is already healthy
func (p *GlobalConfigPlan) Empty() bool {
	return p.Create == nil && len(p.Delete) == 0 && len(p.Filled) == 0
}

// PlanGlobalConfigFix decides what to change. configs must be ordered newest
// first; the newest row is kept and the rest deleted.
func PlanGlobalConfigFix(configs []models.GlobalConfig, defaults models.GlobalConfig) *GlobalConfigPlan {
	plan := &GlobalConfigPlan{}

	if len(configs) == 0 {
		create := defaults
		create.ID = uuid.New().String()
		plan.Create = &create
		return plan
	}

	keep := configs[0]
	for _, extra := range configs[1:] {
		plan.Delete = append(plan.Delete, extra.ID)
	}

	if keep.DefaultModel == "" {
		keep.DefaultModel = defaults.DefaultModel
		plan.Filled = append(plan.Filled, "defaultModel")
	}
	if keep.Temperature < 0 || keep.Temperature > 2 {
		keep.Temperature = defaults.Temperature
		plan.Filled = append(plan.Filled, "temperature")
	}
	if keep.MaxTokens <= 0 {
		keep.MaxTokens = defaults.MaxTokens
		plan.Filled = append(plan.Filled, "maxTokens")
	}

	plan.Keep = &keep
	return plan
}

type GlobalConfigService struct {
	store GlobalConfigStore
}

func NewGlobalConfigService(store GlobalConfigStore) *GlobalConfigService {
	return &GlobalConfigService{store: store}
}

// Fix computes the plan and, when apply is set, executes it
func (s *GlobalConfigService) Fix(ctx context.Context, apply bool) (*GlobalConfigPlan, error) {
	configs, err := s.store.ListGlobalConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list global configs: %w", err)
	}

	plan := PlanGlobalConfigFix(configs, DefaultGlobalConfig)
	slog.Info("Global config plan", "rows", len(configs), "create", plan.Create != nil, "delete", len(plan.Delete), "filled", plan.Filled)

	if !apply || plan.Empty() {
		return plan, nil
	}

	if plan.Create != nil {
		if err := s.store.CreateGlobalConfig(ctx, plan.Create); err != nil {
			return nil, fmt.Errorf("failed to create global config: %w", err)
		}
	}
	if len(plan.Delete) > 0 {
		if err := s.store.DeleteGlobalConfigs(ctx, plan.Delete); err != nil {
			return nil, fmt.Errorf("failed to delete duplicate global configs: %w", err)
		}
	}
	if len(plan.Filled) > 0 {
		plan.Keep.UpdatedAt = time.Now()
		if err := s.store.SaveGlobalConfig(ctx, plan.Keep); err != nil {
			return nil, fmt.Errorf("failed to save global config: %w", err)
		}
	}

	plan.Applied = true
	return plan, nil
}

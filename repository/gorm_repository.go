package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"gorm.io/gorm"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// DB exposes the underlying handle for callers that need raw access
func (r *GORMRepository) DB() *gorm.DB {
	return r.db
}

// AutoMigrate creates the tables on a scratch database. The production schema
// is managed by the backend and must not be migrated from here.
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(models.All()...)
}

// Company operations
func (r *GORMRepository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).Where(`"id" = ?`, id).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get company", "error", err, "company_id", id)
		return nil, err
	}
	return &company, nil
}

func (r *GORMRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.db.WithContext(ctx).Order(`"name"`).Find(&companies).Error; err != nil {
		slog.Error("Failed to list companies", "error", err)
		return nil, err
	}
	return companies, nil
}

func (r *GORMRepository) CreateCompany(ctx context.Context, company *models.Company) error {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		slog.Error("Failed to create company", "error", err)
		return err
	}
	slog.Info("Company created", "company_id", company.ID, "name", company.Name)
	return nil
}

// CountUsersByCompany returns the number of users per company ID
func (r *GORMRepository) CountUsersByCompany(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		CompanyID string `gorm:"column:companyId"`
		Total     int64  `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(`"companyId", COUNT(*) AS total`).
		Where(`"companyId" IS NOT NULL`).
		Group(`"companyId"`).
		Scan(&rows).Error
	if err != nil {
		slog.Error("Failed to count users by company", "error", err)
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.CompanyID] = row.Total
	}
	return counts, nil
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return err
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(`"email" = ?`, email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, err
	}
	return &user, nil
}

func (r *GORMRepository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where(`"id" = ?`, userID).
		Update("password", passwordHash)
	if result.Error != nil {
		slog.Error("Failed to update user password", "error", result.Error, "user_id", userID)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	slog.Info("User password updated", "user_id", userID)
	return nil
}

// AgentConfig operations
func (r *GORMRepository) GetAgentConfigByCompany(ctx context.Context, companyID string) (*models.AgentConfig, error) {
	var config models.AgentConfig
	if err := r.db.WithContext(ctx).Where(`"companyId" = ?`, companyID).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get agent config", "error", err, "company_id", companyID)
		return nil, err
	}
	return &config, nil
}

func (r *GORMRepository) ListAgentConfigs(ctx context.Context) ([]models.AgentConfig, error) {
	var configs []models.AgentConfig
	if err := r.db.WithContext(ctx).Order(`"companyId"`).Find(&configs).Error; err != nil {
		slog.Error("Failed to list agent configs", "error", err)
		return nil, err
	}
	return configs, nil
}

func (r *GORMRepository) CreateAgentConfig(ctx context.Context, config *models.AgentConfig) error {
	if err := r.db.WithContext(ctx).Create(config).Error; err != nil {
		slog.Error("Failed to create agent config", "error", err)
		return err
	}
	slog.Info("Agent config created", "agent_config_id", config.ID, "company_id", config.CompanyID)
	return nil
}

// GlobalConfig operations
func (r *GORMRepository) ListGlobalConfigs(ctx context.Context) ([]models.GlobalConfig, error) {
	var configs []models.GlobalConfig
	if err := r.db.WithContext(ctx).Order(`"updatedAt" DESC`).Find(&configs).Error; err != nil {
		slog.Error("Failed to list global configs", "error", err)
		return nil, err
	}
	return configs, nil
}

func (r *GORMRepository) CreateGlobalConfig(ctx context.Context, config *models.GlobalConfig) error {
	if err := r.db.WithContext(ctx).Create(config).Error; err != nil {
		slog.Error("Failed to create global config", "error", err)
		return err
	}
	slog.Info("Global config created", "global_config_id", config.ID)
	return nil
}

func (r *GORMRepository) SaveGlobalConfig(ctx context.Context, config *models.GlobalConfig) error {
	if err := r.db.WithContext(ctx).Save(config).Error; err != nil {
		slog.Error("Failed to save global config", "error", err, "global_config_id", config.ID)
		return err
	}
	return nil
}

func (r *GORMRepository) DeleteGlobalConfigs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where(`"id" IN ?`, ids).Delete(&models.GlobalConfig{}).Error; err != nil {
		slog.Error("Failed to delete global configs", "error", err, "count", len(ids))
		return err
	}
	slog.Info("Global configs deleted", "count", len(ids))
	return nil
}

// CountRecords returns the row count of every table the tools touch
func (r *GORMRepository) CountRecords(ctx context.Context) (*models.TableCounts, error) {
	var counts models.TableCounts
	targets := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Company{}, &counts.Companies},
		{&models.User{}, &counts.Users},
		{&models.AgentConfig{}, &counts.AgentConfigs},
		{&models.GlobalConfig{}, &counts.GlobalConfigs},
		{&models.TestMessage{}, &counts.TestMessages},
	}

	for _, t := range targets {
		if err := r.db.WithContext(ctx).Model(t.model).Count(t.dest).Error; err != nil {
			slog.Error("Failed to count records", "error", err)
			return nil, err
		}
	}
	return &counts, nil
}

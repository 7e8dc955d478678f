package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/HugoGarcez/agentpromp/tools/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoCompanyID = "00000000-0000-4000-8000-000000000001"
	DemoAdminMail = "admin@demo.local"
)

const demoProducts = `[
  {"id": 101, "name": "Bota Couro Cano Alto", "price": "459,90", "category": "Calçados", "images": ["https://cdn.demo.local/101-a.jpg", "https://cdn.demo.local/101-b.jpg"]},
  {"id": 102, "name": "Cinto Couro Trançado", "price": 129.9, "category": "Acessórios", "image": "https://cdn.demo.local/102.jpg"},
  {"id": 103, "name": "Chapéu Panamá", "price": 219, "category": "Acessórios"}
]`

const demoIntegrations = `{"wbuy": {"apiUser": "demo", "apiPassword": "demo-password", "storeId": "1"}}`

// DatabaseSeeder fills a scratch database with one demo tenant
type DatabaseSeeder struct {
	repo *repository.GORMRepository
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo *repository.GORMRepository) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo}
}

// SeedDatabase seeds the database with initial data (idempotent)
func (s *DatabaseSeeder) SeedDatabase(ctx context.Context) error {
	company, err := s.repo.GetCompany(ctx, DemoCompanyID)
	if err != nil {
		return fmt.Errorf("failed to check demo company: %w", err)
	}
	if company == nil {
		company = &models.Company{ID: DemoCompanyID, Name: "Demo Store", Slug: "demo-store"}
		if err := s.repo.CreateCompany(ctx, company); err != nil {
			return fmt.Errorf("failed to create demo company: %w", err)
		}
	} else {
		slog.Info("Demo company already exists, skipping", "company_id", company.ID)
	}

	if err := s.seedAdmin(ctx); err != nil {
		return err
	}

	config, err := s.repo.GetAgentConfigByCompany(ctx, DemoCompanyID)
	if err != nil {
		return fmt.Errorf("failed to check demo agent config: %w", err)
	}
	if config == nil {
		config = &models.AgentConfig{
			ID:           "00000000-0000-4000-8000-000000000002",
			CompanyID:    DemoCompanyID,
			SystemPrompt: "Você é a assistente de vendas da Demo Store.",
			Products:     demoProducts,
			Integrations: demoIntegrations,
		}
		if err := s.repo.CreateAgentConfig(ctx, config); err != nil {
			return fmt.Errorf("failed to create demo agent config: %w", err)
		}
	} else {
		slog.Info("Demo agent config already exists, skipping", "company_id", DemoCompanyID)
	}

	if _, err := NewGlobalConfigService(s.repo).Fix(ctx, true); err != nil {
		return fmt.Errorf("failed to seed global config: %w", err)
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// seedAdmin creates the demo admin with password "password" (idempotent)
func (s *DatabaseSeeder) seedAdmin(ctx context.Context) error {
	existingUser, err := s.repo.GetUserByEmail(ctx, DemoAdminMail)
	if err != nil {
		return fmt.Errorf("error checking user %s: %w", DemoAdminMail, err)
	}
	if existingUser != nil {
		slog.Info("User already exists, skipping", "email", DemoAdminMail)
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	companyID := DemoCompanyID
	user := &models.User{
		ID:        "00000000-0000-4000-8000-000000000003",
		Email:     DemoAdminMail,
		Password:  string(hashedPassword),
		Name:      "Demo Admin",
		Role:      models.RoleAdmin,
		CompanyID: &companyID,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	slog.Info("Created user", "email", user.Email)
	return nil
}

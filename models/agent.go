package models

import "time"

// AgentConfig holds a tenant's agent setup. Products and Integrations are
// JSON documents stored as text by the backend.
type AgentConfig struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	CompanyID    string    `gorm:"column:companyId;uniqueIndex;not null" json:"company_id"`
	SystemPrompt string    `gorm:"column:systemPrompt;type:text" json:"system_prompt,omitempty"`
	Products     string    `gorm:"column:products;type:text" json:"products,omitempty"`
	Integrations string    `gorm:"column:integrations;type:text" json:"integrations,omitempty"`
	PrompToken   string    `gorm:"column:prompToken" json:"promp_token,omitempty"`
	CreatedAt    time.Time `gorm:"column:createdAt" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updatedAt" json:"updated_at"`

	// Relationships
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (AgentConfig) TableName() string {
	return "AgentConfig"
}

// GlobalConfig is the backend-wide settings row. The backend expects exactly one.
type GlobalConfig struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	DefaultModel    string    `gorm:"column:defaultModel" json:"default_model"`
	Temperature     float64   `gorm:"column:temperature" json:"temperature"`
	MaxTokens       int       `gorm:"column:maxTokens" json:"max_tokens"`
	MaintenanceMode bool      `gorm:"column:maintenanceMode;default:false" json:"maintenance_mode"`
	CreatedAt       time.Time `gorm:"column:createdAt" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updatedAt" json:"updated_at"`
}

func (GlobalConfig) TableName() string {
	return "GlobalConfig"
}

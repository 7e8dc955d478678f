package models

import "time"

// Company is a tenant of the sales-agent backend
type Company struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Slug      string    `gorm:"column:slug;uniqueIndex" json:"slug,omitempty"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updated_at"`

	// Relationships
	Users       []User       `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
	AgentConfig *AgentConfig `gorm:"foreignKey:CompanyID" json:"agent_config,omitempty"`
}

func (Company) TableName() string {
	return "Company"
}

// CompanyOverview is the per-company row printed by the database check
type CompanyOverview struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Users          int64  `json:"users"`
	HasAgentConfig bool   `json:"has_agent_config"`
}

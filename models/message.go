package models

import "time"

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// TestMessage is one turn of an agent test chat
type TestMessage struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	CompanyID string    `gorm:"column:companyId;index;not null" json:"company_id"`
	Role      string    `gorm:"column:role;not null" json:"role"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"created_at"`
}

func (TestMessage) TableName() string {
	return "TestMessage"
}

// TableCounts is the row count per table reported by the database check
type TableCounts struct {
	Companies     int64 `json:"companies"`
	Users         int64 `json:"users"`
	AgentConfigs  int64 `json:"agent_configs"`
	GlobalConfigs int64 `json:"global_configs"`
	TestMessages  int64 `json:"test_messages"`
}

package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;size:255" json:"-"` // bcrypt hash
	Name      string    `gorm:"column:name;size:255" json:"name,omitempty"`
	Role      string    `gorm:"column:role;default:'user'" json:"role"`
	CompanyID *string   `gorm:"column:companyId;index" json:"company_id,omitempty"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updated_at"`

	// Relationships
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

func (User) TableName() string {
	return "User"
}

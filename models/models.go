// Package models maps the tables of the sales-agent backend. The schema is owned
// by the backend (Prisma), so table names are PascalCase and columns camelCase.
//
// - Company from company.go
// - User from user.go
// - AgentConfig, GlobalConfig from agent.go
// - TestMessage, TableCounts from message.go
package models

// All lists every model, in dependency order
func All() []interface{} {
	return []interface{}{
		&Company{},
		&User{},
		&AgentConfig{},
		&GlobalConfig{},
		&TestMessage{},
	}
}

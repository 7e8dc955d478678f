package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"gorm.io/gorm"
)

// ConversationRepository reads and writes agent test chat messages
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// SaveTestMessage saves a message to the database using GORM
func (r *ConversationRepository) SaveTestMessage(ctx context.Context, message *models.TestMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		slog.Error("Failed to save test message", "error", err, "message_id", message.ID)
		return fmt.Errorf("failed to save test message: %w", err)
	}

	slog.Info("Test message saved", "message_id", message.ID, "company_id", message.CompanyID)
	return nil
}

// ListTestMessages returns the most recent messages of a company, newest first
func (r *ConversationRepository) ListTestMessages(ctx context.Context, companyID string, limit int) ([]models.TestMessage, error) {
	var messages []models.TestMessage

	query := r.db.WithContext(ctx).
		Where(`"companyId" = ?`, companyID).
		Order(`"createdAt" DESC`)
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&messages).Error; err != nil {
		slog.Error("Failed to list test messages", "error", err, "company_id", companyID)
		return nil, fmt.Errorf("failed to list test messages: %w", err)
	}

	slog.Info("Test messages retrieved", "company_id", companyID, "count", len(messages))
	return messages, nil
}

// DeleteTestMessages removes every test message of a company
func (r *ConversationRepository) DeleteTestMessages(ctx context.Context, companyID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where(`"companyId" = ?`, companyID).
		Delete(&models.TestMessage{})
	if result.Error != nil {
		slog.Error("Failed to delete test messages", "error", result.Error, "company_id", companyID)
		return 0, fmt.Errorf("failed to delete test messages: %w", result.Error)
	}

	slog.Info("Test messages deleted", "company_id", companyID, "count", result.RowsAffected)
	return result.RowsAffected, nil
}

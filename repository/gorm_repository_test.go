package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGetAgentConfigByCompany(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGORMRepository(db)

	rows := sqlmock.NewRows([]string{"id", "companyId", "products", "integrations", "prompToken"}).
		AddRow("cfg-1", "company-1", `[{"id":1,"name":"Boot"}]`, `{"wbuy":{"apiUser":"u"}}`, "tok")
	mock.ExpectQuery(`SELECT \* FROM "AgentConfig" WHERE "companyId" = \$1`).WillReturnRows(rows)

	config, err := repo.GetAgentConfigByCompany(context.Background(), "company-1")
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "cfg-1", config.ID)
	assert.Equal(t, "company-1", config.CompanyID)
	assert.Equal(t, `[{"id":1,"name":"Boot"}]`, config.Products)
	assert.Equal(t, "tok", config.PrompToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAgentConfigByCompanyMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGORMRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "AgentConfig"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "companyId"}))

	config, err := repo.GetAgentConfigByCompany(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestGetUserByEmailQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGORMRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "User" WHERE "email" = \$1`).
		WillReturnError(errors.New("connection reset"))

	user, err := repo.GetUserByEmail(context.Background(), "admin@example.com")
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestUpdateUserPassword(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "no such user", affected: 0, wantErr: gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewGORMRepository(db)

			mock.ExpectExec(`UPDATE "User" SET "password"=\$1`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.UpdateUserPassword(context.Background(), "user-1", "$2a$10$hash")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCountRecords(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGORMRepository(db)

	tables := []struct {
		table string
		count int64
	}{
		{"Company", 3},
		{"User", 7},
		{"AgentConfig", 2},
		{"GlobalConfig", 1},
		{"TestMessage", 40},
	}
	for _, tb := range tables {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "` + tb.table + `"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tb.count))
	}

	counts, err := repo.CountRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.TableCounts{
		Companies:     3,
		Users:         7,
		AgentConfigs:  2,
		GlobalConfigs: 1,
		TestMessages:  40,
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTestMessages(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "companyId", "role", "content", "createdAt"}).
		AddRow("m2", "company-1", "assistant", "Temos sim!", now).
		AddRow("m1", "company-1", "user", "Tem bota 42?", now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT \* FROM "TestMessage" WHERE "companyId" = \$1 ORDER BY "createdAt" DESC LIMIT`).
		WillReturnRows(rows)

	messages, err := repo.ListTestMessages(context.Background(), "company-1", 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m2", messages[0].ID)
	assert.Equal(t, models.MessageRoleUser, messages[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

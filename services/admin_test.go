package services

import (
	"context"
	"testing"
	"time"

	"github.com/HugoGarcez/agentpromp/tools/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users   map[string]*models.User
	updated map[string]string
	created []*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*models.User{}, updated: map[string]string{}}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	found := *u
	return &found, nil
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.created = append(s.created, user)
	s.users[user.Email] = user
	return nil
}

func (s *fakeUserStore) UpdateUserPassword(_ context.Context, userID, hash string) error {
	s.updated[userID] = hash
	return nil
}

func newTestAdmin(store UserStore, secret string) *AdminService {
	s := NewAdminService(store, secret)
	s.cost = bcrypt.MinCost
	return s
}

func TestResetPasswordExistingUser(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Email: "admin@loja.com", Role: models.RoleAdmin})
	svc := newTestAdmin(store, "")

	result, err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email:    " Admin@Loja.com ",
		Password: "novaSenha123",
	})
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.False(t, result.Generated)
	require.Contains(t, store.updated, "u1")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.updated["u1"]), []byte("novaSenha123")))
}

func TestResetPasswordGeneratesPassword(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Email: "admin@loja.com"})
	svc := newTestAdmin(store, "")

	result, err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Email: "admin@loja.com"})
	require.NoError(t, err)

	assert.True(t, result.Generated)
	assert.Len(t, result.Password, GeneratedPasswordLength)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.updated["u1"]), []byte(result.Password)))
}

func TestResetPasswordMissingUser(t *testing.T) {
	tests := []struct {
		name    string
		req     ResetPasswordRequest
		wantErr error
		created bool
	}{
		{
			name:    "without create",
			req:     ResetPasswordRequest{Email: "nobody@loja.com", Password: "password123"},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "with create",
			req:     ResetPasswordRequest{Email: "nobody@loja.com", Password: "password123", Create: true, CompanyID: "c1"},
			created: true,
		},
		{
			name:    "weak password",
			req:     ResetPasswordRequest{Email: "nobody@loja.com", Password: "short", Create: true},
			wantErr: ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeUserStore()
			result, err := newTestAdmin(store, "").ResetPassword(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.created)
				return
			}
			require.NoError(t, err)
			assert.True(t, result.Created)
			require.Len(t, store.created, 1)
			assert.Equal(t, models.RoleAdmin, store.created[0].Role)
			require.NotNil(t, store.created[0].CompanyID)
			assert.Equal(t, "c1", *store.created[0].CompanyID)
			assert.NotEmpty(t, store.created[0].ID)
		})
	}
}

func TestMintAndVerifyToken(t *testing.T) {
	store := newFakeUserStore(&models.User{ID: "u1", Email: "admin@loja.com", Role: models.RoleAdmin})
	svc := newTestAdmin(store, "test-secret")

	token, user, err := svc.MintToken(context.Background(), "admin@loja.com", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	_, err = newTestAdmin(store, "other-secret").VerifyToken(token)
	assert.Error(t, err)
}

func TestMintTokenErrors(t *testing.T) {
	store := newFakeUserStore()

	_, _, err := newTestAdmin(store, "").MintToken(context.Background(), "a@b.c", 0)
	assert.ErrorIs(t, err, ErrJWTSecretMissing)

	_, _, err = newTestAdmin(store, "s").MintToken(context.Background(), "a@b.c", 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

package repository

import (
	"context"
	"testing"

	"mini-mart/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Feature: mini-mart, Property 4: Admin passwords are stored as bcrypt hashes
func TestProperty_AdminPasswordsAreHashed(t *testing.T) {
	resetTables(t)
	repo := NewAdminRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(local string, password string) bool {
			email := local + "@mart.example"
			_, _ = testDB.Exec("DELETE FROM admin_users WHERE email = $1", email)

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			if err := repo.Create(ctx, &domain.Admin{Email: email, Name: "Ops", PasswordHash: string(hash), Active: true}); err != nil {
				t.Logf("Failed to create admin: %v", err)
				return false
			}

			stored, err := repo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("Failed to find admin: %v", err)
				return false
			}

			if stored.PasswordHash == password {
				t.Logf("Password stored as plaintext")
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) == nil
		},
		gen.RegexMatch(`[a-z]{4,12}`),
		gen.RegexMatch(`[A-Za-z0-9]{8,24}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateAdminRejectsDuplicateEmail(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewAdminRepository(testDB)

	first := &domain.Admin{Email: "ops@mart.example", Name: "Ops", PasswordHash: "x", Active: true}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	err := repo.Create(ctx, &domain.Admin{Email: "ops@mart.example", Name: "Other", PasswordHash: "y", Active: true})
	assert.ErrorIs(t, err, ErrAdminAlreadyExists)
}

func TestUpdateAndDisableAdmin(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	repo := NewAdminRepository(testDB)

	admin := &domain.Admin{Email: "ops@mart.example", Name: "Ops", PasswordHash: "x", Active: true}
	require.NoError(t, repo.Create(ctx, admin))

	admin.Name = "Operations"
	require.NoError(t, repo.Update(ctx, admin))
	require.NoError(t, repo.Disable(ctx, admin.ID))

	stored, err := repo.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Operations", stored.Name)
	assert.False(t, stored.Active, "delete is a soft disable")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, repo.Disable(ctx, 999), ErrAdminNotFound)
	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

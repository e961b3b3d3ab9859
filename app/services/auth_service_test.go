package services

import (
	"testing"

	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db))

	user, err := svc.Register(RegisterInput{
		Name:     "Rosa",
		Email:    "rosa@example.com",
		Password: "secreto123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secreto123", user.Password, "password must be hashed")
	assert.Equal(t, "cliente", user.Role)

	logged, pair, err := svc.Login("rosa@example.com", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := auth.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cliente", claims.Role)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db))

	_, err := svc.Register(RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "clave1234"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Name: "Otra Ana", Email: "ana@example.com", Password: "clave9999"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewUserRepository(db))

	_, err := svc.Register(RegisterInput{Name: "Pedro", Email: "pedro@example.com", Password: "clave1234"})
	require.NoError(t, err)

	// Wrong password and unknown email look identical to the caller.
	_, _, err = svc.Login("pedro@example.com", "incorrecta")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nadie@example.com", "clave1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewUserRepository(db)
	svc := NewAuthService(repo)

	user, err := svc.Register(RegisterInput{Name: "Baja", Email: "baja@example.com", Password: "clave1234"})
	require.NoError(t, err)

	user.Active = false
	require.NoError(t, repo.Update(&user))

	_, _, err = svc.Login("baja@example.com", "clave1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

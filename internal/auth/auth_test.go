package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wolftag/internal/stats"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(stats.NewMemory())

	rec, err := svc.Register("alice", "hunter2x")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Name)

	rec, err = svc.Login("alice", "hunter2x")
	require.NoError(t, err)
	assert.Equal(t, "alice", rec.Name)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(stats.NewMemory())
	_, err := svc.Register("alice", "hunter2x")
	require.NoError(t, err)

	_, err = svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownName(t *testing.T) {
	svc := NewService(stats.NewMemory())
	_, err := svc.Login("nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateName(t *testing.T) {
	svc := NewService(stats.NewMemory())
	_, err := svc.Register("alice", "hunter2x")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other-password")
	assert.ErrorIs(t, err, stats.ErrNameTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(stats.NewMemory())

	_, err := svc.Register("a", "hunter2x")
	assert.ErrorIs(t, err, ErrBadName)

	_, err = svc.Register("alice", "short")
	assert.ErrorIs(t, err, ErrBadPassword)
}

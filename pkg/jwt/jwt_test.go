package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	tok, err := Generate("s3cret", "ana", RoleOwner, "biztracker", 5)
	require.NoError(t, err)

	user, role, err := Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "ana", user)
	assert.Equal(t, RoleOwner, role)

	_, _, err = Parse("otra", tok)
	assert.Error(t, err)
}

func TestGenerate_Expirado(t *testing.T) {
	tok, err := Generate("s3cret", "ana", RoleStaff, "biztracker", -1)
	require.NoError(t, err)
	_, _, err = Parse("s3cret", tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", "ana", RoleStaff, "biztracker", 5)
	assert.Error(t, err)
	_, _, err = Parse("", "x")
	assert.Error(t, err)
}

func TestRolDesconocido(t *testing.T) {
	_, err := Generate("s3cret", "ana", "admin", "biztracker", 5)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

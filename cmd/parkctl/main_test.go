package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintToken(t *testing.T) {
	tc := auth.TokenConfig{Secret: "0123456789abcdef0123", Issuer: "park254", TTL: time.Hour}

	signed, err := mintToken(tc, "64b7f0c2a1b2c3d4e5f60201", auth.RoleVendor, time.Now())
	require.NoError(t, err)

	principal, err := auth.ParseAccessToken(tc, signed)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60201", principal.UserID)
	assert.Equal(t, auth.RoleVendor, principal.Role)

	_, err = mintToken(tc, "vendor-1", auth.RoleVendor, time.Now())
	assert.Error(t, err)

	_, err = mintToken(tc, "64b7f0c2a1b2c3d4e5f60201", "superuser", time.Now())
	assert.Error(t, err)
}

func TestTokenRequiresUser(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"parkctl", "token", "--role", "admin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
}

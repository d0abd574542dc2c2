package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/rms/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := Principal{UserID: "u1", Role: models.RoleVendor, VendorID: "v1"}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	assert.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = PrincipalFromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok, "zero principal is not authenticated")
}

func TestPrincipal_HasRole(t *testing.T) {
	p := Principal{UserID: "u1", Role: models.RoleAdmin}
	assert.True(t, p.HasRole(models.RoleAdmin, models.RoleSuperUser))
	assert.False(t, p.HasRole(models.RoleVendor))
	assert.False(t, p.HasRole())
}

package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenyAll(t *testing.T) {
	err := DenyAll{}.Allow(context.Background(), ActionCreate, "orders")
	require.Error(t, err)

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, ActionCreate, denied.Action)
	assert.Equal(t, "orders", denied.Resource)
	assert.Equal(t, "access denied: create orders", denied.Error())
}

func TestAllowAll(t *testing.T) {
	assert.NoError(t, AllowAll{}.Allow(context.Background(), ActionDelete, "orders"))
}

func TestForMode(t *testing.T) {
	assert.IsType(t, AllowAll{}, ForMode(ModeOpen))
	assert.IsType(t, DenyAll{}, ForMode(ModeClosed))

	// Unknown values fail closed.
	assert.IsType(t, DenyAll{}, ForMode(""))
	assert.IsType(t, DenyAll{}, ForMode("everything"))
}

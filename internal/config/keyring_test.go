package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestResolvePassword(t *testing.T) {
	keyring.MockInit()

	db := Database{Alias: "default", User: "app"}
	require.NoError(t, db.ResolvePassword())
	assert.Empty(t, db.Password, "missing entry is an empty password")

	require.NoError(t, StorePassword(db, "from-keyring"))
	require.NoError(t, db.ResolvePassword())
	assert.Equal(t, "from-keyring", db.Password)

	explicit := Database{Alias: "default", User: "app", Password: "inline"}
	require.NoError(t, explicit.ResolvePassword())
	assert.Equal(t, "inline", explicit.Password)

	require.NoError(t, DeletePassword(db))
	require.NoError(t, DeletePassword(db))

	cleared := Database{Alias: "default", User: "app"}
	require.NoError(t, cleared.ResolvePassword())
	assert.Empty(t, cleared.Password)
}

func TestResolvePasswordKeyringError(t *testing.T) {
	keyring.MockInitWithError(assert.AnError)
	defer keyring.MockInit()

	db := Database{Alias: "default", User: "app"}
	err := db.ResolvePassword()
	assert.ErrorIs(t, err, assert.AnError)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stash/internal/adapters/driving/mcp"
)

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
}

func TestMCPCmd_HasHTTPFlag(t *testing.T) {
	flag := mcpCmd.Flags().Lookup("http")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestMCPCmd_RequiresLibrary(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	SetServiceBuilder(func(Options) (*Services, error) { return &Services{}, nil })

	_, err := execute(t, "mcp")

	require.Error(t, err)
	assert.ErrorIs(t, err, mcp.ErrMissingLibraryService)
}

package typesense

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/tuitioncentres/backend/pkg/config"
)

func TestClient_Integration(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") != "true" {
		t.Skip("set TEST_INTEGRATION=true to run against a local Typesense")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewClient(ctx, &config.TypesenseConfig{
		URL:    "http://localhost:8108",
		APIKey: "xyz",
	})
	require.NoError(t, err)
	assert.NotNil(t, client.Client())
}

func TestNewFromTypesense(t *testing.T) {
	c := NewFromTypesense(nil)
	assert.Nil(t, c.Client())
}

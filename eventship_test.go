package eventship_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/eventship"
	inner "github.com/bft-labs/eventship/pkg/eventship"
)

func TestNew_Facade(t *testing.T) {
	c, err := eventship.New(eventship.Config{
		Endpoint:  "https://ingest.example.com",
		APIKey:    "k",
		Transport: eventship.TransportNoop,
	})
	require.NoError(t, err)
	assert.Equal(t, eventship.TransportNoop, c.Strategy())

	require.NoError(t, c.Track("signup", "acme", "u-1"))
	assert.Equal(t, 1, c.Pending())
	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Pending())
}

func TestNew_FacadeConfigError(t *testing.T) {
	_, err := eventship.New(eventship.Config{Endpoint: "https://ingest.example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, inner.ErrInvalidConfig))
}

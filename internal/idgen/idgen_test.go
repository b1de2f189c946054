package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	session := Session(7)
	require.True(t, strings.HasPrefix(session, "graph-7/"))
	_, err := uuid.Parse(strings.TrimPrefix(session, "graph-7/"))
	assert.NoError(t, err)
}

func TestSessionStub(t *testing.T) {
	NewFunc = func() string { return "fixed" }
	defer func() { NewFunc = func() string { return uuid.New().String() } }()
	assert.Equal(t, "graph-1/fixed", Session(1))
}

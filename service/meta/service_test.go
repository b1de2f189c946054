package meta_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/rtflow/service/meta"
	"gopkg.in/yaml.v3"
)

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	const base = "mem://localhost/meta"
	require.NoError(t, fs.Upload(ctx, base+"/config.yaml", 0644, strings.NewReader("name: ${env.RTFLOW_META_NAME}\nsteps: 3\n")))
	t.Setenv("RTFLOW_META_NAME", "camera")

	srv := meta.New(fs, base)
	ok, err := srv.Exists(ctx, "config.yaml")
	require.NoError(t, err)
	assert.True(t, ok)

	var target struct {
		Name  string `yaml:"name"`
		Steps int    `yaml:"steps"`
	}
	require.NoError(t, srv.Load(ctx, "config.yaml", &target))
	assert.Equal(t, "camera", target.Name)
	assert.Equal(t, 3, target.Steps)

	var node yaml.Node
	require.NoError(t, srv.Load(ctx, base+"/config.yaml", &node))
	assert.Equal(t, yaml.DocumentNode, node.Kind)

	err = srv.Load(ctx, "missing.yaml", &target)
	assert.Error(t, err)
}

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rtflow/service/dao"
	"github.com/viant/rtflow/service/dao/store"
)

type entry struct {
	Name  string
	Value int
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var srv dao.Service[string, entry] = store.NewMemoryStore[entry](func(e *entry) string { return e.Name })

	require.NoError(t, srv.Save(ctx, &entry{Name: "b", Value: 2}))
	require.NoError(t, srv.Save(ctx, &entry{Name: "a", Value: 1}))
	assert.ErrorIs(t, srv.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, srv.Save(ctx, &entry{}), dao.ErrInvalidID)

	got, err := srv.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Value)

	_, err = srv.Load(ctx, "z")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	list, err := srv.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)

	require.NoError(t, srv.Delete(ctx, "a"))
	assert.ErrorIs(t, srv.Delete(ctx, "a"), dao.ErrNotFound)
}

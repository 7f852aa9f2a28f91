package dig_container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/hajerbook/backend/apps/api/echo"
	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/course"
	"github.com/hajerbook/backend/storage"
)

func TestNew(t *testing.T) {
	c := New(core.NewTestConfig)

	err := c.Invoke(func(store *storage.Store, svc course.Service, server *echoapi.Server) {
		assert.Equal(t, storage.EngineMemory, store.Engine)
		assert.NotNil(t, svc)
		assert.NotNil(t, server)
	})
	require.NoError(t, err)
}

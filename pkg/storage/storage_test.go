package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/murverse-service/pkg/storage"
	"github.com/haierkeys/murverse-service/pkg/storage/local_fs"
)

func TestNewClient_Local(t *testing.T) {
	client, err := storage.NewClient(&storage.Config{
		Type:      storage.LOCAL,
		IsEnabled: true,
		SavePath:  t.TempDir(),
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	_, ok := client.(*local_fs.LocalFS)
	assert.True(t, ok, "client is not *local_fs.LocalFS")
}

func TestNewClient_Disabled(t *testing.T) {
	client, err := storage.NewClient(&storage.Config{Type: storage.LOCAL})
	assert.NoError(t, err)
	assert.Nil(t, client)

	client, err = storage.NewClient(nil)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_Invalid(t *testing.T) {
	_, err := storage.NewClient(&storage.Config{Type: "invalid", IsEnabled: true})
	assert.ErrorIs(t, err, storage.ErrInvalidStorageType)
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "backups/7/1.json", storage.JoinKey("backups/", "7/1.json"))
	assert.Equal(t, "1.json", storage.JoinKey("", "/1.json"))
}

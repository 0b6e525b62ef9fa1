package tdlib

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zelenin/go-tdlib/client"

	"github.com/alexbilevskiy/tgfolders/internal/config"
)

func TestChatFoldersUpdateUnblocksWait(t *testing.T) {
	api := NewTdApi(discardLog, &config.Config{})
	upd := &client.UpdateChatFolders{ChatFolders: []*client.ChatFolderInfo{{Id: 3, Name: folderName("Work")}}}

	api.UpdatesCallback(t.Context(), upd)
	got, err := api.waitChatFolders(t.Context())

	require.NoError(t, err)
	assert.Same(t, upd, got)
	assert.True(t, api.folderExists(3))
	assert.False(t, api.folderExists(4))

	next := &client.UpdateChatFolders{ChatFolders: []*client.ChatFolderInfo{{Id: 4, Name: folderName("News")}}}
	api.UpdatesCallback(t.Context(), next)
	got, err = api.waitChatFolders(t.Context())
	require.NoError(t, err)
	assert.Same(t, next, got)
	assert.False(t, api.folderExists(3))
}

func TestWaitChatFoldersHonoursContext(t *testing.T) {
	api := NewTdApi(discardLog, &config.Config{})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := api.waitChatFolders(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewChatIsCached(t *testing.T) {
	api := NewTdApi(discardLog, &config.Config{})

	api.UpdatesCallback(t.Context(), &client.UpdateNewChat{Chat: &client.Chat{Id: -5, Title: "group"}})
	chat, err := api.GetChat(t.Context(), -5, false)

	require.NoError(t, err)
	assert.Equal(t, "group", chat.Title)
}

package tdlib

import (
	"context"

	"github.com/zelenin/go-tdlib/client"
)

func (t *TdApi) UpdatesCallback(ctx context.Context, update client.Type) {
	switch update.GetType() {
	case client.TypeUpdate:
		switch update.GetConstructor() {
		case client.ConstructorUpdateAuthorizationState:
			upd := update.(*client.UpdateAuthorizationState)
			t.log.Debug("authorization state changed", "state", upd.AuthorizationState.AuthorizationStateConstructor())

		case client.ConstructorUpdateNewChat:
			upd := update.(*client.UpdateNewChat)
			t.cacheChat(upd.Chat)

		case client.ConstructorUpdateChatFolders:
			upd := update.(*client.UpdateChatFolders)
			t.saveChatFolders(upd)
		}

	case client.TypeChat:
		upd := update.(*client.Chat)
		t.cacheChat(upd)
	}
}

// saveChatFolders keeps the latest folder list; the first one unblocks ListFolders.
func (t *TdApi) saveChatFolders(upd *client.UpdateChatFolders) {
	t.m.Lock()
	prev := t.chatFolders
	t.chatFolders = upd
	t.m.Unlock()

	if prev != nil {
		for _, info := range upd.ChatFolders {
			if !hasFolderInfo(prev.ChatFolders, info.Id) {
				t.log.Debug("new chat folder", "id", info.Id, "title", folderTitle(info.Name))
			}
		}
		for _, info := range prev.ChatFolders {
			if !hasFolderInfo(upd.ChatFolders, info.Id) {
				t.log.Debug("chat folder deleted", "id", info.Id, "title", folderTitle(info.Name))
			}
		}
	}

	t.foldersOnce.Do(func() {
		close(t.foldersSeen)
	})
}

func hasFolderInfo(infos []*client.ChatFolderInfo, id int32) bool {
	for _, info := range infos {
		if info.Id == id {
			return true
		}
	}

	return false
}

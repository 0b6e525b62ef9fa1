package tdlib

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/zelenin/go-tdlib/client"

	"github.com/alexbilevskiy/tgfolders/internal/config"
	"github.com/alexbilevskiy/tgfolders/internal/consts"
	"github.com/alexbilevskiy/tgfolders/internal/model"
)

const (
	chatsPageSize   = 100
	membersPageSize = 200
	foldersTimeout  = 10 * time.Second
)

// TdApi serves dialogs, chat info and chat folders of one authorized account.
type TdApi struct {
	log         *slog.Logger
	cfg         *config.Config
	tdlibClient *client.Client
	me          *client.User

	m           sync.RWMutex
	localChats  map[int64]*client.Chat
	chatFolders *client.UpdateChatFolders
	foldersSeen chan struct{}
	foldersOnce sync.Once
}

func NewTdApi(log *slog.Logger, cfg *config.Config) *TdApi {
	return &TdApi{
		log:         log,
		cfg:         cfg,
		localChats:  make(map[int64]*client.Chat),
		foldersSeen: make(chan struct{}),
	}
}

func (t *TdApi) selfId() int64 {
	if t.me == nil {
		return 0
	}

	return t.me.Id
}

func (t *TdApi) GetChat(ctx context.Context, chatId int64, force bool) (*client.Chat, error) {
	t.m.RLock()
	fullChat, ok := t.localChats[chatId]
	t.m.RUnlock()
	if !force && ok {
		return fullChat, nil
	}
	req := &client.GetChatRequest{ChatId: chatId}
	fullChat, err := t.tdlibClient.GetChat(ctx, req)
	if err == nil {
		t.cacheChat(fullChat)
	}

	return fullChat, err
}

func (t *TdApi) cacheChat(chat *client.Chat) {
	t.m.Lock()
	t.localChats[chat.Id] = chat
	t.m.Unlock()
}

func (t *TdApi) GetUser(ctx context.Context, userId int64) (*client.User, error) {
	userReq := &client.GetUserRequest{UserId: userId}

	return t.tdlibClient.GetUser(ctx, userReq)
}

func (t *TdApi) GetSuperGroup(ctx context.Context, sgId int64) (*client.Supergroup, error) {
	sgReq := &client.GetSupergroupRequest{SupergroupId: sgId}

	return t.tdlibClient.GetSupergroup(ctx, sgReq)
}

func (t *TdApi) GetBasicGroup(ctx context.Context, groupId int64) (*client.BasicGroup, error) {
	bgReq := &client.GetBasicGroupRequest{BasicGroupId: groupId}

	return t.tdlibClient.GetBasicGroup(ctx, bgReq)
}

// loadChatList loads the whole list into TDLib and returns its chat ids.
func (t *TdApi) loadChatList(ctx context.Context, listId int32) ([]int64, error) {
	var chatList client.ChatList
	switch listId {
	case consts.ClMain:
		chatList = &client.ChatListMain{}
	case consts.ClArchive:
		chatList = &client.ChatListArchive{}
	default:
		chatList = &client.ChatListFolder{ChatFolderId: listId}
	}
	t.log.Debug("loading chats", "list", chatList.ChatListConstructor())

	for {
		loadChatsReq := &client.LoadChatsRequest{ChatList: chatList, Limit: chatsPageSize}
		_, err := t.tdlibClient.LoadChats(ctx, loadChatsReq)
		if err == nil {
			continue
		}
		//@see https://github.com/tdlib/td/blob/fb39e5d74667db915a75a5e58065c59af8e7d8d6/td/generate/scheme/td_api.tl#L4171
		if isNotFound(err) {
			break
		}
		return nil, fmt.Errorf("load chats: %w", err)
	}

	getChatsReq := &client.GetChatsRequest{ChatList: chatList, Limit: 1 << 20}
	chats, err := t.tdlibClient.GetChats(ctx, getChatsReq)
	if err != nil {
		return nil, fmt.Errorf("get loaded chats: %w", err)
	}
	t.log.Debug("chats loaded", "list", chatList.ChatListConstructor(), "count", len(chats.ChatIds))

	return chats.ChatIds, nil
}

// ListDialogs yields the dialogs of the main list followed by the archive.
// Secret chats are skipped.
func (t *TdApi) ListDialogs(ctx context.Context) iter.Seq2[model.Dialog, error] {
	return func(yield func(model.Dialog, error) bool) {
		seen := make(map[int64]bool)
		for _, listId := range []int32{consts.ClMain, consts.ClArchive} {
			chatIds, err := t.loadChatList(ctx, listId)
			if err != nil {
				yield(model.Dialog{}, err)
				return
			}
			for _, chatId := range chatIds {
				if seen[chatId] {
					continue
				}
				seen[chatId] = true
				chat, err := t.GetChat(ctx, chatId, false)
				if err != nil {
					yield(model.Dialog{}, fmt.Errorf("get chat %d: %w", chatId, err))
					return
				}
				d, ok, err := t.dialogFromChat(ctx, chat)
				if err != nil {
					yield(model.Dialog{}, err)
					return
				}
				if !ok {
					t.log.Debug("skipping chat", "chat", chatId, "type", chat.Type.ChatTypeConstructor())
					continue
				}
				if !yield(d, nil) {
					return
				}
			}
		}
	}
}

func (t *TdApi) dialogFromChat(ctx context.Context, chat *client.Chat) (model.Dialog, bool, error) {
	peer, ok := ChatIdToPeer(chat.Id, t.selfId())
	if !ok {
		return model.Dialog{}, false, nil
	}
	d := model.Dialog{Name: chat.Title, Peer: peer}

	switch chat.Type.ChatTypeConstructor() {
	case client.ConstructorChatTypePrivate:
		typ := chat.Type.(*client.ChatTypePrivate)
		user, err := t.GetUser(ctx, typ.UserId)
		if err != nil {
			return d, false, fmt.Errorf("get user %d: %w", typ.UserId, err)
		}
		d.Id = typ.UserId
		d.Kind = model.DialogUser
		d.Username = GetUsername(user.Usernames)

	case client.ConstructorChatTypeBasicGroup:
		typ := chat.Type.(*client.ChatTypeBasicGroup)
		bg, err := t.GetBasicGroup(ctx, typ.BasicGroupId)
		if err != nil {
			return d, false, fmt.Errorf("get basic group %d: %w", typ.BasicGroupId, err)
		}
		d.Id = typ.BasicGroupId
		d.Kind = model.DialogGroup
		d.Forbidden = !bg.IsActive || isGone(bg.Status)

	case client.ConstructorChatTypeSupergroup:
		typ := chat.Type.(*client.ChatTypeSupergroup)
		sg, err := t.GetSuperGroup(ctx, typ.SupergroupId)
		if err != nil {
			return d, false, fmt.Errorf("get supergroup %d: %w", typ.SupergroupId, err)
		}
		d.Id = typ.SupergroupId
		d.Kind = model.DialogGroup
		if typ.IsChannel {
			d.Kind = model.DialogChannel
		}
		d.Username = GetUsername(sg.Usernames)
		d.Forbidden = sg.Status != nil && sg.Status.ChatMemberStatusConstructor() == client.ConstructorChatMemberStatusBanned

	default:
		return d, false, nil
	}

	return d, true, nil
}

func isGone(status client.ChatMemberStatus) bool {
	if status == nil {
		return false
	}
	switch status.ChatMemberStatusConstructor() {
	case client.ConstructorChatMemberStatusLeft, client.ConstructorChatMemberStatusBanned:
		return true
	}

	return false
}

func (t *TdApi) FetchFullChatInfo(ctx context.Context, chatId int64) (*model.ExtendedInfo, error) {
	req := &client.GetBasicGroupFullInfoRequest{BasicGroupId: chatId}
	info, err := t.tdlibClient.GetBasicGroupFullInfo(ctx, req)
	if err != nil {
		return nil, err
	}

	return &model.ExtendedInfo{About: info.Description}, nil
}

// FetchFullChannelInfo ignores accessHash, TDLib resolves channels by id alone.
func (t *TdApi) FetchFullChannelInfo(ctx context.Context, channelId int64, _ int64) (*model.ExtendedInfo, error) {
	req := &client.GetSupergroupFullInfoRequest{SupergroupId: channelId}
	info, err := t.tdlibClient.GetSupergroupFullInfo(ctx, req)
	if err != nil {
		return nil, err
	}

	return &model.ExtendedInfo{About: info.Description}, nil
}

func (t *TdApi) ListParticipants(ctx context.Context, dialog model.Dialog) iter.Seq2[model.Participant, error] {
	return func(yield func(model.Participant, error) bool) {
		switch dialog.Peer.Kind {
		case model.PeerChat:
			req := &client.GetBasicGroupFullInfoRequest{BasicGroupId: dialog.Peer.ChatId}
			info, err := t.tdlibClient.GetBasicGroupFullInfo(ctx, req)
			if err != nil {
				yield(model.Participant{}, err)
				return
			}
			t.yieldMembers(ctx, info.Members, yield)

		case model.PeerChannel:
			offset := int32(0)
			for {
				req := &client.GetSupergroupMembersRequest{
					SupergroupId: dialog.Peer.ChannelId,
					Filter:       &client.SupergroupMembersFilterRecent{},
					Offset:       offset,
					Limit:        membersPageSize,
				}
				members, err := t.tdlibClient.GetSupergroupMembers(ctx, req)
				if err != nil {
					yield(model.Participant{}, err)
					return
				}
				if !t.yieldMembers(ctx, members.Members, yield) {
					return
				}
				offset += int32(len(members.Members))
				if len(members.Members) == 0 || offset >= members.TotalCount {
					return
				}
			}
		}
	}
}

func (t *TdApi) yieldMembers(ctx context.Context, members []*client.ChatMember, yield func(model.Participant, error) bool) bool {
	for _, m := range members {
		if m.MemberId.MessageSenderConstructor() != client.ConstructorMessageSenderUser {
			continue
		}
		userId := m.MemberId.(*client.MessageSenderUser).UserId
		user, err := t.GetUser(ctx, userId)
		if err != nil {
			yield(model.Participant{}, fmt.Errorf("get user %d: %w", userId, err))
			return false
		}
		if !yield(model.Participant{UserId: userId, Username: GetUsername(user.Usernames)}, nil) {
			return false
		}
	}

	return true
}

func (t *TdApi) waitChatFolders(ctx context.Context) (*client.UpdateChatFolders, error) {
	select {
	case <-t.foldersSeen:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(foldersTimeout):
		return nil, errors.New("chat folders were not received from tdlib")
	}
	t.m.RLock()
	defer t.m.RUnlock()

	return t.chatFolders, nil
}

func (t *TdApi) folderExists(id int32) bool {
	t.m.RLock()
	defer t.m.RUnlock()

	return t.chatFolders != nil && hasFolderInfo(t.chatFolders.ChatFolders, id)
}

func (t *TdApi) getChatFolder(ctx context.Context, folderId int32) (*client.ChatFolder, error) {
	req := &client.GetChatFolderRequest{ChatFolderId: folderId}

	return t.tdlibClient.GetChatFolder(ctx, req)
}

func (t *TdApi) ListFolders(ctx context.Context) (*model.Snapshot, error) {
	upd, err := t.waitChatFolders(ctx)
	if err != nil {
		return nil, err
	}
	loaded := make(map[int32]*client.ChatFolder, len(upd.ChatFolders))
	for _, info := range upd.ChatFolders {
		f, err := t.getChatFolder(ctx, info.Id)
		if err != nil {
			return nil, fmt.Errorf("get chat folder %d `%s`: %w", info.Id, folderTitle(info.Name), err)
		}
		loaded[info.Id] = f
	}

	return SnapshotFromTd(upd, loaded, t.selfId()), nil
}

// UpsertFolder edits the folder when TDLib knows the id and creates a new one
// otherwise; TDLib picks the id of created folders itself.
func (t *TdApi) UpsertFolder(ctx context.Context, id int32, folder model.Folder) error {
	if folder == nil {
		req := &client.DeleteChatFolderRequest{ChatFolderId: id, LeaveChatIds: []int64{}}
		_, err := t.tdlibClient.DeleteChatFolder(ctx, req)
		return err
	}
	payload := FolderToTd(folder, t.selfId())
	if payload == nil {
		return fmt.Errorf("folder %d has no payload", id)
	}
	payload.PinnedChatIds = t.knownChats(ctx, payload.PinnedChatIds)
	payload.IncludedChatIds = t.knownChats(ctx, payload.IncludedChatIds)
	payload.ExcludedChatIds = t.knownChats(ctx, payload.ExcludedChatIds)

	if t.folderExists(id) {
		req := &client.EditChatFolderRequest{ChatFolderId: id, Folder: payload}
		_, err := t.tdlibClient.EditChatFolder(ctx, req)
		return err
	}
	req := &client.CreateChatFolderRequest{Folder: payload}
	info, err := t.tdlibClient.CreateChatFolder(ctx, req)
	if err != nil {
		return err
	}
	if info.Id != id {
		t.log.Info("folder created under another id", "requested", id, "id", info.Id, "title", folderTitle(info.Name))
	}

	return nil
}

// knownChats drops chats TDLib cannot open, adding them to a folder would fail
// the whole request.
func (t *TdApi) knownChats(ctx context.Context, chatIds []int64) []int64 {
	res := make([]int64, 0, len(chatIds))
	for _, chatId := range chatIds {
		_, err := t.GetChat(ctx, chatId, false)
		if err != nil {
			t.log.Warn("failed to get chat before adding to folder", "chat", chatId, "error", err)
			continue
		}
		res = append(res, chatId)
	}

	return res
}

func (t *TdApi) Close(ctx context.Context) {
	if t.tdlibClient == nil {
		return
	}
	if _, err := t.tdlibClient.Close(ctx); err != nil {
		t.log.Warn("close tdlib client", "error", err)
	}
}

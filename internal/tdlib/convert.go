package tdlib

import (
	"github.com/zelenin/go-tdlib/client"

	"github.com/alexbilevskiy/tgfolders/internal/consts"
	"github.com/alexbilevskiy/tgfolders/internal/model"
)

// TDLib exposes folder icons by name, the folder snapshot stores the emoji the
// Telegram API uses for them.
var iconNames = map[string]string{
	"💬":  "All",
	"✅":  "Unread",
	"🔔":  "Unmuted",
	"🤖":  "Bots",
	"📢":  "Channels",
	"👥":  "Groups",
	"👤":  "Private",
	"📁":  "Custom",
	"📋":  "Setup",
	"🐱":  "Cat",
	"👑":  "Crown",
	"⭐️": "Favorite",
	"🌹":  "Flower",
	"🎮":  "Game",
	"🏠":  "Home",
	"❤️": "Love",
	"🎭":  "Mask",
	"🍸":  "Party",
	"⚽️": "Sport",
	"🎓":  "Study",
	"📈":  "Trade",
	"✈️": "Travel",
	"💼":  "Work",
}

var iconEmoticons = func() map[string]string {
	res := make(map[string]string, len(iconNames))
	for emoticon, name := range iconNames {
		res[name] = emoticon
	}
	return res
}()

// ChatIdToPeer decodes a TDLib chat id. The private chat with the account
// itself is PeerSelf. Secret chats have no peer.
func ChatIdToPeer(chatId int64, self int64) (model.Peer, bool) {
	switch {
	case chatId == 0:
		return model.Peer{}, false
	case chatId > 0:
		if chatId == self {
			return model.Peer{Kind: model.PeerSelf}, true
		}
		return model.UserPeer(chatId, 0), true
	case chatId > consts.ZeroChannelId:
		return model.ChatPeer(-chatId), true
	case chatId < consts.ZeroChannelId && chatId > consts.ZeroSecretChatId:
		return model.ChannelPeer(consts.ZeroChannelId-chatId, 0), true
	}

	return model.Peer{}, false
}

func PeerToChatId(p model.Peer, self int64) (int64, bool) {
	switch p.Kind {
	case model.PeerSelf:
		return self, self != 0
	case model.PeerUser, model.PeerUserFromMessage:
		return p.UserId, p.UserId > 0
	case model.PeerChat:
		return -p.ChatId, p.ChatId > 0
	case model.PeerChannel, model.PeerChannelFromMessage:
		return consts.ZeroChannelId - p.ChannelId, p.ChannelId > 0
	}

	return 0, false
}

func peersFromChatIds(chatIds []int64, self int64) []model.Peer {
	res := make([]model.Peer, 0, len(chatIds))
	for _, id := range chatIds {
		if p, ok := ChatIdToPeer(id, self); ok {
			res = append(res, p)
		}
	}

	return res
}

func chatIdsFromPeers(peers []model.Peer, self int64) []int64 {
	res := make([]int64, 0, len(peers))
	for _, p := range peers {
		id, ok := PeerToChatId(p, self)
		if !ok {
			continue
		}
		if !containsId(res, id) {
			res = append(res, id)
		}
	}

	return res
}

func containsId(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}

func folderTitle(name *client.ChatFolderName) string {
	if name == nil || name.Text == nil {
		return ""
	}

	return name.Text.Text
}

func emoticonFromIcon(icon *client.ChatFolderIcon) *string {
	if icon == nil || icon.Name == "" {
		return nil
	}
	if emoticon, ok := iconEmoticons[icon.Name]; ok {
		return &emoticon
	}
	name := icon.Name

	return &name
}

func iconFromEmoticon(emoticon *string) *client.ChatFolderIcon {
	if emoticon == nil || *emoticon == "" {
		return nil
	}
	if name, ok := iconNames[*emoticon]; ok {
		return &client.ChatFolderIcon{Name: name}
	}

	return &client.ChatFolderIcon{Name: *emoticon}
}

func colorFromId(colorId int32) *int32 {
	if colorId < 0 {
		return nil
	}

	return &colorId
}

func colorId(color *int32) int32 {
	if color == nil {
		return -1
	}

	return *color
}

// FolderFromTd converts a folder loaded by GetChatFolder. Shareable folders
// become chatlists.
func FolderFromTd(info *client.ChatFolderInfo, f *client.ChatFolder, self int64) model.Folder {
	if f.IsShareable {
		return &model.Chatlist{
			HasMyInvites: info.HasMyInviteLinks,
			FolderId:     info.Id,
			Name:         folderTitle(f.Name),
			Emoticon:     emoticonFromIcon(f.Icon),
			Color:        colorFromId(f.ColorId),
			PinnedPeers:  peersFromChatIds(f.PinnedChatIds, self),
			IncludePeers: peersFromChatIds(f.IncludedChatIds, self),
		}
	}

	return &model.Filter{
		Contacts:        f.IncludeContacts,
		NonContacts:     f.IncludeNonContacts,
		Groups:          f.IncludeGroups,
		Broadcasts:      f.IncludeChannels,
		Bots:            f.IncludeBots,
		ExcludeMuted:    f.ExcludeMuted,
		ExcludeRead:     f.ExcludeRead,
		ExcludeArchived: f.ExcludeArchived,
		FolderId:        info.Id,
		Name:            folderTitle(f.Name),
		Emoticon:        emoticonFromIcon(f.Icon),
		Color:           colorFromId(f.ColorId),
		PinnedPeers:     peersFromChatIds(f.PinnedChatIds, self),
		IncludePeers:    peersFromChatIds(f.IncludedChatIds, self),
		ExcludePeers:    peersFromChatIds(f.ExcludedChatIds, self),
	}
}

// FolderToTd builds the request payload for CreateChatFolder and
// EditChatFolder. Shareability is owned by invite links, so chatlists are sent
// as plain folders. Returns nil for the default folder.
func FolderToTd(f model.Folder, self int64) *client.ChatFolder {
	var res *client.ChatFolder
	switch v := f.(type) {
	case *model.Filter:
		res = &client.ChatFolder{
			Icon:               iconFromEmoticon(v.Emoticon),
			ColorId:            colorId(v.Color),
			PinnedChatIds:      chatIdsFromPeers(v.PinnedPeers, self),
			IncludedChatIds:    chatIdsFromPeers(v.IncludePeers, self),
			ExcludedChatIds:    chatIdsFromPeers(v.ExcludePeers, self),
			ExcludeMuted:       v.ExcludeMuted,
			ExcludeRead:        v.ExcludeRead,
			ExcludeArchived:    v.ExcludeArchived,
			IncludeContacts:    v.Contacts,
			IncludeNonContacts: v.NonContacts,
			IncludeBots:        v.Bots,
			IncludeGroups:      v.Groups,
			IncludeChannels:    v.Broadcasts,
		}
	case *model.Chatlist:
		res = &client.ChatFolder{
			Icon:            iconFromEmoticon(v.Emoticon),
			ColorId:         colorId(v.Color),
			PinnedChatIds:   chatIdsFromPeers(v.PinnedPeers, self),
			IncludedChatIds: chatIdsFromPeers(v.IncludePeers, self),
			ExcludedChatIds: []int64{},
		}
	default:
		return nil
	}
	title, _ := f.Title()
	res.Name = &client.ChatFolderName{Text: &client.FormattedText{Text: title, Entities: []*client.TextEntity{}}}
	// pinned chats must not be listed again as included
	res.IncludedChatIds = withoutIds(res.IncludedChatIds, res.PinnedChatIds)

	return res
}

func withoutIds(ids []int64, drop []int64) []int64 {
	res := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !containsId(drop, id) {
			res = append(res, id)
		}
	}

	return res
}

// SnapshotFromTd orders folders as in the update and puts the default folder
// at its main chat list position.
func SnapshotFromTd(upd *client.UpdateChatFolders, loaded map[int32]*client.ChatFolder, self int64) *model.Snapshot {
	s := &model.Snapshot{TagsEnabled: upd.AreTagsEnabled, Filters: make([]model.Folder, 0, len(upd.ChatFolders)+1)}
	for _, info := range upd.ChatFolders {
		f, ok := loaded[info.Id]
		if !ok {
			continue
		}
		s.Filters = append(s.Filters, FolderFromTd(info, f, self))
	}
	pos := int(upd.MainChatListPosition)
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.Filters) {
		pos = len(s.Filters)
	}
	s.Filters = append(s.Filters[:pos], append([]model.Folder{model.DefaultFolder{}}, s.Filters[pos:]...)...)

	return s
}

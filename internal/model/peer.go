package model

import (
	"encoding/json"
	"fmt"
)

type PeerKind string

const (
	PeerEmpty              PeerKind = "Empty"
	PeerSelf               PeerKind = "PeerSelf"
	PeerChat               PeerKind = "Chat"
	PeerUser               PeerKind = "User"
	PeerChannel            PeerKind = "Channel"
	PeerUserFromMessage    PeerKind = "UserFromMessage"
	PeerChannelFromMessage PeerKind = "ChannelFromMessage"
)

// Peer addresses a chat in folder peer lists. The *FromMessage kinds reference
// a user or channel seen in a message of another peer (Via).
type Peer struct {
	Kind       PeerKind
	ChatId     int64
	UserId     int64
	ChannelId  int64
	AccessHash int64
	MsgId      int32
	Via        *Peer
}

func ChatPeer(chatId int64) Peer {
	return Peer{Kind: PeerChat, ChatId: chatId}
}

func UserPeer(userId int64, accessHash int64) Peer {
	return Peer{Kind: PeerUser, UserId: userId, AccessHash: accessHash}
}

func ChannelPeer(channelId int64, accessHash int64) Peer {
	return Peer{Kind: PeerChannel, ChannelId: channelId, AccessHash: accessHash}
}

func UserFromMessagePeer(via Peer, msgId int32, userId int64) Peer {
	return Peer{Kind: PeerUserFromMessage, Via: &via, MsgId: msgId, UserId: userId}
}

func ChannelFromMessagePeer(via Peer, msgId int32, channelId int64) Peer {
	return Peer{Kind: PeerChannelFromMessage, Via: &via, MsgId: msgId, ChannelId: channelId}
}

// Equal compares only the fields meaningful for the peer kind.
func (p Peer) Equal(o Peer) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case PeerChat:
		return p.ChatId == o.ChatId
	case PeerUser:
		return p.UserId == o.UserId && p.AccessHash == o.AccessHash
	case PeerChannel:
		return p.ChannelId == o.ChannelId && p.AccessHash == o.AccessHash
	case PeerUserFromMessage:
		return p.UserId == o.UserId && p.MsgId == o.MsgId && viaEqual(p.Via, o.Via)
	case PeerChannelFromMessage:
		return p.ChannelId == o.ChannelId && p.MsgId == o.MsgId && viaEqual(p.Via, o.Via)
	}

	return true
}

func viaEqual(a, b *Peer) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(*b)
}

func (p Peer) String() string {
	switch p.Kind {
	case PeerChat:
		return fmt.Sprintf("chat:%d", p.ChatId)
	case PeerUser:
		return fmt.Sprintf("user:%d", p.UserId)
	case PeerChannel:
		return fmt.Sprintf("channel:%d", p.ChannelId)
	case PeerUserFromMessage:
		return fmt.Sprintf("user:%d@msg:%d", p.UserId, p.MsgId)
	case PeerChannelFromMessage:
		return fmt.Sprintf("channel:%d@msg:%d", p.ChannelId, p.MsgId)
	}

	return string(p.Kind)
}

func ContainsPeer(peers []Peer, p Peer) bool {
	for _, item := range peers {
		if item.Equal(p) {
			return true
		}
	}

	return false
}

type peerChatJson struct {
	ChatId int64 `json:"chat_id"`
}

type peerUserJson struct {
	UserId     int64 `json:"user_id"`
	AccessHash int64 `json:"access_hash"`
}

type peerChannelJson struct {
	ChannelId  int64 `json:"channel_id"`
	AccessHash int64 `json:"access_hash"`
}

type peerUserFromMessageJson struct {
	Peer   Peer  `json:"peer"`
	MsgId  int32 `json:"msg_id"`
	UserId int64 `json:"user_id"`
}

type peerChannelFromMessageJson struct {
	Peer      Peer  `json:"peer"`
	MsgId     int32 `json:"msg_id"`
	ChannelId int64 `json:"channel_id"`
}

func (p Peer) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PeerEmpty, PeerSelf:
		return encodeTagged(string(p.Kind), nil)
	case PeerChat:
		return encodeTagged(string(p.Kind), peerChatJson{ChatId: p.ChatId})
	case PeerUser:
		return encodeTagged(string(p.Kind), peerUserJson{UserId: p.UserId, AccessHash: p.AccessHash})
	case PeerChannel:
		return encodeTagged(string(p.Kind), peerChannelJson{ChannelId: p.ChannelId, AccessHash: p.AccessHash})
	case PeerUserFromMessage, PeerChannelFromMessage:
		if p.Via == nil {
			return nil, fmt.Errorf("peer %s without source peer", p.Kind)
		}
		if p.Kind == PeerUserFromMessage {
			return encodeTagged(string(p.Kind), peerUserFromMessageJson{Peer: *p.Via, MsgId: p.MsgId, UserId: p.UserId})
		}
		return encodeTagged(string(p.Kind), peerChannelFromMessageJson{Peer: *p.Via, MsgId: p.MsgId, ChannelId: p.ChannelId})
	}

	return nil, fmt.Errorf("unknown peer kind %q", p.Kind)
}

func (p *Peer) UnmarshalJSON(data []byte) error {
	tag, payload, err := DecodeTagged(data)
	if err != nil {
		return fmt.Errorf("peer: %w", err)
	}
	kind := PeerKind(tag)
	switch kind {
	case PeerEmpty, PeerSelf:
		*p = Peer{Kind: kind}
		return nil
	}
	if payload == nil {
		return fmt.Errorf("peer %q requires a payload", tag)
	}

	switch kind {
	case PeerChat:
		var v peerChatJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*p = ChatPeer(v.ChatId)
	case PeerUser:
		var v peerUserJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*p = UserPeer(v.UserId, v.AccessHash)
	case PeerChannel:
		var v peerChannelJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*p = ChannelPeer(v.ChannelId, v.AccessHash)
	case PeerUserFromMessage:
		var v peerUserFromMessageJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*p = UserFromMessagePeer(v.Peer, v.MsgId, v.UserId)
	case PeerChannelFromMessage:
		var v peerChannelFromMessageJson
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		*p = ChannelFromMessagePeer(v.Peer, v.MsgId, v.ChannelId)
	default:
		return fmt.Errorf("unknown peer kind %q", tag)
	}

	return nil
}

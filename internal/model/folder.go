package model

import (
	"encoding/json"
	"fmt"
)

const (
	FolderTagDefault  = "Default"
	FolderTagFilter   = "Filter"
	FolderTagChatlist = "Chatlist"
)

// Folder is one server-side chat folder: DefaultFolder, *Filter or *Chatlist.
type Folder interface {
	// Title reports false for the default folder, which has no title.
	Title() (string, bool)
	Id() (int32, bool)
	isFolder()
}

// DefaultFolder is the "All chats" list. It is never created, merged or updated.
type DefaultFolder struct{}

func (DefaultFolder) Title() (string, bool) { return "", false }
func (DefaultFolder) Id() (int32, bool)     { return 0, false }
func (DefaultFolder) isFolder()             {}

type Filter struct {
	Contacts        bool    `json:"contacts"`
	NonContacts     bool    `json:"non_contacts"`
	Groups          bool    `json:"groups"`
	Broadcasts      bool    `json:"broadcasts"`
	Bots            bool    `json:"bots"`
	ExcludeMuted    bool    `json:"exclude_muted"`
	ExcludeRead     bool    `json:"exclude_read"`
	ExcludeArchived bool    `json:"exclude_archived"`
	FolderId        int32   `json:"id"`
	Name            string  `json:"title"`
	Emoticon        *string `json:"emoticon"`
	Color           *int32  `json:"color"`
	PinnedPeers     []Peer  `json:"pinned_peers"`
	IncludePeers    []Peer  `json:"include_peers"`
	ExcludePeers    []Peer  `json:"exclude_peers"`
}

func (f *Filter) Title() (string, bool) { return f.Name, true }
func (f *Filter) Id() (int32, bool)     { return f.FolderId, true }
func (f *Filter) isFolder()             {}

func (f *Filter) Clone() *Filter {
	c := *f
	c.Emoticon = clonePtr(f.Emoticon)
	c.Color = clonePtr(f.Color)
	c.PinnedPeers = clonePeers(f.PinnedPeers)
	c.IncludePeers = clonePeers(f.IncludePeers)
	c.ExcludePeers = clonePeers(f.ExcludePeers)

	return &c
}

// Chatlist is a shareable folder: no type flags and no exclusions.
type Chatlist struct {
	HasMyInvites bool    `json:"has_my_invites"`
	FolderId     int32   `json:"id"`
	Name         string  `json:"title"`
	Emoticon     *string `json:"emoticon"`
	Color        *int32  `json:"color"`
	PinnedPeers  []Peer  `json:"pinned_peers"`
	IncludePeers []Peer  `json:"include_peers"`
}

func (c *Chatlist) Title() (string, bool) { return c.Name, true }
func (c *Chatlist) Id() (int32, bool)     { return c.FolderId, true }
func (c *Chatlist) isFolder()             {}

func (c *Chatlist) Clone() *Chatlist {
	n := *c
	n.Emoticon = clonePtr(c.Emoticon)
	n.Color = clonePtr(c.Color)
	n.PinnedPeers = clonePeers(c.PinnedPeers)
	n.IncludePeers = clonePeers(c.IncludePeers)

	return &n
}

// WithId returns a copy of f carrying id. The default folder is returned as is.
func WithId(f Folder, id int32) Folder {
	switch v := f.(type) {
	case *Filter:
		c := v.Clone()
		c.FolderId = id
		return c
	case *Chatlist:
		c := v.Clone()
		c.FolderId = id
		return c
	}

	return f
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}

func clonePeers(peers []Peer) []Peer {
	if peers == nil {
		return nil
	}
	res := make([]Peer, len(peers))
	copy(res, peers)

	return res
}

func nonNilPeers(peers []Peer) []Peer {
	if peers == nil {
		return []Peer{}
	}

	return peers
}

func MarshalFolder(f Folder) ([]byte, error) {
	switch v := f.(type) {
	case DefaultFolder:
		return encodeTagged(FolderTagDefault, nil)
	case *Filter:
		c := *v
		c.PinnedPeers = nonNilPeers(c.PinnedPeers)
		c.IncludePeers = nonNilPeers(c.IncludePeers)
		c.ExcludePeers = nonNilPeers(c.ExcludePeers)
		return encodeTagged(FolderTagFilter, c)
	case *Chatlist:
		c := *v
		c.PinnedPeers = nonNilPeers(c.PinnedPeers)
		c.IncludePeers = nonNilPeers(c.IncludePeers)
		return encodeTagged(FolderTagChatlist, c)
	}

	return nil, fmt.Errorf("unknown folder type %T", f)
}

func UnmarshalFolder(data []byte) (Folder, error) {
	tag, payload, err := DecodeTagged(data)
	if err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}
	switch tag {
	case FolderTagDefault:
		return DefaultFolder{}, nil
	case FolderTagFilter:
		var f Filter
		if err := json.Unmarshal(payload, &f); err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		return &f, nil
	case FolderTagChatlist:
		var c Chatlist
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("chatlist: %w", err)
		}
		return &c, nil
	}

	return nil, fmt.Errorf("unknown folder kind %q", tag)
}

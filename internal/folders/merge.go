package folders

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

// PeerMergePolicy decides which desired peers are appended to the peer lists of
// an existing folder.
type PeerMergePolicy int

const (
	// PeerMergeAppendMissing appends desired peers the folder does not have yet.
	PeerMergeAppendMissing PeerMergePolicy = iota
	// PeerMergeAppendPresent appends desired peers the folder already has and
	// drops the rest. Older releases of the tool merged this way.
	PeerMergeAppendPresent
)

func ParsePeerMergePolicy(s string) (PeerMergePolicy, error) {
	switch strings.ToLower(s) {
	case "", "missing":
		return PeerMergeAppendMissing, nil
	case "present":
		return PeerMergeAppendPresent, nil
	}

	return 0, fmt.Errorf("unknown peer merge policy %q", s)
}

func (p PeerMergePolicy) String() string {
	if p == PeerMergeAppendPresent {
		return "present"
	}

	return "missing"
}

func (p PeerMergePolicy) mergePeers(current []model.Peer, incoming []model.Peer) []model.Peer {
	res := slices.Clone(current)
	for _, peer := range incoming {
		present := model.ContainsPeer(current, peer)
		if present == (p == PeerMergeAppendPresent) {
			res = append(res, peer)
		}
	}

	return res
}

// Merge combines a folder stored on the server with the desired folder of the
// same title. Flags are OR-ed, current emoticon and color win over desired ones.
// A filter merged with a chatlist always produces a filter. Either side being
// the default folder yields the default folder.
func Merge(current model.Folder, desired model.Folder, policy PeerMergePolicy) model.Folder {
	switch cur := current.(type) {
	case *model.Filter:
		switch des := desired.(type) {
		case *model.Filter:
			return mergeFilters(cur, des, policy)
		case *model.Chatlist:
			return mergeFilterWithChatlist(cur, des, policy)
		}
	case *model.Chatlist:
		switch des := desired.(type) {
		case *model.Filter:
			return mergeFilterWithChatlist(des, cur, policy)
		case *model.Chatlist:
			return mergeChatlists(cur, des, policy)
		}
	}

	return model.DefaultFolder{}
}

func mergeChatlists(first *model.Chatlist, second *model.Chatlist, policy PeerMergePolicy) *model.Chatlist {
	res := first.Clone()
	res.HasMyInvites = res.HasMyInvites || second.HasMyInvites
	res.Emoticon = firstSet(res.Emoticon, second.Emoticon)
	res.Color = firstSet(res.Color, second.Color)
	res.IncludePeers = policy.mergePeers(res.IncludePeers, second.IncludePeers)
	res.PinnedPeers = policy.mergePeers(res.PinnedPeers, second.PinnedPeers)

	return res
}

func mergeFilters(first *model.Filter, second *model.Filter, policy PeerMergePolicy) *model.Filter {
	res := first.Clone()
	res.Contacts = res.Contacts || second.Contacts
	res.NonContacts = res.NonContacts || second.NonContacts
	res.Groups = res.Groups || second.Groups
	res.Broadcasts = res.Broadcasts || second.Broadcasts
	res.Bots = res.Bots || second.Bots
	res.ExcludeMuted = res.ExcludeMuted || second.ExcludeMuted
	res.ExcludeRead = res.ExcludeRead || second.ExcludeRead
	res.ExcludeArchived = res.ExcludeArchived || second.ExcludeArchived
	res.Emoticon = firstSet(res.Emoticon, second.Emoticon)
	res.Color = firstSet(res.Color, second.Color)
	res.IncludePeers = policy.mergePeers(res.IncludePeers, second.IncludePeers)
	res.PinnedPeers = policy.mergePeers(res.PinnedPeers, second.PinnedPeers)
	res.ExcludePeers = policy.mergePeers(res.ExcludePeers, second.ExcludePeers)

	return res
}

func mergeFilterWithChatlist(filter *model.Filter, chatlist *model.Chatlist, policy PeerMergePolicy) *model.Filter {
	res := filter.Clone()
	res.Emoticon = firstSet(res.Emoticon, chatlist.Emoticon)
	res.Color = firstSet(res.Color, chatlist.Color)
	res.IncludePeers = policy.mergePeers(res.IncludePeers, chatlist.IncludePeers)
	res.PinnedPeers = policy.mergePeers(res.PinnedPeers, chatlist.PinnedPeers)

	return res
}

func firstSet[T any](a *T, b *T) *T {
	if a != nil {
		return a
	}
	if b == nil {
		return nil
	}
	v := *b

	return &v
}

package folders

import (
	"testing"

	"github.com/alexbilevskiy/tgfolders/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	peerA = model.ChatPeer(1)
	peerB = model.UserPeer(2, 20)
	peerC = model.ChannelPeer(3, 30)
)

func sampleFilter() *model.Filter {
	return &model.Filter{
		Groups:       true,
		ExcludeMuted: true,
		FolderId:     4,
		Name:         "Work",
		Emoticon:     ptr("💼"),
		PinnedPeers:  []model.Peer{peerA},
		IncludePeers: []model.Peer{peerA, peerB},
		ExcludePeers: []model.Peer{peerC},
	}
}

func sampleChatlist() *model.Chatlist {
	return &model.Chatlist{
		HasMyInvites: true,
		FolderId:     5,
		Name:         "News",
		Color:        ptr(int32(3)),
		IncludePeers: []model.Peer{peerC},
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	for _, f := range []model.Folder{
		sampleFilter(),
		sampleChatlist(),
		&model.Chatlist{Name: "empty"},
		&model.Filter{Name: "flags only", Bots: true},
	} {
		merged := Merge(f, f, PeerMergeAppendMissing)
		assert.Equal(t, f, merged)
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	current := sampleFilter()
	desired := &model.Filter{Name: "Work", Bots: true, IncludePeers: []model.Peer{peerC}}

	Merge(current, desired, PeerMergeAppendMissing)

	assert.Equal(t, sampleFilter(), current)
	assert.False(t, current.Bots)
}

func TestMergePeerPolicies(t *testing.T) {
	current := &model.Chatlist{Name: "x", IncludePeers: []model.Peer{peerA, peerB}}
	desired := &model.Chatlist{Name: "x", IncludePeers: []model.Peer{peerB, peerC}}

	missing := Merge(current, desired, PeerMergeAppendMissing).(*model.Chatlist)
	assert.Equal(t, []model.Peer{peerA, peerB, peerC}, missing.IncludePeers)

	present := Merge(current, desired, PeerMergeAppendPresent).(*model.Chatlist)
	assert.Equal(t, []model.Peer{peerA, peerB, peerB}, present.IncludePeers)
}

func TestMergePresentPolicyGrowsOnRepeat(t *testing.T) {
	f := &model.Chatlist{Name: "x", IncludePeers: []model.Peer{peerA}}

	merged := Merge(f, f, PeerMergeAppendPresent).(*model.Chatlist)

	assert.Equal(t, []model.Peer{peerA, peerA}, merged.IncludePeers)
}

func TestMergeChatlists(t *testing.T) {
	current := &model.Chatlist{Name: "News", FolderId: 5, Emoticon: ptr("📰")}
	desired := sampleChatlist()

	merged, ok := Merge(current, desired, PeerMergeAppendMissing).(*model.Chatlist)

	require.True(t, ok)
	assert.True(t, merged.HasMyInvites)
	assert.Equal(t, "📰", *merged.Emoticon)
	assert.Equal(t, int32(3), *merged.Color)
	assert.Equal(t, int32(5), merged.FolderId)
	assert.Equal(t, []model.Peer{peerC}, merged.IncludePeers)
}

func TestMergeFilters(t *testing.T) {
	current := sampleFilter()
	desired := &model.Filter{
		Name:            "Work",
		Contacts:        true,
		ExcludeArchived: true,
		Emoticon:        ptr("🔧"),
		Color:           ptr(int32(1)),
		IncludePeers:    []model.Peer{peerC},
		ExcludePeers:    []model.Peer{peerA},
	}

	merged, ok := Merge(current, desired, PeerMergeAppendMissing).(*model.Filter)

	require.True(t, ok)
	assert.True(t, merged.Contacts)
	assert.True(t, merged.Groups)
	assert.True(t, merged.ExcludeMuted)
	assert.True(t, merged.ExcludeArchived)
	assert.False(t, merged.Bots)
	assert.Equal(t, "💼", *merged.Emoticon)
	assert.Equal(t, int32(1), *merged.Color)
	assert.Equal(t, []model.Peer{peerA, peerB, peerC}, merged.IncludePeers)
	assert.Equal(t, []model.Peer{peerC, peerA}, merged.ExcludePeers)
}

func TestMergeFilterWithChatlistGivesFilter(t *testing.T) {
	filter := &model.Filter{Name: "Mixed", Groups: true, Emoticon: ptr("🧩"), IncludePeers: []model.Peer{peerA}}
	chatlist := &model.Chatlist{Name: "Mixed", HasMyInvites: true, Emoticon: ptr("🔗"), Color: ptr(int32(6)), IncludePeers: []model.Peer{peerB}}

	for _, merged := range []model.Folder{
		Merge(filter, chatlist, PeerMergeAppendMissing),
		Merge(chatlist, filter, PeerMergeAppendMissing),
	} {
		res, ok := merged.(*model.Filter)
		require.True(t, ok)
		assert.True(t, res.Groups)
		assert.Equal(t, "🧩", *res.Emoticon)
		assert.Equal(t, int32(6), *res.Color)
		assert.Equal(t, []model.Peer{peerA, peerB}, res.IncludePeers)
	}
}

func TestMergeWithDefault(t *testing.T) {
	assert.Equal(t, model.DefaultFolder{}, Merge(model.DefaultFolder{}, sampleFilter(), PeerMergeAppendMissing))
	assert.Equal(t, model.DefaultFolder{}, Merge(sampleChatlist(), model.DefaultFolder{}, PeerMergeAppendMissing))
}

func TestParsePeerMergePolicy(t *testing.T) {
	for in, want := range map[string]PeerMergePolicy{
		"":        PeerMergeAppendMissing,
		"missing": PeerMergeAppendMissing,
		"Present": PeerMergeAppendPresent,
	} {
		got, err := ParsePeerMergePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParsePeerMergePolicy("dedupe")
	assert.Error(t, err)
}

package folders

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alexbilevskiy/tgfolders/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFolderId(t *testing.T) {
	assert.Equal(t, int32(8), NextFolderId([]model.Folder{
		model.DefaultFolder{},
		&model.Filter{FolderId: 2, Name: "a"},
		&model.Chatlist{FolderId: 7, Name: "b"},
	}))
	assert.Equal(t, int32(2), NextFolderId(nil))
	assert.Equal(t, int32(2), NextFolderId([]model.Folder{model.DefaultFolder{}}))
}

func TestApplyCreatesWithNextId(t *testing.T) {
	svc := &fakeService{folders: []model.Folder{
		&model.Filter{FolderId: 2, Name: "a"},
		&model.Filter{FolderId: 7, Name: "b"},
	}}
	desired := []model.Folder{
		&model.Chatlist{Name: "new", IncludePeers: []model.Peer{peerA}},
		&model.Chatlist{Name: "newer"},
	}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Apply(context.Background(), desired)

	require.NoError(t, err)
	assert.Equal(t, []int32{8, 9}, svc.requestIds())
	id, _ := svc.requests[0].folder.Id()
	assert.Equal(t, int32(8), id)
	assert.Equal(t, []model.Peer{peerA}, svc.requests[0].folder.(*model.Chatlist).IncludePeers)
}

func TestApplyOnEmptyAccountStartsAtMinimumId(t *testing.T) {
	svc := &fakeService{}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Apply(context.Background(), []model.Folder{&model.Chatlist{Name: "x"}})

	require.NoError(t, err)
	assert.Equal(t, []int32{2}, svc.requestIds())
}

func TestApplyMatchesByTitle(t *testing.T) {
	svc := &fakeService{folders: []model.Folder{
		model.DefaultFolder{},
		&model.Chatlist{FolderId: 5, Name: "T", IncludePeers: []model.Peer{peerA}},
		&model.Chatlist{FolderId: 6, Name: "T", IncludePeers: []model.Peer{peerC}},
	}}
	desired := []model.Folder{&model.Chatlist{FolderId: 6, Name: "T", IncludePeers: []model.Peer{peerB}}}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Apply(context.Background(), desired)

	require.NoError(t, err)
	require.Len(t, svc.requests, 1)
	assert.Equal(t, int32(5), svc.requests[0].id)
	sent := svc.requests[0].folder.(*model.Chatlist)
	assert.Equal(t, int32(5), sent.FolderId)
	assert.Equal(t, []model.Peer{peerA, peerB}, sent.IncludePeers)
}

func TestApplySkipsDefaultFolder(t *testing.T) {
	svc := &fakeService{folders: []model.Folder{model.DefaultFolder{}, &model.Filter{FolderId: 3, Name: "a"}}}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Apply(context.Background(), []model.Folder{model.DefaultFolder{}})

	require.NoError(t, err)
	assert.Empty(t, svc.requests)
}

func TestApplyContinuesAfterFailure(t *testing.T) {
	first := errors.New("FILTER_INCLUDE_EMPTY")
	last := errors.New("FLOOD_WAIT_10")
	svc := &fakeService{
		folders: []model.Folder{&model.Chatlist{FolderId: 3, Name: "b"}},
		failIds: map[int32]error{4: first, 3: last},
	}
	desired := []model.Folder{
		&model.Chatlist{Name: "a"},
		&model.Chatlist{Name: "b"},
		&model.Chatlist{Name: "c"},
	}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Apply(context.Background(), desired)

	assert.Equal(t, []int32{4, 3, 5}, svc.requestIds())
	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	require.Len(t, applyErr.Errors, 2)
	assert.ErrorIs(t, applyErr.Last(), last)
	assert.ErrorIs(t, err, first)
	assert.ErrorContains(t, err, "FLOOD_WAIT_10")

	var updateErr *RemoteUpdateError
	require.ErrorAs(t, applyErr.Last(), &updateErr)
	assert.Equal(t, OpUpdate, updateErr.Op)
	assert.Equal(t, "b", updateErr.Title)
}

func TestApplyFailsWhenFoldersCannotBeListed(t *testing.T) {
	svc := &fakeService{listErr: errors.New("AUTH_KEY_UNREGISTERED")}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Apply(context.Background(), []model.Folder{&model.Chatlist{Name: "x"}})

	var listErr *model.RemoteListError
	require.ErrorAs(t, err, &listErr)
	assert.Equal(t, "folders", listErr.What)
	assert.Empty(t, svc.requests)
}

func TestApplyTwiceSendsNoDrift(t *testing.T) {
	svc := &fakeService{folders: []model.Folder{
		model.DefaultFolder{},
		&model.Filter{FolderId: 2, Name: "Work", Groups: true, IncludePeers: []model.Peer{peerA}},
	}}
	desired := []model.Folder{
		&model.Chatlist{Name: "Work", IncludePeers: []model.Peer{peerA, peerB}},
		&model.Chatlist{Name: "Channels", IncludePeers: []model.Peer{peerC}},
	}
	r := NewReconciler(discardLog, svc, PeerMergeAppendMissing)

	require.NoError(t, r.Apply(context.Background(), desired))
	after := slices.Clone(svc.folders)
	svc.requests = nil
	require.NoError(t, r.Apply(context.Background(), desired))

	require.Len(t, svc.requests, 2)
	assert.Equal(t, after[1], svc.requests[0].folder)
	assert.Equal(t, after[2], svc.requests[1].folder)
}

func TestClearDeletesCustomFolders(t *testing.T) {
	svc := &fakeService{folders: []model.Folder{
		&model.Filter{FolderId: 3, Name: "a"},
		model.DefaultFolder{},
		&model.Chatlist{FolderId: 9, Name: "b"},
	}}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Clear(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int32{3, 9}, svc.requestIds())
	for _, r := range svc.requests {
		assert.Nil(t, r.folder)
	}
	assert.Equal(t, []model.Folder{model.DefaultFolder{}}, svc.folders)
}

func TestClearReportsFailures(t *testing.T) {
	svc := &fakeService{
		folders: []model.Folder{&model.Filter{FolderId: 3, Name: "a"}, &model.Filter{FolderId: 4, Name: "b"}},
		failIds: map[int32]error{3: errors.New("FILTER_ID_INVALID")},
	}

	err := NewReconciler(discardLog, svc, PeerMergeAppendMissing).Clear(context.Background())

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	assert.Len(t, applyErr.Errors, 1)
	assert.Equal(t, []int32{3, 4}, svc.requestIds())
}

func TestFromAssignment(t *testing.T) {
	a := model.NewAssignment()
	a.Add("b", peerA)
	a.Add("a", peerB)
	a.Add("b", peerC)

	res := FromAssignment(a)

	require.Len(t, res, 2)
	first := res[0].(*model.Chatlist)
	assert.Equal(t, "b", first.Name)
	assert.Equal(t, int32(0), first.FolderId)
	assert.False(t, first.HasMyInvites)
	assert.Nil(t, first.Emoticon)
	assert.Empty(t, first.PinnedPeers)
	assert.Equal(t, []model.Peer{peerA, peerC}, first.IncludePeers)
	assert.Equal(t, "a", res[1].(*model.Chatlist).Name)
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folders.json")
	s := &model.Snapshot{TagsEnabled: true, Filters: []model.Folder{
		model.DefaultFolder{},
		&model.Filter{FolderId: 2, Name: "a", IncludePeers: []model.Peer{peerA}, PinnedPeers: []model.Peer{}, ExcludePeers: []model.Peer{}},
	}}

	require.NoError(t, SaveSnapshot(path, s))
	loaded, err := LoadSnapshot(path)

	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	_, err = LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

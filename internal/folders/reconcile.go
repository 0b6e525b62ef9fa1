package folders

import (
	"context"
	"log/slog"

	"github.com/alexbilevskiy/tgfolders/internal/consts"
	"github.com/alexbilevskiy/tgfolders/internal/model"
)

// Service is the chat folder API of the account.
type Service interface {
	// ListFolders returns the folders in server order, the default folder included.
	ListFolders(ctx context.Context) (*model.Snapshot, error)
	// UpsertFolder creates or replaces the folder with the given id. A nil
	// folder deletes it.
	UpsertFolder(ctx context.Context, id int32, folder model.Folder) error
}

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change is one request computed by Plan.
type Change struct {
	Op     string
	Id     int32
	Folder model.Folder
}

func (c Change) Title() string {
	if c.Folder == nil {
		return ""
	}
	title, _ := c.Folder.Title()

	return title
}

// NextFolderId returns the id a new folder gets: one above the largest id in
// use, never below consts.MinCustomFolderId.
func NextFolderId(current []model.Folder) int32 {
	next := consts.MinCustomFolderId
	for _, f := range current {
		if id, ok := f.Id(); ok && id+1 > next {
			next = id + 1
		}
	}

	return next
}

// FindByTitle returns the first folder with the given title. The default
// folder never matches.
func FindByTitle(current []model.Folder, title string) (model.Folder, bool) {
	for _, f := range current {
		if t, ok := f.Title(); ok && t == title {
			return f, true
		}
	}

	return nil, false
}

// Plan matches desired folders against current ones by title. Ids carried by
// desired folders are ignored.
func Plan(current []model.Folder, desired []model.Folder, policy PeerMergePolicy) []Change {
	next := NextFolderId(current)
	var changes []Change
	for _, want := range desired {
		title, ok := want.Title()
		if !ok {
			continue
		}
		have, found := FindByTitle(current, title)
		if !found {
			changes = append(changes, Change{Op: OpCreate, Id: next, Folder: model.WithId(want, next)})
			next++
			continue
		}
		id, _ := have.Id()
		changes = append(changes, Change{Op: OpUpdate, Id: id, Folder: model.WithId(Merge(have, want, policy), id)})
	}

	return changes
}

// FromAssignment builds one chatlist per assigned folder name, in assignment order.
func FromAssignment(a *model.Assignment) []model.Folder {
	res := make([]model.Folder, 0, a.Len())
	for _, name := range a.Names() {
		peers := a.Peers(name)
		include := make([]model.Peer, len(peers))
		copy(include, peers)
		res = append(res, &model.Chatlist{
			Name:         name,
			PinnedPeers:  []model.Peer{},
			IncludePeers: include,
		})
	}

	return res
}

type Reconciler struct {
	log    *slog.Logger
	svc    Service
	policy PeerMergePolicy
}

func NewReconciler(log *slog.Logger, svc Service, policy PeerMergePolicy) *Reconciler {
	return &Reconciler{log: log, svc: svc, policy: policy}
}

func (r *Reconciler) current(ctx context.Context) ([]model.Folder, error) {
	snapshot, err := r.svc.ListFolders(ctx)
	if err != nil {
		return nil, &model.RemoteListError{What: "folders", Err: err}
	}

	return snapshot.Filters, nil
}

// Apply creates or merges every desired folder. A failed request does not stop
// the batch; all failures are returned together as *ApplyError.
func (r *Reconciler) Apply(ctx context.Context, desired []model.Folder) error {
	current, err := r.current(ctx)
	if err != nil {
		return err
	}

	return r.send(ctx, Plan(current, desired, r.policy))
}

// Clear deletes every folder except the default one.
func (r *Reconciler) Clear(ctx context.Context) error {
	current, err := r.current(ctx)
	if err != nil {
		return err
	}
	var changes []Change
	for _, f := range current {
		id, ok := f.Id()
		if !ok {
			continue
		}
		title, _ := f.Title()
		r.log.Debug("folder scheduled for removal", "id", id, "title", title)
		changes = append(changes, Change{Op: OpDelete, Id: id, Folder: f})
	}

	return r.send(ctx, changes)
}

func (r *Reconciler) send(ctx context.Context, changes []Change) error {
	var failed []error
	for _, c := range changes {
		payload := c.Folder
		if c.Op == OpDelete {
			payload = nil
		}
		err := r.svc.UpsertFolder(ctx, c.Id, payload)
		if err != nil {
			uerr := &RemoteUpdateError{Op: c.Op, Id: c.Id, Title: c.Title(), Err: err}
			r.log.Error("folder request failed", "op", c.Op, "id", c.Id, "title", c.Title(), "error", err)
			failed = append(failed, uerr)
			continue
		}
		r.log.Info("folder request sent", "op", c.Op, "id", c.Id, "title", c.Title())
	}
	if len(failed) > 0 {
		return &ApplyError{Errors: failed}
	}

	return nil
}

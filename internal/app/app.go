package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/alexbilevskiy/tgfolders/internal/consts"
	"github.com/alexbilevskiy/tgfolders/internal/db"
	"github.com/alexbilevskiy/tgfolders/internal/folders"
	"github.com/alexbilevskiy/tgfolders/internal/model"
	"github.com/alexbilevskiy/tgfolders/internal/rules"
)

// LatestSnapshot selects the newest archived snapshot of any kind.
const LatestSnapshot = "latest"

var ErrNoStore = errors.New("snapshot storage is disabled")

// Backend is the chat service an authorized account talks to.
type Backend interface {
	rules.DialogLister
	rules.ChatInfoFetcher
	folders.Service
}

type App struct {
	log     *slog.Logger
	backend Backend
	store   db.SnapshotStore
	policy  folders.PeerMergePolicy
}

// New builds the command handlers. store may be nil, archiving is skipped then.
func New(log *slog.Logger, backend Backend, store db.SnapshotStore, policy folders.PeerMergePolicy) *App {
	return &App{log: log, backend: backend, store: store, policy: policy}
}

func (a *App) reconciler() *folders.Reconciler {
	return folders.NewReconciler(a.log, a.backend, a.policy)
}

// archive failures are logged, they never fail the command.
func (a *App) archive(ctx context.Context, kind string, s *model.Snapshot) {
	if a.store == nil {
		return
	}
	rec, err := a.store.Save(ctx, kind, s)
	if err != nil {
		a.log.Warn("failed to archive snapshot", "kind", kind, "error", err)
		return
	}
	a.log.Info("snapshot archived", "id", rec.Id, "kind", kind, "folders", rec.Folders)
}

func (a *App) Backup(ctx context.Context, path string) error {
	s, err := a.backend.ListFolders(ctx)
	if err != nil {
		return &model.RemoteListError{What: "folders", Err: err}
	}
	if err := folders.SaveSnapshot(path, s); err != nil {
		return err
	}
	a.log.Info("folders saved", "path", path, "folders", len(s.Filters))
	a.archive(ctx, consts.SnapshotKindBackup, s)

	return nil
}

// Restore applies a snapshot file, or an archived snapshot when ref is set.
func (a *App) Restore(ctx context.Context, path string, ref string) error {
	var s *model.Snapshot
	var err error
	if ref != "" {
		s, err = a.loadArchived(ctx, ref)
	} else {
		s, err = folders.LoadSnapshot(path)
	}
	if err != nil {
		return err
	}
	a.log.Info("restoring folders", "folders", len(s.Filters))

	return a.reconciler().Apply(ctx, s.Filters)
}

func (a *App) loadArchived(ctx context.Context, ref string) (*model.Snapshot, error) {
	if a.store == nil {
		return nil, ErrNoStore
	}
	var rec *db.SnapshotRecord
	var err error
	if ref == LatestSnapshot {
		rec, err = a.store.Latest(ctx, "")
	} else {
		rec, err = a.store.Get(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", ref, err)
	}

	return rec.Snapshot, nil
}

func (a *App) Clear(ctx context.Context) error {
	return a.reconciler().Clear(ctx)
}

func (a *App) History(ctx context.Context, w io.Writer, limit int) error {
	if a.store == nil {
		return ErrNoStore
	}
	records, err := a.store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tCREATED\tFOLDERS")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", rec.Id, rec.Kind, rec.CreatedAt.Local().Format(time.DateTime), rec.Folders)
	}

	return tw.Flush()
}

// Assign sorts dialogs into folders by the rule file. A dry run prints the
// resulting folders instead of sending them.
func (a *App) Assign(ctx context.Context, rulesPath string, dryRun bool, w io.Writer) error {
	ruleList, err := rules.LoadRules(rulesPath)
	if err != nil {
		return err
	}
	engine := rules.NewEngine(a.log, ruleList, a.backend)
	assignment, err := engine.Assign(ctx, a.backend)
	if err != nil {
		return err
	}
	desired := folders.FromAssignment(assignment)

	if dryRun {
		return printAssignment(w, assignment)
	}
	a.archive(ctx, consts.SnapshotKindAssign, &model.Snapshot{Filters: desired})

	return a.reconciler().Apply(ctx, desired)
}

func printAssignment(w io.Writer, assignment *model.Assignment) error {
	for _, name := range assignment.Names() {
		peers := assignment.Peers(name)
		if _, err := fmt.Fprintf(w, "%s (%d)\n", name, len(peers)); err != nil {
			return err
		}
		for _, p := range peers {
			if _, err := fmt.Fprintf(w, "  %s\n", p); err != nil {
				return err
			}
		}
	}

	return nil
}

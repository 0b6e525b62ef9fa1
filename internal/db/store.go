package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexbilevskiy/tgfolders/internal/config"
	"github.com/alexbilevskiy/tgfolders/internal/model"
)

var ErrNotFound = errors.New("snapshot not found")

// SnapshotRecord is one archived folder snapshot.
type SnapshotRecord struct {
	Id        string
	Kind      string
	CreatedAt time.Time
	Folders   int
	Snapshot  *model.Snapshot
}

type SnapshotStore interface {
	Save(ctx context.Context, kind string, snapshot *model.Snapshot) (*SnapshotRecord, error)
	Get(ctx context.Context, id string) (*SnapshotRecord, error)
	// Latest returns the newest record of the kind, any kind if empty.
	Latest(ctx context.Context, kind string) (*SnapshotRecord, error)
	// List returns records newest first, without their snapshots.
	List(ctx context.Context, limit int) ([]*SnapshotRecord, error)
	Close(ctx context.Context) error
}

// OpenStore returns nil without error when archiving is disabled.
func OpenStore(ctx context.Context, cfg *config.Config) (SnapshotStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageNone:
		return nil, nil
	case config.StorageMongo:
		client, err := NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client, cfg.Mongo["db"]), nil
	case config.StorageSqlite, "":
		store, err := OpenSqlite(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func countFolders(s *model.Snapshot) int {
	n := 0
	for _, f := range s.Filters {
		if _, ok := f.Id(); ok {
			n++
		}
	}

	return n
}

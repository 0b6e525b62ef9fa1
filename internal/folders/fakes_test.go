package folders

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

var discardLog = slog.New(slog.DiscardHandler)

type request struct {
	id     int32
	folder model.Folder
}

// fakeService keeps folders in server order and applies upserts to them.
type fakeService struct {
	folders  []model.Folder
	listErr  error
	failIds  map[int32]error
	requests []request
}

func (s *fakeService) ListFolders(_ context.Context) (*model.Snapshot, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	return &model.Snapshot{Filters: slices.Clone(s.folders)}, nil
}

func (s *fakeService) UpsertFolder(_ context.Context, id int32, folder model.Folder) error {
	s.requests = append(s.requests, request{id: id, folder: folder})
	if err, ok := s.failIds[id]; ok {
		return err
	}
	for i, f := range s.folders {
		if fid, ok := f.Id(); ok && fid == id {
			if folder == nil {
				s.folders = slices.Delete(s.folders, i, i+1)
			} else {
				s.folders[i] = folder
			}
			return nil
		}
	}
	if folder == nil {
		return errors.New("FILTER_ID_INVALID")
	}
	s.folders = append(s.folders, folder)

	return nil
}

func (s *fakeService) requestIds() []int32 {
	ids := make([]int32, 0, len(s.requests))
	for _, r := range s.requests {
		ids = append(ids, r.id)
	}

	return ids
}

func ptr[T any](v T) *T {
	return &v
}

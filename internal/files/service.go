// Package files validates and creates file records, enforces the hierarchy
// and ownership invariants, and hands image post-processing to the job queue.
package files

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/apperr"
	"filedrive.dev/api/internal/database"
	"filedrive.dev/api/internal/queue"
)

// PageSize is the fixed listing window.
const PageSize = 20

// Store is the slice of the file collection the service needs.
type Store interface {
	Insert(ctx context.Context, file *database.File) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*database.File, error)
	GetForUser(ctx context.Context, id, userID primitive.ObjectID) (*database.File, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID, parent database.ParentRef, skip, limit int64) ([]database.File, error)
}

type Service struct {
	store    Store
	producer queue.Producer
	root     string
	logger   *logrus.Logger
}

func NewService(store Store, producer queue.Producer, storageRoot string, logger *logrus.Logger) *Service {
	return &Service{store: store, producer: producer, root: storageRoot, logger: logger}
}

type CreateRequest struct {
	Name     string
	Type     string
	Data     string // base64-encoded raw bytes; required unless Type is folder
	IsPublic bool
	ParentID string // "" or "0" for the root
}

// Create validates the request, persists bytes for non-folder types and
// inserts the metadata record. For images a thumbnail job is enqueued after
// the record is durable; an enqueue failure never fails the creation.
//
// Validation short-circuits in a fixed order: name, type, data, parent
// existence, parent kind.
func (s *Service) Create(ctx context.Context, userID primitive.ObjectID, req CreateRequest) (*database.File, error) {
	if req.Name == "" {
		return nil, apperr.Invalid("Missing name")
	}
	fileType := database.FileType(req.Type)
	if !fileType.Valid() {
		return nil, apperr.Invalid("Missing type")
	}
	if fileType != database.TypeFolder && req.Data == "" {
		return nil, apperr.Invalid("Missing data")
	}

	parent, err := database.ParseParent(req.ParentID)
	if err != nil {
		return nil, apperr.Invalid("Parent not found")
	}
	if !parent.IsRoot() {
		parentFile, err := s.store.GetByID(ctx, parent.ObjectID())
		if err != nil {
			return nil, apperr.Wrap("parent lookup failed", err)
		}
		if parentFile == nil {
			return nil, apperr.Invalid("Parent not found")
		}
		if parentFile.Type != database.TypeFolder {
			return nil, apperr.Invalid("Parent is not a folder")
		}
	}

	file := &database.File{
		UserID:   userID,
		Name:     req.Name,
		Type:     fileType,
		IsPublic: req.IsPublic,
		Parent:   parent,
	}

	if fileType != database.TypeFolder {
		data, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, apperr.Invalid("Invalid data")
		}
		if err := os.MkdirAll(s.root, 0o755); err != nil {
			return nil, apperr.Wrap("storage root unavailable", err)
		}
		// A fresh UUID per record keeps on-disk paths collision-free with
		// no locking; written files are never mutated afterwards.
		localPath := filepath.Join(s.root, uuid.NewString())
		if err := os.WriteFile(localPath, data, 0o600); err != nil {
			return nil, apperr.Wrap("file write failed", err)
		}
		file.LocalPath = localPath
	}

	id, err := s.store.Insert(ctx, file)
	if err != nil {
		return nil, apperr.Wrap("file insert failed", err)
	}

	if fileType == database.TypeImage {
		job := queue.ThumbnailJob{
			UserID:    userID.Hex(),
			FileID:    id.Hex(),
			LocalPath: file.LocalPath,
		}
		if err := s.producer.Enqueue(ctx, queue.FileQueue, job); err != nil {
			// The record is already durable; surface to operators only.
			s.logger.Errorf("Failed to enqueue thumbnail job for file %s: %s", id.Hex(), err)
		}
	}

	return file, nil
}

// Get returns a record by id scoped to its owner. Records that don't exist
// and records owned by someone else report the same NotFound.
func (s *Service) Get(ctx context.Context, userID primitive.ObjectID, fileID string) (*database.File, error) {
	id, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, apperr.NotFoundErr("Not found")
	}
	file, err := s.store.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, apperr.Wrap("file lookup failed", err)
	}
	if file == nil {
		return nil, apperr.NotFoundErr("Not found")
	}
	return file, nil
}

// List pages through the caller's records under one parent. The root sentinel
// matches top-level records. An out-of-range page is an empty slice, not an
// error; an unparsable parent id matches nothing.
func (s *Service) List(ctx context.Context, userID primitive.ObjectID, parentID string, page int) ([]database.File, error) {
	parent, err := database.ParseParent(parentID)
	if err != nil {
		return []database.File{}, nil
	}
	if page < 0 {
		page = 0
	}
	list, err := s.store.ListForUser(ctx, userID, parent, int64(page)*PageSize, PageSize)
	if err != nil {
		return nil, apperr.Wrap("file listing failed", err)
	}
	return list, nil
}

package vehicle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/storage"
)

const (
	// PhotoURLPrefix is where uploaded photos are served from.
	PhotoURLPrefix = "/v1/vehicles/photos/"

	photoDir       = "vehicles"
	photoMaxWidth  = 1600
	photoMaxHeight = 1000
)

var (
	ErrInvalidPhoto  = apperror.New(http.StatusBadRequest, "file is not a supported image")
	ErrPhotoNotFound = apperror.New(http.StatusNotFound, "photo not found")
)

// FleetInvalidator drops a cached fleet listing.
type FleetInvalidator interface {
	InvalidateFleet(ctx context.Context) error
}

// Photos stores operator-uploaded vehicle pictures.
type Photos struct {
	repo   Repository
	store  storage.Storage
	images *storage.ImageProcessor
	cache  FleetInvalidator
	log    *logger.Logger
}

// NewPhotos wires photo uploads. cache may be nil.
func NewPhotos(repo Repository, store storage.Storage, cache FleetInvalidator, log *logger.Logger) *Photos {
	return &Photos{
		repo:   repo,
		store:  store,
		images: storage.NewImageProcessor(),
		cache:  cache,
		log:    log,
	}
}

// Upload replaces the vehicle's picture with content, resized and stored as JPEG.
func (p *Photos) Upload(ctx context.Context, vehicleID int64, content io.Reader) (*Vehicle, error) {
	v, err := p.repo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	resized, err := p.images.FitJPEG(content, photoMaxWidth, photoMaxHeight)
	if err != nil {
		return nil, ErrInvalidPhoto
	}

	name := uuid.NewString() + ".jpg"
	stored := path.Join(photoDir, name)
	if err := p.store.Save(ctx, stored, resized); err != nil {
		return nil, err
	}

	url := PhotoURLPrefix + name
	if err := p.repo.UpdateImage(ctx, vehicleID, &url); err != nil {
		_ = p.store.Delete(ctx, stored)
		return nil, err
	}

	if old, ok := photoName(v.ImageURL); ok {
		if err := p.store.Delete(ctx, path.Join(photoDir, old)); err != nil {
			p.log.WarnContext(ctx, "failed to remove replaced photo", "vehicle_id", vehicleID, "photo", old, "error", err)
		}
	}
	if p.cache != nil {
		if err := p.cache.InvalidateFleet(ctx); err != nil {
			p.log.WarnContext(ctx, "fleet cache invalidation failed", "error", err)
		}
	}

	p.log.InfoContext(ctx, "vehicle photo replaced", "vehicle_id", vehicleID, "photo", name)
	v.ImageURL = &url
	return v, nil
}

// Open streams a stored photo by file name.
func (p *Photos) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, ".jpg") {
		return nil, ErrPhotoNotFound
	}
	rc, err := p.store.Open(ctx, path.Join(photoDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return rc, nil
}

// photoName reports the stored file behind url when it is one of ours.
func photoName(url *string) (string, bool) {
	if url == nil || !strings.HasPrefix(*url, PhotoURLPrefix) {
		return "", false
	}
	return strings.TrimPrefix(*url, PhotoURLPrefix), true
}

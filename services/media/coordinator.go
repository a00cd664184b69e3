package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	poseimageRepo "yogatrack/database/repository/poseimage"
	"yogatrack/models"
	"yogatrack/services/storage"
	"yogatrack/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reconcileLockTTL = 5 * time.Minute

// DefaultCoordinator is the production Service implementation.
type DefaultCoordinator struct {
	Images poseimageRepo.Repository
	Cloud  storage.CloudStorage
	Local  storage.LocalStore
	Locks  utils.Locker
}

// CreateOffline stores the bytes in the local store and persists a LOCAL,
// offline record.
func (c *DefaultCoordinator) CreateOffline(ctx context.Context, ownerID string, data []byte, meta UploadMeta) (*models.PoseImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("create offline image: empty upload")
	}

	localID, err := c.Local.Write(data)
	if err != nil {
		return nil, fmt.Errorf("create offline image: %w", err)
	}

	img := &models.PoseImage{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		PostureID:      meta.PostureID,
		URL:            "local://" + localID,
		StorageType:    models.StorageLocal,
		LocalStorageID: localID,
		IsOffline:      true,
		FileSize:       int64(len(data)),
		FileName:       meta.FileName,
		ImageType:      meta.ImageType,
	}
	if err := c.Images.Create(ctx, img); err != nil {
		// Roll the orphaned local copy back; a record must own every local id.
		if delErr := c.Local.Delete(localID); delErr != nil {
			utils.GetLogger().Warn("failed to roll back local copy",
				zap.String("localId", localID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("create offline image: %w", err)
	}
	return img, nil
}

// CreateCloud uploads straight to cloud storage and persists a CLOUD record.
func (c *DefaultCoordinator) CreateCloud(ctx context.Context, ownerID string, data []byte, meta UploadMeta) (*models.PoseImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("create cloud image: empty upload")
	}

	id := uuid.NewString()
	cloudID, url, err := c.Cloud.Upload(ctx, bytes.NewReader(data), id)
	if err != nil {
		return nil, fmt.Errorf("create cloud image: %w", err)
	}

	img := &models.PoseImage{
		ID:           id,
		UserID:       ownerID,
		PostureID:    meta.PostureID,
		URL:          url,
		StorageType:  models.StorageCloud,
		CloudflareID: cloudID,
		IsOffline:    false,
		FileSize:     int64(len(data)),
		FileName:     meta.FileName,
		ImageType:    meta.ImageType,
	}
	if err := c.Images.Create(ctx, img); err != nil {
		if delErr := c.Cloud.Delete(ctx, cloudID); delErr != nil {
			utils.GetLogger().Warn("failed to roll back cloud upload",
				zap.String("cloudId", cloudID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("create cloud image: %w", err)
	}
	return img, nil
}

// Reconcile promotes a LOCAL record to cloud-backed storage. Re-running on
// an already-promoted record performs no upload and returns it unchanged.
func (c *DefaultCoordinator) Reconcile(ctx context.Context, img models.PoseImage, retention Retention) (*models.PoseImage, error) {
	logger := utils.GetLogger()

	placement, err := img.Placement()
	if err != nil {
		utils.ReconciliationsTotal.WithLabelValues("integrity").Inc()
		return nil, &IntegrityError{ImageID: img.ID, Err: err}
	}

	local, ok := placement.(models.LocalPlacement)
	if !ok {
		// Already CLOUD or HYBRID: reconciliation is a no-op.
		utils.ReconciliationsTotal.WithLabelValues("noop").Inc()
		return &img, nil
	}

	acquired, err := c.Locks.Acquire(ctx, "reconcile:"+img.ID, reconcileLockTTL)
	if err != nil {
		return nil, fmt.Errorf("reconcile image %s: %w", img.ID, err)
	}
	if !acquired {
		return nil, ErrReconcileBusy
	}
	defer c.Locks.Release(ctx, "reconcile:"+img.ID)

	data, err := c.Local.Read(local.LocalID)
	if err != nil {
		utils.ReconciliationsTotal.WithLabelValues("integrity").Inc()
		return nil, &IntegrityError{ImageID: img.ID, Err: fmt.Errorf("local bytes missing: %w", err)}
	}

	cloudID, url, err := c.Cloud.Upload(ctx, bytes.NewReader(data), img.ID)
	if err != nil {
		// Record stays LOCAL; the next reconciliation pass retries.
		utils.ReconciliationsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("reconcile image %s: upload: %w", img.ID, err)
	}

	keepLocal := retention == RetainLocalCopy
	promoted, err := c.Images.PromoteFromLocal(ctx, img.ID, cloudID, url, keepLocal)
	if err != nil {
		utils.ReconciliationsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("reconcile image %s: %w", img.ID, err)
	}
	if !promoted {
		// Another run won; remove the duplicate upload.
		if delErr := c.Cloud.Delete(ctx, cloudID); delErr != nil {
			logger.Warn("failed to delete duplicate cloud upload",
				zap.String("imageId", img.ID), zap.Error(delErr))
		}
		utils.ReconciliationsTotal.WithLabelValues("noop").Inc()
		return c.Images.GetByID(ctx, img.ID)
	}

	if !keepLocal {
		if delErr := c.Local.Delete(local.LocalID); delErr != nil {
			logger.Warn("failed to delete local copy after promotion",
				zap.String("imageId", img.ID), zap.Error(delErr))
		}
	}

	utils.ReconciliationsTotal.WithLabelValues("promoted").Inc()
	return c.Images.GetByID(ctx, img.ID)
}

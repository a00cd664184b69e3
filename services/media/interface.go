package media

import (
	"context"

	"yogatrack/models"
)

// Retention decides what happens to the local copy after a successful
// promotion to cloud storage.
type Retention int

const (
	// DropLocalCopy promotes to CLOUD and deletes the local bytes.
	DropLocalCopy Retention = iota
	// RetainLocalCopy promotes to HYBRID, keeping the local cache.
	RetainLocalCopy
)

// UploadMeta carries the caller-supplied attributes of an upload.
type UploadMeta struct {
	FileName  string
	ImageType string
	PostureID *string
}

// Service manages the storage-location lifecycle of pose images.
type Service interface {
	// CreateOffline stores the bytes locally and persists a LOCAL record.
	// No network call is made. Fails only on exhausted local storage or a
	// persistence error.
	CreateOffline(ctx context.Context, ownerID string, data []byte, meta UploadMeta) (*models.PoseImage, error)

	// CreateCloud uploads straight to cloud storage and persists a CLOUD
	// record. The online upload path.
	CreateCloud(ctx context.Context, ownerID string, data []byte, meta UploadMeta) (*models.PoseImage, error)

	// Reconcile promotes a LOCAL record to CLOUD or HYBRID per retention.
	// Idempotent: a record already promoted is returned unchanged with no
	// upload. On upload failure the record is left untouched for the next
	// pass.
	Reconcile(ctx context.Context, img models.PoseImage, retention Retention) (*models.PoseImage, error)
}

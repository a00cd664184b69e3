package models

import (
	"fmt"
	"time"
)

// Storage placement tags for a PoseImage.
const (
	StorageLocal  = "LOCAL"
	StorageCloud  = "CLOUD"
	StorageHybrid = "HYBRID"
)

// PoseImage is an uploaded image, optionally attached to a posture. The flat
// storage fields persist the placement; Placement() exposes it as a variant.
type PoseImage struct {
	ID             string    `json:"id" bson:"id"`
	UserID         string    `json:"userId" bson:"userId"`
	PostureID      *string   `json:"postureId,omitempty" bson:"postureId,omitempty"`
	URL            string    `json:"url" bson:"url"`
	StorageType    string    `json:"storageType" bson:"storageType"`
	LocalStorageID string    `json:"localStorageId,omitempty" bson:"localStorageId,omitempty"`
	CloudflareID   string    `json:"cloudflareId,omitempty" bson:"cloudflareId,omitempty"`
	IsOffline      bool      `json:"isOffline" bson:"isOffline"`
	FileSize       int64     `json:"fileSize" bson:"fileSize"`
	FileName       string    `json:"fileName" bson:"fileName"`
	ImageType      string    `json:"imageType" bson:"imageType"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Placement is the storage location of a pose image as a tagged variant.
// Each variant carries only the references valid for that placement, so an
// image with, say, a cloud tag but no cloud id cannot be represented.
type Placement interface {
	isPlacement()
}

// LocalPlacement: only the device-local copy exists; the record is offline.
type LocalPlacement struct {
	LocalID string
}

// CloudPlacement: the cloud copy is authoritative; no local cache is kept.
type CloudPlacement struct {
	CloudID string
}

// HybridPlacement: authoritative cloud copy plus a local cache.
type HybridPlacement struct {
	LocalID string
	CloudID string
}

func (LocalPlacement) isPlacement()  {}
func (CloudPlacement) isPlacement()  {}
func (HybridPlacement) isPlacement() {}

// Placement interprets the persisted storage fields. A record with neither
// storage reference set is a data-integrity fault and yields an error rather
// than a variant.
func (p *PoseImage) Placement() (Placement, error) {
	switch p.StorageType {
	case StorageLocal:
		if p.LocalStorageID == "" {
			return nil, fmt.Errorf("pose image %s: LOCAL without localStorageId", p.ID)
		}
		return LocalPlacement{LocalID: p.LocalStorageID}, nil
	case StorageCloud:
		if p.CloudflareID == "" {
			return nil, fmt.Errorf("pose image %s: CLOUD without cloudflareId", p.ID)
		}
		return CloudPlacement{CloudID: p.CloudflareID}, nil
	case StorageHybrid:
		if p.LocalStorageID == "" || p.CloudflareID == "" {
			return nil, fmt.Errorf("pose image %s: HYBRID missing a storage reference", p.ID)
		}
		return HybridPlacement{LocalID: p.LocalStorageID, CloudID: p.CloudflareID}, nil
	default:
		return nil, fmt.Errorf("pose image %s: unknown storageType %q", p.ID, p.StorageType)
	}
}

package handlers

import (
	"errors"
	"io"
	"net/http"

	poseimageRepo "yogatrack/database/repository/poseimage"
	"yogatrack/middleware"
	"yogatrack/services/media"
	"yogatrack/services/storage"
	"yogatrack/utils"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

// ImageHandler exposes pose image upload and listing endpoints.
type ImageHandler struct {
	Media  media.Service
	Images poseimageRepo.Repository
}

// NewImageHandler creates a new ImageHandler instance.
func NewImageHandler(mediaSvc media.Service, images poseimageRepo.Repository) *ImageHandler {
	return &ImageHandler{Media: mediaSvc, Images: images}
}

// UploadImageHandler accepts a multipart image upload. With ?offline=true
// the bytes stay in local storage (the client was offline and is syncing a
// queued upload); otherwise they go straight to cloud storage.
func (h *ImageHandler) UploadImageHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "file not provided", err.Error())
		return
	}
	if fileHeader.Size > maxImageBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "file too large", "")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to open upload", err.Error())
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to read upload", err.Error())
		return
	}

	meta := media.UploadMeta{
		FileName:  fileHeader.Filename,
		ImageType: fileHeader.Header.Get("Content-Type"),
	}
	if postureID := c.PostForm("postureId"); postureID != "" {
		meta.PostureID = &postureID
	}

	ownerID := middleware.AuthedUserID(c)
	offline := c.Query("offline") == "true"

	var img interface{}
	if offline {
		img, err = h.Media.CreateOffline(c.Request.Context(), ownerID, data, meta)
	} else {
		img, err = h.Media.CreateCloud(c.Request.Context(), ownerID, data, meta)
	}
	if err != nil {
		var exhausted *storage.StorageExhaustedError
		if errors.As(err, &exhausted) {
			utils.JSONError(c, http.StatusInsufficientStorage, "local storage exhausted", exhausted.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to store image", err.Error())
		return
	}
	c.JSON(http.StatusCreated, img)
}

// ListImagesHandler lists the authenticated user's pose images.
func (h *ImageHandler) ListImagesHandler(c *gin.Context) {
	images, err := h.Images.ListByUser(c.Request.Context(), middleware.AuthedUserID(c))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list images", err.Error())
		return
	}
	c.JSON(http.StatusOK, images)
}

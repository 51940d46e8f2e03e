package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsboard/backend/internal/service"
)

type UploadHandler struct {
	storageService *service.StorageService
}

func NewUploadHandler(storageService *service.StorageService) *UploadHandler {
	return &UploadHandler{storageService: storageService}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/uploads", h.Upload)
}

// Upload stores a photo or receipt and returns its URL. The optional "kind"
// form field namespaces the stored object (e.g. "vehicles", "receipts").
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.storageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	url, err := h.storageService.Upload(
		c.Request.Context(),
		c.PostForm("kind"),
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

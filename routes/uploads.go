package routes

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"design-request-server/config"
)

// validateAssetFile checks size (<= 25MB) and extension of an uploaded asset
func validateAssetFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > 25*1024*1024 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".svg", ".pdf", ".mp4", ".zip", ".psd":
		return true
	default:
		return false
	}
}

// RegisterUploadRoutes adds the asset upload endpoints. Uploads land in
// Cloudinary; the returned URL is then attached to a request via the
// lifecycle endpoints.
func RegisterUploadRoutes(rg *gin.RouterGroup) {
	rg.POST("/design-asset", func(c *gin.Context) {
		handleAssetUpload(c, "designs")
	})
	rg.POST("/reference-file", func(c *gin.Context) {
		handleAssetUpload(c, "references")
	})
}

func handleAssetUpload(c *gin.Context, subfolder string) {
	userID := c.GetUint("user_id")

	if err := c.Request.ParseMultipartForm(30 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid form data"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file provided"})
		return
	}
	if !validateAssetFile(header) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or oversized file"})
		return
	}

	cfg := config.AppConfig.Cloudinary
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		log.Printf("❌ Cloudinary not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Uploads not configured"})
		return
	}

	cloudinaryURL := fmt.Sprintf("cloudinary://%s:%s@%s", cfg.APIKey, cfg.APISecret, cfg.CloudName)
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		log.Printf("❌ Failed to initialize Cloudinary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Upload service unavailable"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Could not read file"})
		return
	}
	defer file.Close()

	folder := fmt.Sprintf("%s/%s/%d", cfg.Folder, subfolder, userID)
	overwrite := false
	result, err := cld.Upload.Upload(c.Request.Context(), file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     uuid.NewString(),
		Overwrite:    &overwrite,
		ResourceType: "auto",
	})
	if err != nil {
		log.Printf("❌ Upload to %s failed for user %d: %v", folder, userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Upload failed"})
		return
	}

	log.Printf("✅ Asset uploaded by user %d: %s", userID, result.SecureURL)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     result.SecureURL,
	})
}

// services/upload_service.go
package services

import (
	"fmt"
	"log"
	"path/filepath"

	"bounty-hunt-system/ledger"
	"bounty-hunt-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// UploadService stores submission artifacts in R2 and hands back the public
// URL a hunter then passes to submitWork as the submission link. Uploads
// never touch the ledger; the link only enters it through the instruction.
type UploadService struct{}

func NewUploadService() *UploadService {
	return &UploadService{}
}

// UploadSubmissionArtifact accepts a multipart "file" plus an optional
// bounty title used as the object key prefix.
func (s *UploadService) UploadSubmissionArtifact(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	prefix := "artifacts"
	if title := c.FormValue("title"); title != "" {
		prefix = slug.Make(title)
	}
	key := fmt.Sprintf("submissions/%s/%s%s", prefix, uuid.NewString(), filepath.Ext(fileHeader.Filename))

	url, err := utils.UploadFileToR2(fileHeader, key)
	if err != nil {
		log.Printf("❌ Failed to upload submission artifact: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload artifact"})
	}

	if len(url) > ledger.MaxLinkLen {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "resulting URL exceeds the submission link capacity",
			"url":   url,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url, "key": key})
}

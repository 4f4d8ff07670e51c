package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileValidator checks uploads by extension, sniffed content type and size.
type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

func NewImageValidator(maxSizeMB int) *FileValidator {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &FileValidator{
		allowedExt:  map[string]bool{".png": true, ".jpg": true, ".jpeg": true},
		allowedMime: map[string]bool{"image/png": true, "image/jpeg": true},
		maxSize:     int64(maxSizeMB) << 20,
	}
}

// ValidateFile returns the detected content type of an acceptable upload.
func (v *FileValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("invalid image type")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file header")
	}

	detectedMime := strings.ToLower(http.DetectContentType(buffer[:n]))
	if !v.allowedMime[detectedMime] {
		return "", fmt.Errorf("invalid image type")
	}

	return detectedMime, nil
}

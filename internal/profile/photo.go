package profile

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const onlyImagesMessage = "Only image files are allowed"

// PhotoUpload is a profile photo as received from the multipart form.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// extensions accepted for each canonical image type.
var allowedPhotoTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
}

type validatedPhoto struct {
	data        []byte
	contentType string
	ext         string
}

// validatePhoto reads at most maxBytes and accepts the photo only when the file
// extension, the declared type and the sniffed content all agree on one image type.
func validatePhoto(upload PhotoUpload, maxBytes int64) (*validatedPhoto, error) {
	if upload.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo is empty")
	}
	data, err := io.ReadAll(io.LimitReader(upload.Body, maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read photo")
	}
	if int64(len(data)) > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodePayloadTooLarge, fmt.Sprintf("photo must be at most %d MB", maxBytes/(1024*1024)))
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "photo is empty")
	}

	declared, err := canonicalImageType(upload.ContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnsupportedMedia, err, onlyImagesMessage)
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !extensionAllowed(declared, ext) {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedMedia, onlyImagesMessage)
	}
	sniffed := mimetype.Detect(data)
	if !sniffed.Is(declared) {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedMedia, onlyImagesMessage)
	}

	return &validatedPhoto{data: data, contentType: declared, ext: ext}, nil
}

func (p *validatedPhoto) reader() io.Reader {
	return bytes.NewReader(p.data)
}

func canonicalImageType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("mime type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("mime type invalid: %w", err)
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}
	if _, ok := allowedPhotoTypes[mediaType]; !ok {
		return "", fmt.Errorf("mime type %s not allowed", mediaType)
	}
	return mediaType, nil
}

func extensionAllowed(mediaType, ext string) bool {
	for _, allowed := range allowedPhotoTypes[mediaType] {
		if allowed == ext {
			return true
		}
	}
	return false
}

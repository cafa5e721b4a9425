package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/observability"
	"github.com/YURESSA/foodgram-st/internal/storage"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxBytes     = 5 << 20
	DefaultImageMaxDimension = 1280
	DefaultImageMaxPixels    = 25_000_000
	WebPQuality              = 80
)

// ImageKind selects the storage folder of an image.
type ImageKind string

const (
	ImageKindRecipe ImageKind = "recipes"
	ImageKindAvatar ImageKind = "avatars"
)

// ImageService turns base64 data URIs into stored WebP images.
type ImageService struct {
	store        storage.Store
	maxBytes     int
	maxDimension int
	// maxPixels bounds width*height before a full decode; compressed
	// size says nothing about the decoded allocation.
	maxPixels int
}

func NewImageService(store storage.Store, cfg *config.Config) *ImageService {
	maxBytes := DefaultImageMaxBytes
	maxDimension := DefaultImageMaxDimension
	maxPixels := DefaultImageMaxPixels
	if cfg != nil {
		if cfg.ImageMaxBytes > 0 {
			maxBytes = cfg.ImageMaxBytes
		}
		if cfg.ImageMaxDimension > 0 {
			maxDimension = cfg.ImageMaxDimension
		}
		if cfg.ImageMaxPixels > 0 {
			maxPixels = cfg.ImageMaxPixels
		}
	}
	return &ImageService{store: store, maxBytes: maxBytes, maxDimension: maxDimension, maxPixels: maxPixels}
}

// SaveDataURI decodes dataURI, normalizes it to WebP and stores it. name seeds
// the object key so stored files stay recognizable.
func (s *ImageService) SaveDataURI(ctx context.Context, kind ImageKind, name, dataURI string) (url string, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "ImageService", "SaveDataURI")
	defer span.Finish(&err)

	content, err := s.decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	header, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return "", models.NewValidationError("Unsupported image format")
	}
	if err := s.checkPixels(header); err != nil {
		return "", err
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	encoded, err := encodeWebP(resizeToFit(decoded, s.maxDimension, s.maxDimension), WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	url, err = s.store.Put(ctx, objectKey(kind, name), encoded, "image/webp")
	if err != nil {
		return "", models.NewInternalError(err)
	}
	observability.ImagesStored.WithLabelValues(string(kind), s.store.Backend()).Inc()
	return url, nil
}

// Delete removes a stored image. Failures are logged, never returned, so a
// storage hiccup cannot block deleting the owning record.
func (s *ImageService) Delete(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete stored image",
			slog.String("url", url), slog.String("error", err.Error()))
	}
}

func (s *ImageService) decodeDataURI(dataURI string) ([]byte, error) {
	header, payload, found := strings.Cut(strings.TrimSpace(dataURI), ",")
	if !found || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, models.NewValidationError("Image must be a base64 encoded data URI")
	}
	mediaType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !isAllowedImageMIME(mediaType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > s.maxBytes+3 {
		return nil, models.NewValidationError(fmt.Sprintf("Image too large (max %d bytes)", s.maxBytes))
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, models.NewValidationError("Image is not valid base64")
	}
	if len(content) == 0 {
		return nil, models.NewValidationError("Image is empty")
	}
	if len(content) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("Image too large (max %d bytes)", s.maxBytes))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return nil, models.NewValidationError("Image content does not match its type")
	}
	return content, nil
}

func (s *ImageService) checkPixels(header image.Config) error {
	if header.Width <= 0 || header.Height <= 0 {
		return models.NewValidationError("Invalid image dimensions")
	}
	if int64(header.Width)*int64(header.Height) > int64(s.maxPixels) {
		return models.NewValidationError(fmt.Sprintf("Image dimensions %dx%d exceed %d pixels", header.Width, header.Height, s.maxPixels))
	}
	return nil
}

func objectKey(kind ImageKind, name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "image"
	}
	if len(base) > 48 {
		base = strings.Trim(base[:48], "-")
	}
	return fmt.Sprintf("%s/%s-%s.webp", kind, base, uuid.NewString()[:8])
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

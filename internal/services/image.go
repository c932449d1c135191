package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxUploadBytes = 10 << 20 // 10 MB

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ImagePayload is a normalized inbound image plus the optional display
// name that accompanies enrollment requests.
type ImagePayload struct {
	Bytes []byte
	Name  string
}

// ImageIngestor turns an inbound request into raw image bytes. It accepts
// either a multipart upload (field "image", png/jpg/jpeg) or a JSON body
// whose "image" field holds a base64 payload, optionally with a data-URL
// prefix. Multipart uploads are also copied into the temp dir; the cleanup
// endpoint prunes that directory independently.
type ImageIngestor struct {
	tempDir string
}

func NewImageIngestor(tempDir string) *ImageIngestor {
	return &ImageIngestor{tempDir: tempDir}
}

// ExtractPayload normalizes the request into image bytes and a name.
func (ing *ImageIngestor) ExtractPayload(r *http.Request) (*ImagePayload, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return ing.fromMultipart(r)
	}
	return ing.fromJSON(r)
}

func (ing *ImageIngestor) fromMultipart(r *http.Request) (*ImagePayload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: malformed multipart form", ErrInvalidImage)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: missing image file", ErrInvalidImage)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidImage, ext)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload", ErrInvalidImage)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}

	// Best effort: the temp copy is diagnostic plumbing, never a
	// precondition for the request.
	ing.saveTempCopy(header.Filename, data)

	return &ImagePayload{Bytes: data, Name: r.FormValue("name")}, nil
}

func (ing *ImageIngestor) fromJSON(r *http.Request) (*ImagePayload, error) {
	var req struct {
		Image string `json:"image"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: malformed request body", ErrInvalidImage)
	}
	if req.Image == "" {
		return nil, fmt.Errorf("%w: missing image data", ErrInvalidImage)
	}

	encoded := req.Image
	// Browsers submit data URLs; everything before the first comma is the
	// media-type prefix.
	if idx := strings.Index(encoded, ","); idx >= 0 {
		encoded = encoded[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed base64 image", ErrInvalidImage)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidImage)
	}

	return &ImagePayload{Bytes: data, Name: req.Name}, nil
}

func (ing *ImageIngestor) saveTempCopy(filename string, data []byte) {
	if ing.tempDir == "" {
		return
	}
	if err := os.MkdirAll(ing.tempDir, 0o755); err != nil {
		log.Printf("[INGEST] Failed to create temp dir: %v", err)
		return
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(filename))
	if err := os.WriteFile(filepath.Join(ing.tempDir, name), data, 0o644); err != nil {
		log.Printf("[INGEST] Failed to save temp copy: %v", err)
	}
}

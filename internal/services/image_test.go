package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageIngestor_JSONPayload(t *testing.T) {
	ingestor := NewImageIngestor(t.TempDir())
	raw := []byte("fake-image-bytes")
	encoded := base64.StdEncoding.EncodeToString(raw)

	t.Run("plain base64", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"image": encoded, "name": "Alice"})
		r := httptest.NewRequest("POST", "/api/login", bytes.NewBuffer(body))
		r.Header.Set("Content-Type", "application/json")

		payload, err := ingestor.ExtractPayload(r)
		assert.NoError(t, err)
		assert.Equal(t, raw, payload.Bytes)
		assert.Equal(t, "Alice", payload.Name)
	})

	t.Run("data URL prefix", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"image": "data:image/jpeg;base64," + encoded})
		r := httptest.NewRequest("POST", "/api/login", bytes.NewBuffer(body))
		r.Header.Set("Content-Type", "application/json")

		payload, err := ingestor.ExtractPayload(r)
		assert.NoError(t, err)
		assert.Equal(t, raw, payload.Bytes)
	})

	t.Run("missing image field", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"name": "Alice"})
		r := httptest.NewRequest("POST", "/api/login", bytes.NewBuffer(body))
		r.Header.Set("Content-Type", "application/json")

		_, err := ingestor.ExtractPayload(r)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("malformed base64", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"image": "data:image/png;base64,!!!not-base64!!!"})
		r := httptest.NewRequest("POST", "/api/login", bytes.NewBuffer(body))
		r.Header.Set("Content-Type", "application/json")

		_, err := ingestor.ExtractPayload(r)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("non-JSON body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/api/login", bytes.NewBufferString("not json"))
		r.Header.Set("Content-Type", "application/json")

		_, err := ingestor.ExtractPayload(r)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

func TestImageIngestor_MultipartPayload(t *testing.T) {
	raw := []byte("fake-image-bytes")

	newRequest := func(t *testing.T, filename, name string) (*ImageIngestor, *bytes.Buffer, string) {
		t.Helper()
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		part, err := writer.CreateFormFile("image", filename)
		assert.NoError(t, err)
		_, err = part.Write(raw)
		assert.NoError(t, err)
		if name != "" {
			assert.NoError(t, writer.WriteField("name", name))
		}
		assert.NoError(t, writer.Close())
		return NewImageIngestor(t.TempDir()), buf, writer.FormDataContentType()
	}

	t.Run("png upload with name", func(t *testing.T) {
		ingestor, buf, contentType := newRequest(t, "alice.png", "Alice")
		r := httptest.NewRequest("POST", "/api/add-user", buf)
		r.Header.Set("Content-Type", contentType)

		payload, err := ingestor.ExtractPayload(r)
		assert.NoError(t, err)
		assert.Equal(t, raw, payload.Bytes)
		assert.Equal(t, "Alice", payload.Name)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		ingestor, buf, contentType := newRequest(t, "alice.gif", "")
		r := httptest.NewRequest("POST", "/api/login", buf)
		r.Header.Set("Content-Type", contentType)

		_, err := ingestor.ExtractPayload(r)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("missing file field", func(t *testing.T) {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		assert.NoError(t, writer.WriteField("name", "Alice"))
		assert.NoError(t, writer.Close())

		ingestor := NewImageIngestor(t.TempDir())
		r := httptest.NewRequest("POST", "/api/login", buf)
		r.Header.Set("Content-Type", writer.FormDataContentType())

		_, err := ingestor.ExtractPayload(r)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

package server

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlight/draftgen/internal/common"
)

func TestDecodeBase64Strict(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		data, err := decodeBase64Strict(base64.StdEncoding.EncodeToString([]byte("hello")), "f.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)
	})

	t.Run("truncated payload rejected", func(t *testing.T) {
		_, err := decodeBase64Strict("abcde", "f.txt")
		require.Error(t, err)

		var validation *common.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, err.Error(), "f.txt")
		assert.Contains(t, err.Error(), "multiple of 4")
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		_, err := decodeBase64Strict("   ", "f.txt")
		assert.Error(t, err)
	})

	t.Run("invalid characters rejected", func(t *testing.T) {
		_, err := decodeBase64Strict("????????", "f.txt")
		assert.Error(t, err)
	})
}

func TestDecodeUploadsJSON(t *testing.T) {
	body := `{"files":[{"name":"tb.csv","mimeType":"text/csv","base64":"` +
		base64.StdEncoding.EncodeToString([]byte("Account,Amount\nCash,100\n")) + `"}]}`

	r := httptest.NewRequest("POST", "/api/extract", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	form, err := decodeUploads(r)
	require.NoError(t, err)

	require.Len(t, form.Files, 1)
	assert.Equal(t, "tb.csv", form.Files[0].Name)
	assert.Equal(t, "text/csv", form.Files[0].MimeType)
	assert.Equal(t, "Account,Amount\nCash,100\n", string(form.Files[0].Bytes))
}

func TestDecodeUploadsJSONNoFiles(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/extract", strings.NewReader(`{"files":[]}`))
	r.Header.Set("Content-Type", "application/json")

	_, err := decodeUploads(r)
	require.Error(t, err)

	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func buildMultipartBody(t *testing.T) (body []byte, contentType string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	require.NoError(t, w.WriteField("companyName", "Acme Ltd"))

	fw, err := w.CreateFormFile("files", "tb.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Account,Amount\nCash,100\n"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestDecodeUploadsMultipart(t *testing.T) {
	body, contentType := buildMultipartBody(t)

	r := httptest.NewRequest("POST", "/api/draft/upload", bytes.NewReader(body))
	r.Header.Set("Content-Type", contentType)

	form, err := decodeUploads(r)
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", form.Values["companyName"])
	require.Len(t, form.Files, 1)
	assert.Equal(t, "tb.csv", form.Files[0].Name)
}

func TestDecodeUploadsMultipartBase64Outer(t *testing.T) {
	body, contentType := buildMultipartBody(t)

	// Some transports base64-encode the whole multipart body.
	encoded := base64.StdEncoding.EncodeToString(body)
	r := httptest.NewRequest("POST", "/api/draft/upload", strings.NewReader(encoded))
	r.Header.Set("Content-Type", contentType)

	form, err := decodeUploads(r)
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", form.Values["companyName"])
	require.Len(t, form.Files, 1)
}

func TestDecodeUploadsRawBase64(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/extract",
		strings.NewReader(base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))))
	r.Header.Set("Content-Type", "application/pdf")
	r.Header.Set("X-Filename", "accounts.pdf")

	form, err := decodeUploads(r)
	require.NoError(t, err)

	require.Len(t, form.Files, 1)
	assert.Equal(t, "accounts.pdf", form.Files[0].Name)
	assert.Equal(t, "application/pdf", form.Files[0].MimeType)
	assert.Equal(t, "%PDF-1.4", string(form.Files[0].Bytes))
}

func TestDecodeUploadsDataURL(t *testing.T) {
	payload := "data:text/csv;base64," + base64.StdEncoding.EncodeToString([]byte("Account,Amount\nCash,1\n"))

	r := httptest.NewRequest("POST", "/api/extract", strings.NewReader(payload))
	r.Header.Set("Content-Type", "application/octet-stream")

	form, err := decodeUploads(r)
	require.NoError(t, err)

	require.Len(t, form.Files, 1)
	assert.Equal(t, "text/csv", form.Files[0].MimeType)
	assert.Equal(t, "Account,Amount\nCash,1\n", string(form.Files[0].Bytes))
}

func TestDecodeUploadsEmptyBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/extract", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json")

	_, err := decodeUploads(r)
	assert.Error(t, err)
}

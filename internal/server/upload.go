package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/finlight/draftgen/internal/common"
	"github.com/finlight/draftgen/internal/models"
)

// uploadForm is the decoded result of an upload request: files plus any
// accompanying form fields (multipart only).
type uploadForm struct {
	Files  []models.UploadedFile
	Values map[string]string
}

// wireFile is the JSON wire shape for an uploaded file.
type wireFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

// decodeUploads branches on the declared content type: JSON with base64
// file entries, multipart/form-data (raw or base64-encoded outer body),
// or a raw base64 / data-URL body.
func decodeUploads(r *http.Request) (*uploadForm, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		return nil, common.Validationf("failed to read request body: %s", err)
	}
	if len(body) == 0 {
		return nil, common.Validationf("request body is required")
	}

	switch {
	case mediaType == "application/json":
		return decodeJSONUploads(body)

	case mediaType == "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return nil, common.Validationf("multipart body is missing a boundary")
		}
		return decodeMultipartUploads(body, boundary)

	default:
		return decodeRawBase64Upload(r, body)
	}
}

// decodeJSONUploads decodes a {"files": [{name, mimeType, base64}]} body.
func decodeJSONUploads(body []byte) (*uploadForm, error) {
	var payload struct {
		Files []wireFile `json:"files"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, common.Validationf("invalid JSON body: %s", err)
	}
	if len(payload.Files) == 0 {
		return nil, common.Validationf("no files provided")
	}

	files, err := decodeWireFiles(payload.Files)
	if err != nil {
		return nil, err
	}
	return &uploadForm{Files: files, Values: map[string]string{}}, nil
}

// decodeWireFiles decodes base64 file entries with the integrity check.
func decodeWireFiles(wires []wireFile) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(wires))
	for _, wf := range wires {
		name := wf.Name
		if name == "" {
			name = "upload"
		}
		data, err := decodeBase64Strict(wf.Base64, name)
		if err != nil {
			return nil, err
		}
		files = append(files, models.UploadedFile{
			Name:     name,
			MimeType: wf.MimeType,
			Bytes:    data,
		})
	}
	return files, nil
}

// decodeMultipartUploads parses a multipart body, tolerating both raw and
// base64-encoded transport encodings of the outer body.
func decodeMultipartUploads(body []byte, boundary string) (*uploadForm, error) {
	form, err := readMultipart(body, boundary)
	if err == nil {
		return form, nil
	}

	// The outer body may itself be base64-encoded in transit.
	decoded, decErr := decodeBase64Strict(strings.TrimSpace(string(body)), "multipart body")
	if decErr != nil {
		return nil, common.Validationf("failed to parse multipart body: %s", err)
	}
	form, err = readMultipart(decoded, boundary)
	if err != nil {
		return nil, common.Validationf("failed to parse multipart body: %s", err)
	}
	return form, nil
}

func readMultipart(body []byte, boundary string) (*uploadForm, error) {
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	form := &uploadForm{Values: map[string]string{}}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, err
		}

		if part.FileName() != "" {
			form.Files = append(form.Files, models.UploadedFile{
				Name:     part.FileName(),
				MimeType: part.Header.Get("Content-Type"),
				Bytes:    data,
			})
		} else if part.FormName() != "" {
			form.Values[part.FormName()] = string(data)
		}
	}

	if len(form.Files) == 0 && len(form.Values) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return form, nil
}

// decodeRawBase64Upload handles a raw base64 or data-URL body.
func decodeRawBase64Upload(r *http.Request, body []byte) (*uploadForm, error) {
	text := strings.TrimSpace(string(body))
	mimeType := r.Header.Get("Content-Type")

	if strings.HasPrefix(text, "data:") {
		comma := strings.Index(text, ",")
		if comma < 0 {
			return nil, common.Validationf("malformed data URL body")
		}
		header := text[len("data:"):comma]
		if idx := strings.Index(header, ";"); idx >= 0 {
			mimeType = header[:idx]
		} else if header != "" {
			mimeType = header
		}
		text = text[comma+1:]
	}

	name := r.Header.Get("X-Filename")
	if name == "" {
		name = "upload"
	}

	data, err := decodeBase64Strict(text, name)
	if err != nil {
		return nil, err
	}

	return &uploadForm{
		Files:  []models.UploadedFile{{Name: name, MimeType: mimeType, Bytes: data}},
		Values: map[string]string{},
	}, nil
}

// decodeBase64Strict rejects payloads whose length is not a multiple of 4
// as truncated/corrupt rather than attempting a lenient decode.
func decodeBase64Strict(encoded, name string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, common.Validationf("file %s carries no data", name)
	}
	if len(encoded)%4 != 0 {
		return nil, common.Validationf(
			"base64 payload for %s is truncated or corrupt (length %d is not a multiple of 4)",
			name, len(encoded))
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, common.Validationf("invalid base64 payload for %s: %s", name, err)
	}
	return data, nil
}

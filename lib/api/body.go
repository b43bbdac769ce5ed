// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
)

// Body is a request payload that can be opened more than once, so a
// retried or replayed request sends the same bytes again.
type Body interface {
	// ContentType is the value of the Content-Type header.
	ContentType() string

	// Open returns a fresh reader over the payload and its exact
	// length in bytes.
	Open() (io.ReadCloser, int64, error)
}

// FormBody encodes values as application/x-www-form-urlencoded.
func FormBody(values url.Values) Body {
	return bytesBody{contentType: "application/x-www-form-urlencoded", data: []byte(values.Encode())}
}

type bytesBody struct {
	contentType string
	data        []byte
}

func (b bytesBody) ContentType() string { return b.contentType }

func (b bytesBody) Open() (io.ReadCloser, int64, error) {
	return io.NopCloser(bytes.NewReader(b.data)), int64(len(b.data)), nil
}

// FileUpload is a multipart/form-data body holding a single file part.
// The file is streamed from disk on every Open; only the part header
// and the closing boundary are held in memory.
type FileUpload struct {
	path        string
	contentType string
	header      []byte
	trailer     []byte
}

// NewFileUpload prepares a multipart body that sends the file at path
// under the given form field, labelled with partType (for example
// "application/x-xz").
func NewFileUpload(field, path, partType string) (*FileUpload, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     field,
		"filename": filepath.Base(path),
	}))
	if partType == "" {
		partType = "application/octet-stream"
	}
	partHeader.Set("Content-Type", partType)
	if _, err := writer.CreatePart(partHeader); err != nil {
		return nil, fmt.Errorf("writing multipart header: %w", err)
	}
	headerLength := buffer.Len()
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("writing multipart trailer: %w", err)
	}
	encoded := buffer.Bytes()

	return &FileUpload{
		path:        path,
		contentType: writer.FormDataContentType(),
		header:      bytes.Clone(encoded[:headerLength]),
		trailer:     bytes.Clone(encoded[headerLength:]),
	}, nil
}

// ContentType returns the multipart content type including the
// boundary.
func (u *FileUpload) ContentType() string { return u.contentType }

// Open returns the complete multipart stream. The reported length
// covers the part header, the file, and the closing boundary.
func (u *FileUpload) Open() (io.ReadCloser, int64, error) {
	file, err := os.Open(u.path)
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	length := int64(len(u.header)) + info.Size() + int64(len(u.trailer))
	reader := io.MultiReader(bytes.NewReader(u.header), file, bytes.NewReader(u.trailer))
	return &readCloser{Reader: reader, Closer: file}, length, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

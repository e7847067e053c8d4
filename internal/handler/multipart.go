package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"go-project-hub/internal/model"
	"go-project-hub/pkg/apierror"
)

const maxFieldSize = 64 << 10

type multipartForm struct {
	fields map[string]string
	files  []model.Upload
}

func (f multipartForm) value(name string) string {
	return f.fields[name]
}

// optional returns a pointer to the field value, or nil when the field was not sent.
func (f multipartForm) optional(name string) *string {
	v, ok := f.fields[name]
	if !ok {
		return nil
	}
	return &v
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readMultipart streams the form, buffering up to maxFiles parts named fileField
// of at most maxFileSize bytes each. Other file parts are skipped.
func readMultipart(w http.ResponseWriter, r *http.Request, fileField string, maxFileSize int64, maxFiles int) (multipartForm, error) {
	form := multipartForm{fields: map[string]string{}}

	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize*int64(maxFiles)+maxJSONBody)
	reader, err := r.MultipartReader()
	if err != nil {
		return form, apierror.BadRequest("invalid multipart body", "")
	}

	for {
		part, nextErr := reader.NextPart()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			if isPayloadTooLarge(nextErr) {
				return form, apierror.PayloadTooLarge(fileField)
			}
			return form, apierror.BadRequest("invalid multipart stream", nextErr.Error())
		}

		if part.FileName() == "" {
			value, readErr := io.ReadAll(io.LimitReader(part, maxFieldSize))
			_ = part.Close()
			if readErr != nil {
				return form, apierror.BadRequest("invalid multipart field", part.FormName())
			}
			form.fields[part.FormName()] = strings.TrimSpace(string(value))
			continue
		}

		if part.FormName() != fileField {
			_ = part.Close()
			continue
		}
		if len(form.files) >= maxFiles {
			_ = part.Close()
			return form, apierror.BadRequest(fmt.Sprintf("at most %d %s files are allowed", maxFiles, fileField), fileField)
		}

		var buf bytes.Buffer
		n, copyErr := io.Copy(&buf, io.LimitReader(part, maxFileSize+1))
		_ = part.Close()
		if copyErr != nil {
			if isPayloadTooLarge(copyErr) {
				return form, apierror.PayloadTooLarge(fileField)
			}
			return form, apierror.BadRequest("invalid multipart file", copyErr.Error())
		}
		if n > maxFileSize {
			return form, apierror.PayloadTooLarge(fmt.Sprintf("%s exceeds %d bytes", part.FileName(), maxFileSize))
		}

		form.files = append(form.files, model.Upload{
			Filename: part.FileName(),
			Size:     n,
			Content:  bytes.NewReader(buf.Bytes()),
		})
	}

	return form, nil
}

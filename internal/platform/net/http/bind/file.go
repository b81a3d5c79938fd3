package bind

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	perr "tiba/internal/platform/errors"
)

// File is one uploaded file part
type File struct {
	// Name is the "name" form value, or the file name without its extension
	Name     string
	Filename string
	Data     []byte
}

// IsMultipart reports whether r carries a multipart body
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}

// FormFile reads the field part of a multipart body of at most limit bytes
// an empty part is rejected
func FormFile(r *http.Request, field string, limit int64) (File, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, limit)
	f, fh, err := r.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return File{}, perr.WithField(perr.InvalidArgf("%s exceeds %d bytes", field, tooBig.Limit), field)
		}
		return File{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "missing %s file", field), field)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return File{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read %s", field)
	}
	if len(data) == 0 {
		return File{}, perr.WithField(perr.InvalidArgf("%s is empty", field), field)
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	}
	return File{Name: name, Filename: fh.Filename, Data: data}, nil
}

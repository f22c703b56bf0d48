package httpx

import (
	"errors"
	"io"
	"net/http"
	"strconv"
)

var errEmptyBody = errors.New("request body must not be empty")

// DecodeJSON reads a single JSON value from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// PathID parses the {name} path value as a positive int64.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

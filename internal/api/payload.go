package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// maxPayloadSize bounds request bodies. Login and explain requests are tiny.
const maxPayloadSize = 64 << 10

// DecodePayload strictly decodes a JSON request body into dest.
// Unknown fields and trailing data are rejected. With allowEmpty an empty body leaves dest untouched.
func DecodePayload(r *http.Request, dest any, allowEmpty bool) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("unsupported content type '%s'", ct)
		}
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxPayloadSize))
	dec.DisallowUnknownFields()
	err := dec.Decode(dest)
	switch {
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case err != nil:
		return err
	case dec.More():
		return errors.New("extra data in request body")
	}
	return nil
}

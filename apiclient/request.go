package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/web-analyzer-client/internal/utils"
)

const (
	contentTypeJSON = "application/json"
	headerRequestID = "X-Request-ID"
)

// RequestConfig carries the per-call options of a request.
type RequestConfig struct {
	Headers     map[string]string // applied before the auth and content-type headers
	Params      map[string]any    // nil values are omitted
	UseFormData bool              // multipart/form-data body instead of JSON
}

func (rc *RequestConfig) headers() map[string]string {
	if rc == nil {
		return nil
	}
	return rc.Headers
}

func (rc *RequestConfig) params() map[string]any {
	if rc == nil {
		return nil
	}
	return rc.Params
}

func (rc *RequestConfig) useFormData() bool {
	return rc != nil && rc.UseFormData
}

// BuildURL joins base and path and appends every non-nil parameter.
func BuildURL(base, path string, params map[string]any) (string, error) {
	target := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("[apiclient BuildURL] %w", err)
	}
	if len(params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	for k, v := range params {
		if utils.IsNil(v) {
			continue
		}
		q.Add(k, utils.Stringify(utils.Deref(v)))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// encodeBody returns the request body and, for form bodies, the content type
// carrying the multipart boundary.
func encodeBody(method string, payload any, form bool) (io.Reader, string, error) {
	if !methodHasBody(method) || utils.IsNil(payload) {
		return nil, "", nil
	}
	if form {
		return encodeForm(payload)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("[apiclient encodeBody] %w", err)
	}
	return bytes.NewReader(data), contentTypeJSON, nil
}

func encodeForm(payload any) (io.Reader, string, error) {
	fields, err := formFields(payload)
	if err != nil {
		return nil, "", err
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if utils.IsNil(v) {
			continue
		}
		if err := w.WriteField(k, utils.Stringify(utils.Deref(v))); err != nil {
			return nil, "", fmt.Errorf("[apiclient encodeForm] %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("[apiclient encodeForm] %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// formFields flattens the top level of payload into key/value pairs. Structs
// go through their JSON field names.
func formFields(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case map[string]any:
		return p, nil
	case map[string]string:
		fields := make(map[string]any, len(p))
		for k, v := range p {
			fields[k] = v
		}
		return fields, nil
	case url.Values:
		fields := make(map[string]any, len(p))
		for k := range p {
			fields[k] = p.Get(k)
		}
		return fields, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("[apiclient formFields] %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("[apiclient formFields] payload is not an object: %w", err)
	}
	return fields, nil
}

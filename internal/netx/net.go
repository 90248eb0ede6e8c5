// Package netx holds HTTP helpers shared by the object-store client.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of a failed response body ends up in errors.
const maxErrorBody = 512

// PresignedRequest is a presigned URL together with the headers that were
// signed into it.
type PresignedRequest struct {
	Method string
	URL    string
	Header http.Header
}

// UploadToPresignedURL sends body to a presigned URL. The signed headers are
// replayed except Host, and Content-Type is set to contentType. Any non-2xx
// status is an error carrying the status and the start of the body.
func UploadToPresignedURL(ctx context.Context, hc *http.Client, p PresignedRequest, contentType string, body []byte) error {
	method := p.Method
	if method == "" {
		method = http.MethodPut
	}
	req, err := http.NewRequestWithContext(ctx, method, p.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, vs := range p.Header {
		if strings.EqualFold(k, "host") {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(b) == 0 {
			return fmt.Errorf("upload failed: %s", resp.Status)
		}
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return nil
}

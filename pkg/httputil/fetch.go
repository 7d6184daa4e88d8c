package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("remote file not found")

	// ErrStatus is returned for other unsuccessful responses.
	ErrStatus = errors.New("unexpected response status")

	// ErrTooLarge is returned when the body exceeds the limit.
	ErrTooLarge = errors.New("remote file too large")
)

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FileName returns the last path element of a URL, without query or
// fragment. It returns "" when s is not a URL or names no file.
func FileName(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// Fetch downloads rawURL and returns its body. A nil client uses
// http.DefaultClient. Bodies longer than limit bytes fail with
// [ErrTooLarge]; a limit of zero or less disables the check.
func Fetch(ctx context.Context, client *http.Client, rawURL string, limit int64) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &RetryableError{Err: fmt.Errorf("%w: %s", ErrStatus, resp.Status)}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("%w: %s", ErrStatus, resp.Status)
		}

		r := io.Reader(resp.Body)
		if limit > 0 {
			r = io.LimitReader(resp.Body, limit+1)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return &RetryableError{Err: fmt.Errorf("read body: %w", err)}
		}
		if limit > 0 && int64(len(data)) > limit {
			return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", redact(rawURL), err)
	}
	return body, nil
}

// redact drops credentials from a URL for error messages.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return rawURL
	}
	return u.Redacted()
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// StoredObject is the result of an upload: the public URL handed to
// clients and the key needed to delete the backing object later.
type StoredObject struct {
	URL string
	Key string
}

// ObjectStore is the document-storage capability consumed by the rooms
// module. The backing service is external - only this contract matters.
type ObjectStore interface {
	Put(ctx context.Context, data []byte, contentType, name string) (StoredObject, error)
	Delete(ctx context.Context, key string) error
}

type Client struct {
	endpoint string
	bucket   string
	token    string
	http     *http.Client
}

var _ ObjectStore = (*Client)(nil)

func NewClient(endpoint, bucket, token string) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		bucket:   bucket,
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Put(ctx context.Context, data []byte, contentType, name string) (StoredObject, error) {
	key := path.Join(c.bucket, uuid.NewString()+"-"+sanitizeName(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(key), bytes.NewReader(data))
	if err != nil {
		return StoredObject{}, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return StoredObject{}, errors.Wrap(err, "storage: upload failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return StoredObject{}, fmt.Errorf("storage: upload returned status %d: %s", resp.StatusCode, body)
	}

	return StoredObject{URL: c.objectURL(key), Key: key}, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(key), nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "storage: delete failed")
	}
	defer resp.Body.Close()

	// A missing object is already deleted.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage: delete returned status %d: %s", resp.StatusCode, body)
	}

	return nil
}

func (c *Client) objectURL(key string) string {
	escaped := make([]string, 0)
	for _, part := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}

	return c.endpoint + "/" + strings.Join(escaped, "/")
}

func sanitizeName(name string) string {
	name = path.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

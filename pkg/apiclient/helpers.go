package apiclient

import (
	"fmt"
	"net/url"
)

// getResource decodes the body of GET path into a new T.
func getResource[T any](c *Client, path string) (*T, error) {
	v := new(T)
	if err := c.get(path, v); err != nil {
		return nil, err
	}
	return v, nil
}

// listResources decodes the body of GET path into a slice. An empty JSON
// array yields an empty, non-nil slice.
func listResources[T any](c *Client, path string) ([]T, error) {
	items := []T{}
	if err := c.get(path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// resourcePath fills a path template with path-escaped segments, so an
// identity key such as "E 1/2" stays one segment.
func resourcePath(format string, segments ...string) string {
	args := make([]any, 0, len(segments))
	for _, s := range segments {
		args = append(args, url.PathEscape(s))
	}
	return fmt.Sprintf(format, args...)
}

// withQuery appends the non-empty params to path.
func withQuery(path string, params map[string]string) string {
	q := make(url.Values, len(params))
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

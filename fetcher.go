package embdr

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/golang/snappy"
)

// FetchError is returned by Fetch when the service responds with a status
// other than 200 or cannot be reached at all.
type FetchError struct {
	Code    int    // http status code, 500 if the service could not be reached
	Message string // response body or human-readable explanation
	err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("embdr: %d %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error { return e.err }

const msgUnreachable = "the server could not be reached"

// cached resources expire after this many seconds
const cacheTTL = 3600

// time limit on requests shared between callers, see WithSharedFetches
const sharedFetchTimeout = 30 * time.Second

// Fetch retrieves metadata of resource from the service. It makes exactly one
// request and never retries; resources answered from cache need no request.
//
// Errors returned are either *FetchError or ctx.Err().
func (c *Client) Fetch(ctx context.Context, resourceID, embedKey string) (*Resource, error) {
	if !c.shareFetches {
		return c.fetch(ctx, resourceID, embedKey)
	}
	sctx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(mcKey(resourceID, embedKey), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(sctx, sharedFetchTimeout)
		defer cancel()
		return c.fetch(ctx, resourceID, embedKey)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Resource), nil
	}
}

func (c *Client) fetch(ctx context.Context, resourceID, embedKey string) (*Resource, error) {
	key := mcKey(resourceID, embedKey)
	if mc := c.Cache; mc != nil {
		if it, err := mc.Get(key); err == nil {
			if b, err := snappy.Decode(nil, it.Value); err == nil {
				var cached Resource
				if err = json.Unmarshal(b, &cached); err == nil {
					c.Log.Printf("Cache hit for resource %q", resourceID)
					return &cached, nil
				}
			}
		}
	}
	resp, err := c.httpGet(ctx, c.resourceURL(resourceID, embedKey))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.Log.Printf("metadata request for resource %q: %v", resourceID, err)
		return nil, &FetchError{Code: http.StatusInternalServerError, Message: msgUnreachable, err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.MaxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &FetchError{Code: http.StatusInternalServerError, Message: msgUnreachable, err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Code: resp.StatusCode, Message: string(body)}
	}
	var res Resource
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &FetchError{
			Code:    http.StatusInternalServerError,
			Message: "malformed resource metadata: " + err.Error(),
			err:     err,
		}
	}
	if mc := c.Cache; mc != nil && settled(&res) {
		c.Log.Printf("Cache update for resource %q", resourceID)
		mc.Set(&memcache.Item{Key: key, Value: snappy.Encode(nil, body), Expiration: cacheTTL})
	}
	return &res, nil
}

// settled reports whether resource would not change on subsequent fetches
func settled(r *Resource) bool {
	return !r.Pending() && (r.HTMLPages == nil || r.HTMLPages.Status == htmlPagesDone)
}

func (c *Client) resourceURL(resourceID, embedKey string) string {
	return c.scheme + "://" + c.host + "/api/resources/" + url.PathEscape(resourceID) +
		"/embed?embedKey=" + url.QueryEscape(embedKey)
}

func (c *Client) httpGet(ctx context.Context, URL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for i := 0; i < len(c.Headers); i += 2 {
		req.Header.Set(c.Headers[i], c.Headers[i+1])
	}
	return c.HTTPClient.Do(req)
}

// mcKey returns string of hex representation of sha1 sum of resource id and
// key. Used to get safe keys to use with memcached
func mcKey(resourceID, embedKey string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(resourceID+"\x00"+embedKey)))
}

package embdr

import (
	"net/http"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// ConfFunc is used to configure new Client; such functions should be used as
// arguments to New function
type ConfFunc func(*Client) *Client

// WithHTTPClient configures Client to use provided http.Client for outgoing
// requests
func WithHTTPClient(client *http.Client) ConfFunc {
	return func(c *Client) *Client {
		if client != nil {
			c.HTTPClient = client
		}
		return c
	}
}

// WithServiceHost configures Client to talk to embdr service at given host
// (host or host:port, without scheme). Rendered fragments reference the same
// host.
func WithServiceHost(host string) ConfFunc {
	host = strings.TrimRight(host, "/")
	return func(c *Client) *Client {
		if host != "" {
			c.host = host
		}
		return c
	}
}

// WithScheme sets the scheme ("http" or "https") embedding pages are served
// over. It selects both the scheme of metadata requests and which of the
// scheme-specific iframe and oEmbed properties of a resource apply. Other
// values are ignored.
func WithScheme(scheme string) ConfFunc {
	scheme = strings.ToLower(strings.TrimSuffix(scheme, ":"))
	return func(c *Client) *Client {
		switch scheme {
		case "http", "https":
			c.scheme = scheme
		}
		return c
	}
}

// WithPollInterval configures delay between consecutive polls of a pending
// resource. d must be positive.
func WithPollInterval(d time.Duration) ConfFunc {
	return func(c *Client) *Client {
		if d > 0 {
			c.pollInterval = d
		}
		return c
	}
}

// WithMaxAttempts limits number of metadata requests made for a resource that
// stays pending; once exhausted, embedding completes with ErrStillPending.
// n <= 0 means no limit, which is the default.
func WithMaxAttempts(n int) ConfFunc {
	return func(c *Client) *Client {
		if n < 0 {
			n = 0
		}
		c.maxAttempts = n
		return c
	}
}

// WithIframeProxy configures Client to frame link resources through the
// service's iframe endpoint instead of linking to their urls directly.
func WithIframeProxy(enable bool) ConfFunc {
	return func(c *Client) *Client {
		c.iframeProxy = enable
		return c
	}
}

// WithExtraHeaders configures Client to add extra headers to each outgoing
// http request
func WithExtraHeaders(hdr map[string]string) ConfFunc {
	headers := make([]string, 0, len(hdr)*2)
	for k, v := range hdr {
		headers = append(headers, k, v)
	}
	return func(c *Client) *Client {
		c.Headers = headers
		return c
	}
}

// WithMemcache configures Client to cache metadata of resources the service
// finished processing in memcached
func WithMemcache(client *memcache.Client) ConfFunc {
	return func(c *Client) *Client {
		if client != nil {
			c.Cache = client
		}
		return c
	}
}

// WithFrameBlocklist configures Client to never embed link resources which
// urls match any provided prefix as iframes; such links are embedded as their
// webshot images, if any.
func WithFrameBlocklist(prefixes []string) ConfFunc {
	var pmap *prefixMap
	if len(prefixes) > 0 {
		pmap = newPrefixMap(prefixes)
	}
	return func(c *Client) *Client {
		if pmap != nil {
			c.frameBlock = pmap
		}
		return c
	}
}

// WithSharedFetches configures Client to issue a single metadata request for
// concurrent Fetch calls asking for the same resource.
func WithSharedFetches(enable bool) ConfFunc {
	return func(c *Client) *Client {
		c.shareFetches = enable
		return c
	}
}

// WithLogger configures Client to use provided logger
func WithLogger(l Logger) ConfFunc {
	return func(c *Client) *Client {
		if l != nil {
			c.Log = l
		}
		return c
	}
}

// Logger describes set of methods used by Client for logging; standard lib
// *log.Logger implements this interface.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

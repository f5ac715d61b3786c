// Package embdr embeds previews of resources hosted by the embdr service into
// HTML documents.
//
// Given resource id and its embed key, Client retrieves resource metadata
// from the service, polls while the service is still processing the resource,
// and then puts an HTML fragment suitable for this resource into a Target:
// document viewer iframe for converted documents, image for pictures, oEmbed
// snippet or iframe for links, and a placeholder image for everything else.
//
// Example:
//
//	client := embdr.New(embdr.WithScheme("https"))
//	page, err := embdr.ParsePage(f, "text/html")
//	if err != nil {
//		return err
//	}
//	h := client.EmbedElement(ctx, page, "preview", "42", "secret", embdr.Options{})
//	if _, err := h.Wait(ctx); err != nil {
//		return err
//	}
//	return page.Render(os.Stdout)
//
// Metadata is requested from
//
//	<scheme>://<host>/api/resources/<id>/embed?embedKey=<key>
//
// Any response other than 200 is reported as *FetchError carrying response
// status code and body; connection failures are reported as *FetchError
// with code 500.
//
// The same logic is available over HTTP, see NewHandler.
package embdr

import (
	"io/ioutil"
	"log"
	"net/http"
	"time"

	"github.com/Doist/embdr/internal/useragent"
	"github.com/bradfitz/gomemcache/memcache"
	"golang.org/x/sync/singleflight"
)

// DefaultHost is the embdr service host used if not configured by
// WithServiceHost function
const DefaultHost = "embdr.io"

// DefaultPollInterval is the delay between polls of a pending resource
const DefaultPollInterval = 2 * time.Second

const defaultMaxBodySize = 1 << 20 // 1MB

// Client retrieves resource metadata from the embdr service and embeds
// resources into targets. Client is safe for concurrent use; each Embed call
// owns its own state.
type Client struct {
	HTTPClient  *http.Client
	Log         Logger
	Cache       *memcache.Client
	MaxBodySize int64

	// Headers specify key-value pairs of extra headers to add to each
	// outgoing request. Headers length must be even, otherwise Headers are
	// ignored.
	Headers []string

	host         string
	scheme       string
	pollInterval time.Duration
	maxAttempts  int // 0 means poll until cancelled
	iframeProxy  bool

	frameBlock *prefixMap // urls never embedded as iframes

	shareFetches bool
	group        singleflight.Group
}

// New returns new initialized Client. If no configuration functions
// provided, sane defaults would be used.
func New(conf ...ConfFunc) *Client {
	c := &Client{
		host:         DefaultHost,
		scheme:       "https",
		pollInterval: DefaultPollInterval,
	}
	for _, f := range conf {
		c = f(c)
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: useragent.Set(http.DefaultTransport, userAgent),
		}
	}
	if len(c.Headers)%2 != 0 {
		c.Headers = nil
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = defaultMaxBodySize
	}
	if c.Log == nil {
		c.Log = log.New(ioutil.Discard, "", 0)
	}
	return c
}

const userAgent = "embdr (https://github.com/Doist/embdr)"

// Scheme returns the scheme Client talks to the service over; it is also the
// scheme embedding pages are assumed to be served over.
func (c *Client) Scheme() string { return c.scheme }

// Host returns the embdr service host
func (c *Client) Host() string { return c.host }

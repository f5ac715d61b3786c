package embdr

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fragment is the result of rendering a resource
type Fragment struct {
	Type EmbedType // how resource was classified
	HTML string    // may be empty if a callback placeholder takes over

	calls []func(*Resource) // option callbacks to invoke on embedding
}

// Render returns HTML fragment embedding resource. Render has no side
// effects: option callbacks implied by the resource (such as a callback
// placeholder) are only recorded in the returned Fragment and invoked by
// Embed. For the same resource and options Render always returns the same
// fragment.
func (c *Client) Render(r *Resource, opts Options) Fragment {
	opts = opts.withDefaults(c.host)
	f := Fragment{Type: EmbedTypeOf(r, c.scheme)}
	switch f.Type {
	case TypeDocument:
		f.HTML = c.documentCode(r, opts)
	case TypeImage:
		f.HTML = c.imageCode(r, "")
	case TypeOembed:
		f.HTML = r.Metadata.Oembed(c.scheme).HTML
	case TypePending:
		c.placeholderCode(&f, r, opts.Pending)
	case TypeIframe:
		c.iframeCode(&f, r, opts)
	default:
		c.placeholderCode(&f, r, opts.Unsupported)
	}
	return f
}

func (c *Client) documentCode(r *Resource, opts Options) string {
	src := "//" + c.host + "/document.html?id=" + url.QueryEscape(r.ID) +
		"&embedKey=" + url.QueryEscape(r.EmbedKey) +
		"&loadingIcon=" + url.QueryEscape(opts.LoadingIcon)
	return renderElement(atom.Iframe,
		"class", "embdr-document",
		"width", "600",
		"height", "800",
		"frameborder", "0",
		"src", src,
		"webkitallowfullscreen", "",
		"mozallowfullscreen", "",
		"allowfullscreen", "",
		"allowscriptaccess", "always",
		"scrolling", "no",
	)
}

// iframeCode embeds link resource as an iframe if the link allows framing
// over page's scheme, otherwise falls back to its webshot image or the
// unsupported placeholder.
func (c *Client) iframeCode(f *Fragment, r *Resource, opts Options) {
	link := r.Metadata.RedirectURL
	if link == "" {
		link = r.Metadata.URL
	}
	embeddable := (r.Metadata.RedirectURL != "" || r.Metadata.Frameable(c.scheme)) &&
		link != "" && !c.frameBlock.Match(link)
	if embeddable {
		src := link
		if c.iframeProxy {
			src = c.endpointURL(r, "iframe")
		}
		f.HTML = renderElement(atom.Iframe,
			"class", "embdr-iframe",
			"width", "100%",
			"height", "390",
			"src", src,
			"frameborder", "0",
			"webkitallowfullscreen", "",
			"mozallowfullscreen", "",
			"allowfullscreen", "",
			"allowscriptaccess", "always",
			"scrolling", "yes",
		)
		return
	}
	if r.Webshot != nil && r.Webshot.URL != "" {
		f.calls = append(f.calls, opts.LinkEmbeddedAsImage)
		f.HTML = c.imageCode(r, r.Webshot.URL)
		return
	}
	c.placeholderCode(f, r, opts.Unsupported)
}

// imageCode returns <img> tag for resource; if src is empty, the service's
// image endpoint for resource is used
func (c *Client) imageCode(r *Resource, src string) string {
	var title string
	if r != nil {
		title = r.Metadata.Title
		if src == "" {
			src = c.endpointURL(r, "image")
		}
	}
	return renderElement(atom.Img,
		"class", "embdr-image",
		"alt", title,
		"title", title,
		"src", src,
		"style", "max-width: 100%; max-height: inherit; height: inherit; width: inherit;",
	)
}

func (c *Client) placeholderCode(f *Fragment, r *Resource, p Placeholder) {
	if p.fn != nil {
		f.calls = append(f.calls, p.fn)
		return
	}
	f.HTML = c.imageCode(r, p.url)
}

// endpointURL returns url of service endpoint serving given kind of resource
// representation ("image" or "iframe")
func (c *Client) endpointURL(r *Resource, kind string) string {
	return "//" + c.host + "/embed/" + url.PathEscape(r.ID) + "/" + kind +
		"?embedKey=" + url.QueryEscape(r.EmbedKey)
}

// renderElement renders empty element with attributes given as key-value
// pairs. Attribute values are escaped.
func renderElement(a atom.Atom, attrs ...string) string {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

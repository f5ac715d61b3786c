package embdr

// Placeholder is what gets shown for resources that are still pending or
// cannot be embedded: either an image url or a callback that renders its own
// message. Zero value means "use the default image".
type Placeholder struct {
	url string
	fn  func(*Resource)
}

// PlaceholderURL returns Placeholder rendered as an image with given url
func PlaceholderURL(url string) Placeholder { return Placeholder{url: url} }

// PlaceholderFunc returns Placeholder that invokes fn with the resource
// instead of rendering anything.
func PlaceholderFunc(fn func(*Resource)) Placeholder { return Placeholder{fn: fn} }

// IsZero reports whether placeholder was left unset
func (p Placeholder) IsZero() bool { return p.url == "" && p.fn == nil }

// URL returns image url of placeholder; it is empty for callback
// placeholders.
func (p Placeholder) URL() string { return p.url }

// Options configure a single Embed call. Any zero field is replaced with
// a default: service logo as the loading icon, service pending and
// unsupported images as placeholders, no-op callbacks.
type Options struct {
	// LoadingIcon is the icon url shown by document viewer while loading
	LoadingIcon string

	// Pending is shown while resource is still being processed. Callback
	// placeholder is invoked once, on the first pending poll.
	Pending Placeholder

	// Unsupported is shown when no preview could be generated for resource
	Unsupported Placeholder

	// LinkEmbeddedAsImage is invoked when a link resource cannot be framed
	// and its webshot image is embedded instead
	LinkEmbeddedAsImage func(*Resource)

	// Complete is invoked once resource was embedded or when fetching it
	// failed. It is not invoked after Handle.Cancel returns.
	Complete func(*Resource, error)
}

func (o Options) withDefaults(host string) Options {
	if o.LoadingIcon == "" {
		o.LoadingIcon = "//" + host + "/images/logo.png"
	}
	if o.Pending.IsZero() {
		o.Pending = PlaceholderURL("//" + host + "/images/pending.png")
	}
	if o.Unsupported.IsZero() {
		o.Unsupported = PlaceholderURL("//" + host + "/images/unsupported.png")
	}
	if o.LinkEmbeddedAsImage == nil {
		o.LinkEmbeddedAsImage = func(*Resource) {}
	}
	if o.Complete == nil {
		o.Complete = func(*Resource, error) {}
	}
	return o
}

package embdr

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/artyom/oembed"
)

// StatusPending is the resource status reported while the service is still
// processing a resource. Any other status is terminal.
const StatusPending = "pending"

// htmlPagesDone is the status of a resource's html pages once document
// conversion is finished
const htmlPagesDone = "done"

// Resource is the resource metadata as returned by the metadata endpoint.
// Resource values are replaced on every poll and never modified after
// decoding.
type Resource struct {
	ID        string     `json:"id"`
	EmbedKey  string     `json:"embedKey"`
	MimeType  string     `json:"mimeType"`
	Status    string     `json:"status"`
	HTMLPages *HTMLPages `json:"htmlPages,omitempty"`
	Webshot   *Webshot   `json:"webshot,omitempty"`
	Metadata  Metadata   `json:"metadata"`
}

// HTMLPages describes the html conversion of a document resource
type HTMLPages struct {
	Status string `json:"status"`
	Pages  int    `json:"pages,omitempty"`
}

// Webshot is a server-generated screenshot of a link resource
type Webshot struct {
	URL string `json:"url"`
}

// Metadata holds descriptive fields of a resource. Fields that depend on the
// scheme the embedding page is served over are available through Frameable
// and Oembed methods.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`

	httpFrameable  bool
	httpsFrameable bool
	httpOembed     *Oembed
	httpsOembed    *Oembed
}

// Oembed is an oEmbed payload the service attached to a link resource. Type
// and HTML are taken from the payload as is, whatever the type is. Details
// holds the payload decoded according to the oEmbed specification, it is nil
// if the payload does not conform to it.
type Oembed struct {
	Type    string
	HTML    string
	Details *oembed.Metadata
}

// Pending reports whether the service is still processing the resource
func (r *Resource) Pending() bool { return r.Status == StatusPending }

// UnmarshalJSON implements json.Unmarshaler. Resource id is accepted both as
// a json string and as a number.
func (r *Resource) UnmarshalJSON(b []byte) error {
	type plain Resource
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	id := bytes.TrimSpace(aux.ID)
	switch {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
		r.ID = ""
	case id[0] == '"':
		return json.Unmarshal(id, &r.ID)
	default:
		r.ID = string(id)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. oEmbed payloads that are not
// json objects are dropped rather than reported as errors.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	aux := struct {
		Title          string          `json:"title"`
		URL            string          `json:"url"`
		RedirectURL    string          `json:"redirectUrl"`
		HTTPFrameable  bool            `json:"httpiFrameEmbeddable"`
		HTTPSFrameable bool            `json:"httpsiFrameEmbeddable"`
		HTTPOembed     json.RawMessage `json:"httpOembed"`
		HTTPSOembed    json.RawMessage `json:"httpsOembed"`
	}{}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*m = Metadata{
		Title:          aux.Title,
		URL:            aux.URL,
		RedirectURL:    aux.RedirectURL,
		httpFrameable:  aux.HTTPFrameable,
		httpsFrameable: aux.HTTPSFrameable,
		httpOembed:     decodeOembed(aux.HTTPOembed),
		httpsOembed:    decodeOembed(aux.HTTPSOembed),
	}
	return nil
}

func decodeOembed(raw json.RawMessage) *Oembed {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	aux := struct {
		Type json.RawMessage `json:"type"`
		HTML json.RawMessage `json:"html"`
	}{}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil
	}
	o := &Oembed{Type: jsonString(aux.Type), HTML: jsonString(aux.HTML)}
	if meta, err := oembed.FromJSON(bytes.NewReader(raw)); err == nil {
		o.Details = meta
	}
	return o
}

// jsonString returns raw if it is a json string, and an empty string
// otherwise
func jsonString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Frameable reports whether the service found the link resource to allow
// iframe embedding when served over given scheme ("http" or "https").
func (m *Metadata) Frameable(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http":
		return m.httpFrameable
	case "https":
		return m.httpsFrameable
	}
	return false
}

// Oembed returns oEmbed payload the service provided for given scheme, or nil
// if there is none.
func (m *Metadata) Oembed(scheme string) *Oembed {
	switch strings.ToLower(scheme) {
	case "http":
		return m.httpOembed
	case "https":
		return m.httpsOembed
	}
	return nil
}

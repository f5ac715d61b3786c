package embdr

import "strings"

// EmbedType is the strategy used to embed a resource
type EmbedType string

// Embed types in order of precedence as decided by EmbedTypeOf
const (
	TypeDocument    EmbedType = "document"
	TypeImage       EmbedType = "image"
	TypeOembed      EmbedType = "oembed"
	TypePending     EmbedType = "pending"
	TypeIframe      EmbedType = "iframe"
	TypeUnsupported EmbedType = "unsupported"
)

// imageTypes is the set of mime types the service can render as an image
var imageTypes = map[string]struct{}{
	"application/dicom":         {},
	"application/postscript":    {},
	"application/tga":           {},
	"application/x-font-ttf":    {},
	"application/x-tga":         {},
	"application/x-targa":       {},
	"image/bmp":                 {},
	"image/gif":                 {},
	"image/jpeg":                {},
	"image/jpg":                 {},
	"image/png":                 {},
	"image/svg+xml":             {},
	"image/targa":               {},
	"image/tga":                 {},
	"image/tiff":                {},
	"image/vnd.adobe.photoshop": {},
	"image/webp":                {},
	"image/x-cmu-raster":        {},
	"image/x-gnuplot":           {},
	"image/x-icon":              {},
	"image/x-targa":             {},
	"image/x-tga":               {},
	"image/x-xbitmap":           {},
	"image/x-xpixmap":           {},
	"image/x-xwindowdump":       {},
	"image/xcf":                 {},
}

// EmbedTypeOf classifies resource into an embed strategy. scheme is the
// scheme the embedding page is served over and selects which oEmbed payload
// is considered. The first matching rule wins: document, image, oembed,
// pending, iframe; anything else is unsupported.
func EmbedTypeOf(r *Resource, scheme string) EmbedType {
	switch {
	case r == nil:
		return TypeUnsupported
	case asDocument(r):
		return TypeDocument
	case asImage(r):
		return TypeImage
	case asOembed(r, scheme):
		return TypeOembed
	case r.Pending():
		return TypePending
	case asIframe(r):
		return TypeIframe
	}
	return TypeUnsupported
}

// CanEmbedNow reports whether resource can be embedded without waiting for
// the service to finish processing it. Documents, images and oEmbed links
// have a usable representation even while pending.
func CanEmbedNow(r *Resource, scheme string) bool {
	if r == nil {
		return false
	}
	return !r.Pending() || asDocument(r) || asImage(r) || asOembed(r, scheme)
}

func asDocument(r *Resource) bool {
	return r.HTMLPages != nil && r.HTMLPages.Status == htmlPagesDone
}

func asImage(r *Resource) bool {
	_, ok := imageTypes[r.MimeType]
	return ok
}

func asOembed(r *Resource, scheme string) bool {
	meta := r.Metadata.Oembed(scheme)
	return meta != nil && meta.Type != "" && meta.HTML != ""
}

func asIframe(r *Resource) bool { return strings.HasPrefix(r.MimeType, "link") }

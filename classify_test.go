package embdr

import (
	"encoding/json"
	"testing"

	"github.com/artyom/oembed"
)

func videoOembed() *Oembed {
	const code = `<iframe src="https://video.example.com/embed/1"></iframe>`
	return &Oembed{
		Type:    string(oembed.TypeVideo),
		HTML:    code,
		Details: &oembed.Metadata{Type: oembed.TypeVideo, HTML: code},
	}
}

func TestEmbedTypeOf(t *testing.T) {
	table := []struct {
		name   string
		res    *Resource
		scheme string
		want   EmbedType
	}{
		{"nil", nil, "https", TypeUnsupported},
		{"document", &Resource{Status: "done", MimeType: "application/pdf",
			HTMLPages: &HTMLPages{Status: "done"}}, "https", TypeDocument},
		{"pending document", &Resource{Status: StatusPending, MimeType: "application/pdf",
			HTMLPages: &HTMLPages{Status: "done"}}, "https", TypeDocument},
		{"document not converted yet", &Resource{Status: StatusPending, MimeType: "application/pdf",
			HTMLPages: &HTMLPages{Status: StatusPending}}, "https", TypePending},
		{"image", &Resource{Status: "done", MimeType: "image/png"}, "https", TypeImage},
		{"pending image", &Resource{Status: StatusPending, MimeType: "image/jpeg"}, "https", TypeImage},
		{"oembed", &Resource{Status: StatusPending, MimeType: "link/html",
			Metadata: Metadata{httpsOembed: videoOembed()}}, "https", TypeOembed},
		{"oembed for other scheme", &Resource{Status: StatusPending, MimeType: "link/html",
			Metadata: Metadata{httpsOembed: videoOembed()}}, "http", TypePending},
		{"oembed without html", &Resource{Status: "done", MimeType: "link/html",
			Metadata: Metadata{httpOembed: &Oembed{Type: "link"}}}, "http", TypeIframe},
		{"oembed without type", &Resource{Status: StatusPending, MimeType: "link/html",
			Metadata: Metadata{httpsOembed: &Oembed{HTML: "<b>x</b>"}}}, "https", TypePending},
		{"pending", &Resource{Status: StatusPending, MimeType: "application/pdf"}, "https", TypePending},
		{"pending link", &Resource{Status: StatusPending, MimeType: "link/html"}, "https", TypePending},
		{"link", &Resource{Status: "done", MimeType: "link/html"}, "https", TypeIframe},
		{"link prefix", &Resource{Status: "done", MimeType: "linkedin/profile"}, "https", TypeIframe},
		{"unsupported", &Resource{Status: "done", MimeType: "application/zip"}, "https", TypeUnsupported},
		{"unsupported empty", &Resource{}, "https", TypeUnsupported},
	}
	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			if got := EmbedTypeOf(tt.res, tt.scheme); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmbedTypeOf_nonStandardOembed(t *testing.T) {
	for _, typ := range []string{"photo", "link", "embed"} {
		body := `{"id": "1", "mimeType": "link/html", "status": "pending", "metadata": {
			"httpsOembed": {"type": "` + typ + `", "html": "<div>x</div>"}}}`
		var r Resource
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			t.Fatal(err)
		}
		if got := EmbedTypeOf(&r, "https"); got != TypeOembed {
			t.Errorf("%s: got %q, want %q", typ, got, TypeOembed)
		}
		if !CanEmbedNow(&r, "https") {
			t.Errorf("%s: resource should be embeddable now", typ)
		}
	}
}

func TestEmbedTypeOf_imageAllowList(t *testing.T) {
	if len(imageTypes) != 26 {
		t.Fatalf("image allow-list has %d entries, want 26", len(imageTypes))
	}
	for mt := range imageTypes {
		r := &Resource{
			Status:   "done",
			MimeType: mt,
			Webshot:  &Webshot{URL: "https://cdn.example.com/x.png"},
			Metadata: Metadata{URL: "https://example.com/", httpsFrameable: true, httpsOembed: videoOembed()},
		}
		if got := EmbedTypeOf(r, "https"); got != TypeImage {
			t.Errorf("%s: got %q, want %q", mt, got, TypeImage)
		}
	}
	for _, mt := range []string{"image/heic", "IMAGE/PNG", "image/png; charset=binary", "application/pdf"} {
		if asImage(&Resource{MimeType: mt}) {
			t.Errorf("%q should not be treated as image", mt)
		}
	}
}

func TestEmbedTypeOf_documentPrecedence(t *testing.T) {
	for _, mt := range []string{"image/png", "link/html", "application/zip"} {
		r := &Resource{
			Status:    "done",
			MimeType:  mt,
			HTMLPages: &HTMLPages{Status: "done"},
			Metadata:  Metadata{httpsOembed: videoOembed(), httpsFrameable: true},
		}
		if got := EmbedTypeOf(r, "https"); got != TypeDocument {
			t.Errorf("%s: got %q, want %q", mt, got, TypeDocument)
		}
	}
}

func TestCanEmbedNow(t *testing.T) {
	table := []struct {
		name string
		res  *Resource
		want bool
	}{
		{"nil", nil, false},
		{"done", &Resource{Status: "done", MimeType: "application/zip"}, true},
		{"pending", &Resource{Status: StatusPending, MimeType: "application/pdf"}, false},
		{"pending with pages converting", &Resource{Status: StatusPending,
			HTMLPages: &HTMLPages{Status: StatusPending}}, false},
		{"pending with pages done", &Resource{Status: StatusPending,
			HTMLPages: &HTMLPages{Status: "done"}}, true},
		{"pending image", &Resource{Status: StatusPending, MimeType: "image/gif"}, true},
		{"pending oembed", &Resource{Status: StatusPending, MimeType: "link/html",
			Metadata: Metadata{httpsOembed: videoOembed()}}, true},
		{"pending link", &Resource{Status: StatusPending, MimeType: "link/html"}, false},
	}
	for _, tt := range table {
		if got := CanEmbedNow(tt.res, "https"); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

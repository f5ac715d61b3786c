package embdr

import (
	"encoding/json"
	"testing"
)

func TestResource_UnmarshalJSON(t *testing.T) {
	const body = `{
		"id": 42,
		"embedKey": "k",
		"mimeType": "link/html",
		"status": "done",
		"htmlPages": {"status": "pending"},
		"webshot": {"url": "https://cdn.example.com/42.png"},
		"metadata": {
			"title": "Title",
			"url": "https://example.com/",
			"redirectUrl": "https://www.example.com/",
			"httpsiFrameEmbeddable": true,
			"httpOembed": {"type": "bogus", "html": "<b>x</b>"},
			"httpsOembed": {"type": "rich", "html": "<div>rich</div>", "provider_name": "Example"}
		}
	}`
	var r Resource
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatal(err)
	}
	if r.ID != "42" || r.EmbedKey != "k" || r.MimeType != "link/html" || r.Status != "done" {
		t.Fatalf("unexpected resource: %+v", r)
	}
	if r.HTMLPages == nil || r.HTMLPages.Status != "pending" {
		t.Errorf("unexpected htmlPages: %+v", r.HTMLPages)
	}
	if r.Webshot == nil || r.Webshot.URL != "https://cdn.example.com/42.png" {
		t.Errorf("unexpected webshot: %+v", r.Webshot)
	}
	m := r.Metadata
	if m.Title != "Title" || m.URL != "https://example.com/" || m.RedirectURL != "https://www.example.com/" {
		t.Errorf("unexpected metadata: %+v", m)
	}
	if m.Frameable("http") || !m.Frameable("https") || m.Frameable("ftp") {
		t.Error("unexpected frameable flags")
	}
	if o := m.Oembed("http"); o == nil || o.Type != "bogus" || o.HTML != "<b>x</b>" || o.Details != nil {
		t.Errorf("unexpected http oEmbed payload: %+v", o)
	}
	if got := EmbedTypeOf(&r, "http"); got != TypeOembed {
		t.Errorf("got %q for http scheme, want %q", got, TypeOembed)
	}
	o := m.Oembed("HTTPS")
	if o == nil || o.Type != "rich" || o.HTML != "<div>rich</div>" {
		t.Fatalf("unexpected https oEmbed payload: %+v", o)
	}
	if o.Details == nil || o.Details.Provider != "Example" {
		t.Errorf("unexpected https oEmbed details: %+v", o.Details)
	}
}

func TestResource_UnmarshalJSON_oembed(t *testing.T) {
	table := []struct {
		body       string
		typ, html  string
		wantNil    bool
		hasDetails bool
	}{
		{`null`, "", "", true, false},
		{`"<b>x</b>"`, "", "", true, false},
		{`{"type": "photo", "html": "<img src=x>"}`, "photo", "<img src=x>", false, true},
		{`{"type": "video", "html": "<video></video>", "width": 10, "height": 10}`, "video", "<video></video>", false, true},
		{`{"type": 1, "html": "<b>x</b>"}`, "", "<b>x</b>", false, false},
	}
	for _, tt := range table {
		var m Metadata
		if err := json.Unmarshal([]byte(`{"httpOembed": `+tt.body+`}`), &m); err != nil {
			t.Errorf("%s: %v", tt.body, err)
			continue
		}
		o := m.Oembed("http")
		if tt.wantNil {
			if o != nil {
				t.Errorf("%s: payload should be dropped, got %+v", tt.body, o)
			}
			continue
		}
		if o == nil || o.Type != tt.typ || o.HTML != tt.html || (o.Details != nil) != tt.hasDetails {
			t.Errorf("%s: unexpected payload %+v", tt.body, o)
		}
	}
}

func TestResource_UnmarshalJSON_id(t *testing.T) {
	table := []struct{ body, want string }{
		{`{"id": "abc"}`, "abc"},
		{`{"id": 1234567}`, "1234567"},
		{`{"id": null}`, ""},
		{`{}`, ""},
	}
	for _, tt := range table {
		var r Resource
		if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
			t.Errorf("%s: %v", tt.body, err)
			continue
		}
		if r.ID != tt.want {
			t.Errorf("%s: got id %q, want %q", tt.body, r.ID, tt.want)
		}
	}
}

package embdr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/artyom/httpflags"
)

const (
	defaultHandlerWait = 10 * time.Second
	maxHandlerWait     = time.Minute
)

// NewHandler returns http.Handler that renders embed fragments on behalf of
// clients which cannot talk to the embdr service themselves.
//
// The endpoint accepts GET and POST requests with the following arguments:
// `id` and `embedKey` (required), `loadingIcon`, `pending` and `unsupported`
// (placeholder image urls), `wait` (how long to poll a pending resource,
// e.g. "5s"; capped at one minute).
//
// It returns JSON object like this:
//
//	{
//		"id": "42",
//		"status": "done",
//		"type": "image",
//		"html": "<img class=\"embdr-image\" ...>"
//	}
//
// Resource that is still pending after `wait` is rendered with the pending
// placeholder and responded with 202 Accepted. Errors reported by the service
// are passed through with their status code.
//
// Additionally you can supply `callback` to wrap the result in a JavaScript
// callback (JSONP), the type of this response would be
// "application/x-javascript"
func NewHandler(client *Client) http.Handler {
	if client == nil {
		client = New()
	}
	return &handler{client: client}
}

type handler struct {
	client *Client
}

type handlerResult struct {
	ID     string    `json:"id,omitempty"`
	Status string    `json:"status,omitempty"`
	Type   EmbedType `json:"type,omitempty"`
	HTML   string    `json:"html,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	args := struct {
		ID          string        `flag:"id"`
		EmbedKey    string        `flag:"embedKey"`
		LoadingIcon string        `flag:"loadingIcon"`
		Pending     string        `flag:"pending"`
		Unsupported string        `flag:"unsupported"`
		Wait        time.Duration `flag:"wait"`
		Callback    string        `flag:"callback"`
	}{
		Wait: defaultHandlerWait,
	}
	if err := httpflags.Parse(&args, r); err != nil || args.ID == "" || args.EmbedKey == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if args.Wait <= 0 || args.Wait > maxHandlerWait {
		args.Wait = defaultHandlerWait
	}
	opts := Options{LoadingIcon: args.LoadingIcon}
	if args.Pending != "" {
		opts.Pending = PlaceholderURL(args.Pending)
	}
	if args.Unsupported != "" {
		opts.Unsupported = PlaceholderURL(args.Unsupported)
	}

	ctx, cancel := context.WithTimeout(r.Context(), args.Wait)
	defer cancel()
	hdl := h.client.Embed(ctx, nil, args.ID, args.EmbedKey, opts)
	<-hdl.Done()
	res, err := hdl.Wait(context.Background())

	code := http.StatusOK
	var out handlerResult
	var fe *FetchError
	switch {
	case err == nil:
	case errors.As(err, &fe):
		code = fe.Code
		out.Error = fe.Message
	case r.Context().Err() != nil:
		return // client is gone
	case res != nil && res.Pending():
		code = http.StatusAccepted
	default:
		http.Error(w, http.StatusText(http.StatusGatewayTimeout), http.StatusGatewayTimeout)
		return
	}
	if res != nil {
		f := h.client.Render(res, opts)
		out.ID, out.Status, out.Type, out.HTML = res.ID, res.Status, f.Type, f.HTML
	}
	writeResult(w, code, args.Callback, &out)
}

func writeResult(w http.ResponseWriter, code int, callback string, out *handlerResult) {
	if callback != "" {
		w.Header().Set("Content-Type", "application/x-javascript")
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(code)
	if callback != "" {
		io.WriteString(w, callback+"(")
		json.NewEncoder(w).Encode(out)
		w.Write([]byte(")"))
		return
	}
	json.NewEncoder(w).Encode(out)
}

// Package useragent provides http.RoundTripper wrapper to set User-Agent header
// on each http request made.
//
// Basic usage:
//
//	client := &http.Client{
//		Transport: useragent.Set(http.DefaultTransport, "embdr/1.0"),
//	}
//	resp, err := client.Get("https://...")
package useragent

import "net/http"

// Set wraps provided http.RoundTripper returning a new one that adds given
// agent as User-Agent header for requests without such header. If rt is nil,
// http.DefaultTransport is used.
//
// If rt is a *http.Transport, the returned RoundTripper would have Transport's
// methods visible so they can be accessed after type assertion to required
// interface (i.e. CloseIdleConnections).
func Set(rt http.RoundTripper, agent string) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if agent == "" {
		return rt
	}
	if t, ok := rt.(*http.Transport); ok {
		return uaT{t, agent}
	}
	return uaRT{rt, agent}
}

type uaT struct {
	*http.Transport
	userAgent string
}

func (t uaT) RoundTrip(r *http.Request) (*http.Response, error) {
	return t.Transport.RoundTrip(withAgent(r, t.userAgent))
}

type uaRT struct {
	http.RoundTripper
	userAgent string
}

func (t uaRT) RoundTrip(r *http.Request) (*http.Response, error) {
	return t.RoundTripper.RoundTrip(withAgent(r, t.userAgent))
}

// withAgent returns r if it already has User-Agent header set, otherwise its
// shallow copy with the header added. Request passed to RoundTripper must not
// be modified.
func withAgent(r *http.Request, agent string) *http.Request {
	if _, ok := r.Header["User-Agent"]; ok {
		return r
	}
	r2 := r.Clone(r.Context())
	r2.Header.Set("User-Agent", agent)
	return r2
}

// Command embdr renders embdr resource previews.
//
// With -id and -key it embeds a single resource: the resulting fragment is
// printed to stdout, or, if -page is set, put into element -element of that
// HTML file and the whole page printed. Otherwise it serves HTTP endpoint
// rendering fragments on request, see embdr.NewHandler.
package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Doist/embdr"
	"github.com/Doist/embdr/internal/useragent"
	"github.com/artyom/autoflags"
	"github.com/bradfitz/gomemcache/memcache"
)

func main() {
	args := struct {
		Listen    string        `flag:"listen,address to listen, set both -sslcert and -sslkey for HTTPS"`
		Cert      string        `flag:"sslcert,path to certificate file (PEM format)"`
		Key       string        `flag:"sslkey,path to certificate file (PEM format)"`
		Host      string        `flag:"host,embdr service host"`
		Scheme    string        `flag:"scheme,scheme embedding pages are served over (http or https)"`
		Cache     string        `flag:"cache,address of memcached, disabled if empty"`
		Blocklist string        `flag:"blocklist,file with url prefixes never to embed as iframes, one per line"`
		Proxy     bool          `flag:"iframeProxy,frame links through the service iframe endpoint"`
		Timeout   time.Duration `flag:"timeout,timeout for remote i/o"`
		Interval  time.Duration `flag:"interval,delay between polls of a pending resource"`

		ID       string        `flag:"id,resource id to embed once and exit"`
		EmbedKey string        `flag:"key,embed key of resource"`
		Page     string        `flag:"page,HTML file to embed resource into"`
		Element  string        `flag:"element,id of -page element to embed resource into"`
		Wait     time.Duration `flag:"wait,how long to wait for a pending resource"`
	}{
		Listen:   "localhost:8080",
		Host:     embdr.DefaultHost,
		Scheme:   "https",
		Timeout:  30 * time.Second,
		Interval: embdr.DefaultPollInterval,
		Element:  "embdr",
		Wait:     time.Minute,
	}
	autoflags.Define(&args)
	flag.Parse()

	if args.Timeout < 0 {
		args.Timeout = 0
	}
	httpClient := &http.Client{
		Timeout: args.Timeout,
		Transport: useragent.Set(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}, "embdr (https://github.com/Doist/embdr)"),
	}
	configs := []embdr.ConfFunc{
		embdr.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
		embdr.WithHTTPClient(httpClient),
		embdr.WithServiceHost(args.Host),
		embdr.WithScheme(args.Scheme),
		embdr.WithPollInterval(args.Interval),
		embdr.WithIframeProxy(args.Proxy),
	}
	if args.Blocklist != "" {
		prefixes, err := readBlocklist(args.Blocklist)
		if err != nil {
			log.Fatal(err)
		}
		configs = append(configs, embdr.WithFrameBlocklist(prefixes))
	}
	if args.Cache != "" {
		log.Print("Enable cache at ", args.Cache)
		configs = append(configs, embdr.WithMemcache(memcache.New(args.Cache)))
	}

	if args.ID != "" {
		client := embdr.New(configs...)
		if err := embedOnce(client, args.ID, args.EmbedKey, args.Page, args.Element, args.Wait, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	client := embdr.New(append(configs, embdr.WithSharedFetches(true))...)
	go func() {
		// idle connections to the service pile up on a busy server;
		// force periodic close of them
		for range time.NewTicker(2 * time.Minute).C {
			if tr, ok := httpClient.Transport.(interface{ CloseIdleConnections() }); ok {
				tr.CloseIdleConnections()
			}
		}
	}()
	srv := &http.Server{
		Addr:         args.Listen,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  30 * time.Second,
		Handler:      embdr.NewHandler(client),
	}
	if args.Cert != "" && args.Key != "" {
		log.Fatal(srv.ListenAndServeTLS(args.Cert, args.Key))
	} else {
		log.Fatal(srv.ListenAndServe())
	}
}

// embedOnce embeds single resource and writes result to w: either rendered
// fragment, or the whole page if pageFile is not empty.
func embedOnce(client *embdr.Client, id, key, pageFile, elementID string, wait time.Duration, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	opts := embdr.Options{
		LinkEmbeddedAsImage: func(r *embdr.Resource) {
			log.Printf("link %q cannot be framed, embedding its webshot", r.Metadata.URL)
		},
	}
	if pageFile == "" {
		var out bytes.Buffer
		h := client.Embed(ctx, embdr.TargetFunc(func(s string) {
			out.Reset()
			out.WriteString(s)
		}), id, key, opts)
		if _, err := h.Wait(context.Background()); err != nil {
			return describe(err)
		}
		_, err := fmt.Fprintln(w, out.String())
		return err
	}
	page, err := readPage(pageFile)
	if err != nil {
		return err
	}
	if page.Element(elementID) == nil {
		return fmt.Errorf("%s: no element with id %q", pageFile, elementID)
	}
	h := client.EmbedElement(ctx, page, elementID, id, key, opts)
	if _, err := h.Wait(context.Background()); err != nil {
		return describe(err)
	}
	return page.Render(w)
}

func describe(err error) error {
	var fe *embdr.FetchError
	switch {
	case errors.As(err, &fe):
		return fmt.Errorf("service responded with %d: %s", fe.Code, fe.Message)
	case errors.Is(err, context.DeadlineExceeded):
		return errors.New("resource is still being processed, try again later")
	}
	return err
}

func readPage(name string) (*embdr.Page, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return embdr.ParsePage(f, "text/html")
}

func readBlocklist(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := bufio.NewScanner(io.LimitReader(f, 512*1024))
	var prefixes []string
	for s.Scan() {
		if bytes.HasPrefix(s.Bytes(), []byte("http")) {
			prefixes = append(prefixes, s.Text())
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return prefixes, nil
}

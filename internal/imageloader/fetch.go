package imageloader

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"github.com/die-net/lrucache"
	"github.com/gregjones/httpcache"
	"github.com/pkg/errors"

	"github.com/basel-ax/archaeo/internal/domain"
)

var (
	// ErrUnsupportedScheme is returned for URLs other than http and https
	ErrUnsupportedScheme = fmt.Errorf("only http and https image URLs are supported")
	// ErrForbiddenAddress is returned when a URL resolves to a non-public address
	ErrForbiddenAddress = fmt.Errorf("image URL points to a non-public address")
)

// carrier-grade NAT range, not covered by netip.Addr.IsPrivate
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Fetcher loads images by URL, e.g. from a museum catalogue, through an
// in-memory HTTP cache. Only public addresses are dialed, redirects included.
type Fetcher struct {
	client *http.Client
	loader *Loader
}

// NewFetcher creates a fetcher whose cache holds up to cacheBytes for ttl
func NewFetcher(loader *Loader, cacheBytes int64, ttl time.Duration) *Fetcher {
	return newFetcher(loader, cacheBytes, ttl, func(ap netip.AddrPort) bool {
		return publicAddr(ap.Addr())
	})
}

// newFetcher creates a fetcher that dials only addresses allow accepts
func newFetcher(loader *Loader, cacheBytes int64, ttl time.Duration, allow func(netip.AddrPort) bool) *Fetcher {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			ap, err := netip.ParseAddrPort(address)
			if err != nil {
				return errors.Wrap(err, "parse dial address")
			}
			if !allow(netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())) {
				return errors.Wrapf(ErrForbiddenAddress, "dial %s", address)
			}
			return nil
		},
	}
	transport := httpcache.NewTransport(lrucache.New(cacheBytes, int64(ttl.Seconds())))
	transport.Transport = &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after %d redirects", len(via))
				}
				return checkScheme(req.URL)
			},
		},
		loader: loader,
	}
}

// publicAddr reports whether addr is routable on the public internet
func publicAddr(addr netip.Addr) bool {
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

func checkScheme(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrUnsupportedScheme
	}
	return nil
}

// Fetch downloads rawURL and encodes the body
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.EncodedImage, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "parse image URL")
	}
	if err := checkScheme(u); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetch image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return f.loader.Load(resp.Body)
}

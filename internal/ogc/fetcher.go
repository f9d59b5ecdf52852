package ogc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/utils"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 15 * time.Second
	DefaultMaxBodyBytes   = 32 << 20
	maxRedirects          = 5

	acceptHeader = "application/vnd.ogc.wms_xml, application/xml, text/xml;q=0.9, */*;q=0.1"
)

var (
	errBlockedAddress   = errors.New("dial to disallowed address")
	errTooManyRedirects = errors.New("too many redirects")
)

// Fetcher performs one bounded GET per capabilities document. No retries.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	connectTimeout time.Duration
	readTimeout    time.Duration
	maxBody        int64
}

type fetcherOptions struct {
	connectTimeout time.Duration
	readTimeout    time.Duration
	maxBody        int64
	dialGuard      func(net.IP) bool
	redirectCheck  func(rawURL string) error
	transport      *http.Transport
}

// Option configures a Fetcher.
type Option func(*fetcherOptions)

// WithTimeouts sets the connect and read timeouts. Zero keeps the default.
func WithTimeouts(connect, read time.Duration) Option {
	return func(o *fetcherOptions) {
		if connect > 0 {
			o.connectTimeout = connect
		}
		if read > 0 {
			o.readTimeout = read
		}
	}
}

// WithMaxBodyBytes caps the response body size.
func WithMaxBodyBytes(n int64) Option {
	return func(o *fetcherOptions) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// WithDialGuard refuses connections to resolved addresses for which
// blocked returns true.
func WithDialGuard(blocked func(net.IP) bool) Option {
	return func(o *fetcherOptions) { o.dialGuard = blocked }
}

// WithRedirectCheck validates every redirect target before it is followed.
func WithRedirectCheck(check func(rawURL string) error) Option {
	return func(o *fetcherOptions) { o.redirectCheck = check }
}

// WithTransport uses t (cloned) as the base transport.
func WithTransport(t *http.Transport) Option {
	return func(o *fetcherOptions) { o.transport = t }
}

// NewFetcher builds a fetcher sending userAgent on every request.
func NewFetcher(userAgent string, opts ...Option) *Fetcher {
	o := fetcherOptions{
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
		maxBody:        DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var tr *http.Transport
	if o.transport != nil {
		tr = o.transport.Clone()
	} else {
		tr = http.DefaultTransport.(*http.Transport).Clone()
	}

	dialer := &net.Dialer{Timeout: o.connectTimeout, KeepAlive: 30 * time.Second}
	if guard := o.dialGuard; guard != nil {
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if guard(net.ParseIP(host)) {
				return errBlockedAddress
			}
			return nil
		}
	}
	tr.DialContext = dialer.DialContext
	tr.TLSHandshakeTimeout = o.connectTimeout
	tr.ResponseHeaderTimeout = o.readTimeout

	client := &http.Client{
		Transport: tr,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			if o.redirectCheck != nil {
				if err := o.redirectCheck(req.URL.String()); err != nil {
					return fmt.Errorf("redirect to disallowed url: %w", err)
				}
			}
			return nil
		},
	}

	return &Fetcher{
		client:         client,
		userAgent:      userAgent,
		connectTimeout: o.connectTimeout,
		readTimeout:    o.readTimeout,
		maxBody:        o.maxBody,
	}
}

// Fetch GETs capabilitiesURL and returns the body. Errors are *domain.Error.
func (f *Fetcher) Fetch(ctx context.Context, capabilitiesURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.connectTimeout+f.readTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, capabilitiesURL, nil)
	if err != nil {
		return nil, domain.NewNetworkError(domain.MsgUnreachable, false, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer utils.DrainAndClose(resp.Body, 64<<10)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewHTTPStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, domain.NewNetworkError(domain.MsgBodyTooLarge, false, fmt.Errorf("body exceeds %d bytes", f.maxBody))
	}
	return body, nil
}

func classify(err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return domain.NewNetworkError(domain.MsgFetchCancelled, false, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &ne) && ne.Timeout():
		return domain.NewNetworkError(domain.MsgTimeout, true, err)
	default:
		return domain.NewNetworkError(domain.MsgUnreachable, false, err)
	}
}

package infra

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linksleuth/linksleuth/internal/config"
	"github.com/linksleuth/linksleuth/internal/model"
)

// Inspector characterizes the network and hosting posture of a hostname.
//
// Design decision: The four steps (TLS, IP/geo, CDN+proxy, RDAP) write into
// separate fields of the descriptor, so they can run concurrently without
// shared mutable state. CDN and proxy detection depend on the organization
// name from the IP step, so they run in its goroutine.
type Inspector struct {
	// client is the HTTP client for the geolocation and RDAP lookups.
	client *http.Client

	// geoBaseURL is the geolocation API base (joined with /{ip}/json/).
	geoBaseURL string

	// rdapBaseURL is the RDAP base (joined with /domain/{domain}).
	rdapBaseURL string

	// tlsPort is the port dialed for certificate inspection.
	tlsPort string

	// timeout bounds each individual step.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Inspector) {
		i.client = client
	}
}

// WithGeoBaseURL overrides the geolocation API base, mainly for tests.
func WithGeoBaseURL(u string) Option {
	return func(i *Inspector) {
		i.geoBaseURL = strings.TrimSuffix(u, "/")
	}
}

// WithRDAPBaseURL overrides the RDAP base, mainly for tests.
func WithRDAPBaseURL(u string) Option {
	return func(i *Inspector) {
		i.rdapBaseURL = strings.TrimSuffix(u, "/")
	}
}

// WithTLSPort overrides the TLS inspection port, mainly for tests.
func WithTLSPort(port string) Option {
	return func(i *Inspector) {
		i.tlsPort = port
	}
}

// WithTimeout bounds each inspection step.
func WithTimeout(d time.Duration) Option {
	return func(i *Inspector) {
		i.timeout = d
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// NewInspector creates an infrastructure inspector.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{
		client:      &http.Client{},
		geoBaseURL:  config.DefaultGeoAPIBaseURL,
		rdapBaseURL: config.DefaultRDAPBaseURL,
		tlsPort:     "443",
		timeout:     config.DefaultTimeout,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Inspect gathers the full infrastructure descriptor for a URL.
// Steps that fail mark their own slice of the descriptor and leave the
// others intact; Inspect itself never fails.
func (i *Inspector) Inspect(ctx context.Context, rawURL string) model.InfraDescriptor {
	hostname := model.Hostname(rawURL)
	desc := model.InfraDescriptor{
		Hostname: hostname,
		IsHTTPS:  strings.HasPrefix(model.NormalizeURL(rawURL), "https://"),
		CDN:      CDNUndetermined,
	}

	if hostname == "" {
		desc.SSL = &model.SSLInfo{Valid: false, Err: "no hostname in URL"}
		return desc
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		desc.SSL = i.inspectTLS(ctx, hostname)
		return nil
	})

	g.Go(func() error {
		desc.IP = i.lookupIP(ctx, hostname)
		if desc.IP != nil {
			desc.CDN = DetectCDN(desc.IP.Org)
			desc.ProxySuspect = IsProxySuspect(desc.IP.Org)
		}
		return nil
	})

	g.Go(func() error {
		desc.Whois = i.lookupWhois(ctx, model.RegistrableDomain(hostname))
		return nil
	})

	_ = g.Wait() // steps never return errors; they degrade in place

	i.logger.Debug("infrastructure inspected",
		"hostname", hostname,
		"cdn", desc.CDN,
		"proxy_suspect", desc.ProxySuspect,
	)
	return desc
}

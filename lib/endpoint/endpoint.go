// Package endpoint tracks which of a prioritized list of portal base
// URLs is currently reachable. The school exposes the same portal
// behind two raw IPs and a DNS name, any of which can drop out for
// hours at a time, so retrieval code always asks the resolver for the
// active base URL and invalidates it on the first transport failure.
package endpoint

import (
	"context"
	"errors"
	"sync"
	"time"

	"ntpuassist-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

var ErrNoReachableURL = errors.New("no reachable base url")

type Resolver struct {
	mu         sync.Mutex
	candidates []string
	active     string

	http *resty.Client
}

type ResolverOptions struct {
	// Candidates are probed in order; the first reachable one becomes
	// the active base URL.
	Candidates []string
	// TracerName names the resty instrumentation scope.
	TracerName string
	// ProbeTimeout bounds every request made through Client().
	// Defaults to 10 seconds.
	ProbeTimeout time.Duration
}

func NewResolver(opts ResolverOptions) *Resolver {
	timeout := opts.ProbeTimeout
	if timeout == 0 {
		timeout = time.Second * 10
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(timeout)

	tracerName := opts.TracerName
	if tracerName == "" {
		tracerName = "endpoint"
	}
	telemetry.InstrumentResty(client, tracerName)

	return &Resolver{
		candidates: opts.Candidates,
		http:       client,
	}
}

// Client exposes the instrumented http client so retrieval code issues
// its requests through the same transport the probes use.
func (r *Resolver) Client() *resty.Client {
	return r.http
}

// Probe reports whether url answers a HEAD request at all. Any
// network-level failure counts as unreachable; the status code does
// not matter.
func (r *Resolver) Probe(ctx context.Context, url string) bool {
	if url == "" {
		return false
	}
	_, err := r.http.R().SetContext(ctx).Head(url)
	return err == nil
}

// Resolve probes the candidates in priority order and sets the first
// reachable one as active. When none answer, the active URL is cleared
// and Resolve returns false.
func (r *Resolver) Resolve(ctx context.Context) bool {
	for _, url := range r.candidates {
		if r.Probe(ctx, url) {
			r.mu.Lock()
			r.active = url
			r.mu.Unlock()
			return true
		}
	}

	r.mu.Lock()
	r.active = ""
	r.mu.Unlock()
	return false
}

func (r *Resolver) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// ActiveOrResolve returns the active base URL, resolving first if a
// previous failure cleared it.
func (r *Resolver) ActiveOrResolve(ctx context.Context) (string, error) {
	if url := r.Active(); url != "" {
		return url, nil
	}
	if !r.Resolve(ctx) {
		return "", ErrNoReachableURL
	}
	return r.Active(), nil
}

// Invalidate clears the active base URL. Called by retrieval code on
// any downstream transport failure; the next request re-resolves
// instead of retrying the same endpoint.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.active = ""
	r.mu.Unlock()
}

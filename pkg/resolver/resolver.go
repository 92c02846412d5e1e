// Package resolver attaches reverse DNS names to scan results.
package resolver

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/gologger"
	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"
)

const (
	DefaultTimeout     = 2 * time.Second
	DefaultConcurrency = 16
	DefaultCacheSize   = 4096
)

// LookupFunc returns the PTR names of addr
type LookupFunc func(ctx context.Context, addr string) ([]string, error)

// Options configures a Resolver
type Options struct {
	Timeout     time.Duration
	Concurrency int
	CacheSize   int
	// Lookup defaults to net.DefaultResolver.LookupAddr
	Lookup LookupFunc
}

// Resolver performs cached reverse lookups
type Resolver struct {
	options Options
	cache   gcache.Cache[netip.Addr, string]
}

// New creates a resolver, filling unset options with defaults
func New(options Options) *Resolver {
	if options.Timeout <= 0 {
		options.Timeout = DefaultTimeout
	}
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrency
	}
	if options.CacheSize <= 0 {
		options.CacheSize = DefaultCacheSize
	}
	if options.Lookup == nil {
		options.Lookup = net.DefaultResolver.LookupAddr
	}
	return &Resolver{
		options: options,
		cache: gcache.New[netip.Addr, string](options.CacheSize).
			LRU().
			Expiration(time.Hour).
			Build(),
	}
}

// Hostname returns the first PTR name of ip. Failed lookups and answers
// that are only an address again yield no name; both are cached.
func (r *Resolver) Hostname(ctx context.Context, ip netip.Addr) (string, bool) {
	if name, err := r.cache.Get(ip); err == nil {
		return name, name != ""
	}

	ctx, cancel := context.WithTimeout(ctx, r.options.Timeout)
	defer cancel()

	var name string
	names, err := r.options.Lookup(ctx, ip.String())
	if err != nil {
		gologger.Debug().Msgf("Reverse lookup of %s failed: %s", ip, err)
	} else {
		name = pickName(names)
	}
	if ctx.Err() == nil || name != "" {
		_ = r.cache.Set(ip, name)
	}
	return name, name != ""
}

// ResolveAll looks up every address concurrently and returns the names
// found, keyed by address.
func (r *Resolver) ResolveAll(ctx context.Context, ips []netip.Addr) (map[netip.Addr]string, error) {
	names := mapsutil.NewSyncLockMap[netip.Addr, string]()

	awg, err := syncutil.New(syncutil.WithSize(r.options.Concurrency))
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		awg.Add()
		go func(ip netip.Addr) {
			defer awg.Done()
			if name, ok := r.Hostname(ctx, ip); ok {
				_ = names.Set(ip, name)
			}
		}(ip)
	}
	awg.Wait()
	return names.GetAll(), nil
}

func pickName(names []string) string {
	for _, name := range names {
		name = strings.TrimSuffix(name, ".")
		if name == "" {
			continue
		}
		if _, err := netip.ParseAddr(name); err == nil {
			continue
		}
		return name
	}
	return ""
}

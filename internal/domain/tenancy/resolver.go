package tenancy

import (
	"net/http"
	"regexp"
	"strings"
)

// Source says where a tenant identifier came from.
type Source string

const (
	SourceNone      Source = "none"
	SourceExcluded  Source = "excluded"
	SourceHeader    Source = "header"
	SourceSubdomain Source = "subdomain"
)

// Default resolver settings.
var (
	DefaultHeaderName           = "x-tenant-id"
	DefaultExcludedPathPrefixes = []string{"/api/v1/auth", "/api/docs", "/health"}
	DefaultReservedSubdomains   = []string{"www", "api", "app", "admin", "mail", "ftp"}
)

var ipv4Host = regexp.MustCompile(`^[0-9]+(\.[0-9]+){3}$`)

// ResolverConfig holds the tenant resolution policy
type ResolverConfig struct {
	// HeaderName carries an explicit tenant identifier
	HeaderName string
	// ExcludedPathPrefixes never get a tenant
	ExcludedPathPrefixes []string
	// ReservedSubdomains are never tenants; matched case-insensitively
	ReservedSubdomains []string
}

// DefaultResolverConfig returns the production resolution policy
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		HeaderName:           DefaultHeaderName,
		ExcludedPathPrefixes: append([]string(nil), DefaultExcludedPathPrefixes...),
		ReservedSubdomains:   append([]string(nil), DefaultReservedSubdomains...),
	}
}

// Resolution is the outcome of resolving one request
type Resolution struct {
	TenantID string
	Source   Source
}

// Resolver maps a request to a tenant identifier. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	header   string
	excluded []string
	reserved map[string]struct{}
}

// NewResolver builds a resolver. Empty fields fall back to the defaults.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}
	if cfg.ExcludedPathPrefixes == nil {
		cfg.ExcludedPathPrefixes = DefaultExcludedPathPrefixes
	}
	if cfg.ReservedSubdomains == nil {
		cfg.ReservedSubdomains = DefaultReservedSubdomains
	}

	reserved := make(map[string]struct{}, len(cfg.ReservedSubdomains))
	for _, s := range cfg.ReservedSubdomains {
		reserved[strings.ToLower(s)] = struct{}{}
	}

	return &Resolver{
		header:   cfg.HeaderName,
		excluded: append([]string(nil), cfg.ExcludedPathPrefixes...),
		reserved: reserved,
	}
}

// HeaderName returns the header consulted for an explicit tenant
func (r *Resolver) HeaderName() string {
	return r.header
}

// IsExcluded reports whether path skips tenant resolution
func (r *Resolver) IsExcluded(path string) bool {
	for _, prefix := range r.excluded {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsReserved reports whether label can never name a tenant
func (r *Resolver) IsReserved(label string) bool {
	_, ok := r.reserved[strings.ToLower(label)]
	return ok
}

// Resolve applies the resolution rules in order: excluded path, explicit
// header, then subdomain of host. It never fails; an unresolved request has
// an empty TenantID.
func (r *Resolver) Resolve(path string, header http.Header, host string) Resolution {
	if r.IsExcluded(path) {
		return Resolution{Source: SourceExcluded}
	}

	if id := header.Get(r.header); id != "" {
		return Resolution{TenantID: id, Source: SourceHeader}
	}

	if id := r.SubdomainTenant(host); id != "" {
		return Resolution{TenantID: id, Source: SourceSubdomain}
	}

	return Resolution{Source: SourceNone}
}

// ResolveRequest resolves an inbound HTTP request. Go moves the Host header
// into req.Host, so that is what gets inspected.
func (r *Resolver) ResolveRequest(req *http.Request) Resolution {
	return r.Resolve(req.URL.Path, req.Header, req.Host)
}

// SubdomainTenant extracts the tenant label from a Host header value, or
// returns "" when the host cannot carry one. Note that a bare "domain.tld"
// yields "domain".
func (r *Resolver) SubdomainTenant(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if host == "" || host == "localhost" || ipv4Host.MatchString(host) {
		return ""
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}

	candidate := labels[0]
	if candidate == "" || r.IsReserved(candidate) {
		return ""
	}
	return candidate
}

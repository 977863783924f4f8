package tenancy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func headerWith(tenant string) http.Header {
	h := http.Header{}
	if tenant != "" {
		h.Set("x-tenant-id", tenant)
	}
	return h
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())

	tests := []struct {
		name       string
		path       string
		header     string
		host       string
		wantTenant string
		wantSource Source
	}{
		{"health ignores header", "/health", "acme", "acme.fla7a.ma", "", SourceExcluded},
		{"health subpath", "/health/ready", "acme", "", "", SourceExcluded},
		{"auth prefix", "/api/v1/auth/login", "acme", "acme.fla7a.ma", "", SourceExcluded},
		{"docs prefix", "/api/docs/index.html", "", "acme.fla7a.ma", "", SourceExcluded},
		{"plain prefix match", "/healthz", "acme", "", "", SourceExcluded},
		{"header wins over host", "/api/v1/farms", "acme", "other.fla7a.ma", "acme", SourceHeader},
		{"header literal value kept", "/api/v1/farms", " Acme ", "", " Acme ", SourceHeader},
		{"header on reserved host", "/api/v1/farms", "acme", "www.fla7a.ma", "acme", SourceHeader},
		{"subdomain", "/api/v1/farms", "", "acme.fla7a.ma", "acme", SourceSubdomain},
		{"subdomain with port", "/api/v1/farms", "", "acme.fla7a.ma:8443", "acme", SourceSubdomain},
		{"subdomain case preserved", "/api/v1/farms", "", "AcMe.fla7a.ma", "AcMe", SourceSubdomain},
		{"multi level takes first label", "/api/v1/farms", "", "north.acme.fla7a.ma", "north", SourceSubdomain},
		{"reserved www", "/api/v1/farms", "", "www.fla7a.ma", "", SourceNone},
		{"reserved upper case", "/api/v1/farms", "", "API.fla7a.ma", "", SourceNone},
		{"reserved mail", "/api/v1/farms", "", "mail.fla7a.ma", "", SourceNone},
		{"localhost", "/api/v1/farms", "", "localhost", "", SourceNone},
		{"localhost with port", "/api/v1/farms", "", "localhost:8080", "", SourceNone},
		{"ipv4", "/api/v1/farms", "", "192.168.1.10", "", SourceNone},
		{"ipv4 with port", "/api/v1/farms", "", "10.0.0.1:8080", "", SourceNone},
		{"single label", "/api/v1/farms", "", "intranet", "", SourceNone},
		{"bare domain resolves to first label", "/api/v1/farms", "", "fla7a.ma", "fla7a", SourceSubdomain},
		{"empty first label", "/api/v1/farms", "", ".fla7a.ma", "", SourceNone},
		{"no host no header", "/api/v1/farms", "", "", "", SourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.path, headerWith(tt.header), tt.host)
			assert.Equal(t, tt.wantTenant, res.TenantID)
			assert.Equal(t, tt.wantSource, res.Source)
		})
	}
}

func TestResolver_ResolveRequest(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())

	t.Run("uses request host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://acme.fla7a.ma/api/v1/farms", nil)
		res := r.ResolveRequest(req)
		assert.Equal(t, "acme", res.TenantID)
	})

	t.Run("header is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://www.fla7a.ma/api/v1/farms", nil)
		req.Header.Set("X-TENANT-ID", "acme")
		res := r.ResolveRequest(req)
		assert.Equal(t, "acme", res.TenantID)
		assert.Equal(t, SourceHeader, res.Source)
	})

	t.Run("excluded path ignores header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://acme.fla7a.ma/health", nil)
		req.Header.Set("x-tenant-id", "acme")
		res := r.ResolveRequest(req)
		assert.Empty(t, res.TenantID)
	})
}

func TestResolver_CustomConfig(t *testing.T) {
	r := NewResolver(ResolverConfig{
		HeaderName:           "X-Farm",
		ExcludedPathPrefixes: []string{"/public"},
		ReservedSubdomains:   []string{"Static"},
	})

	assert.Equal(t, "X-Farm", r.HeaderName())
	assert.True(t, r.IsReserved("static"))
	assert.False(t, r.IsReserved("www"))
	assert.False(t, r.IsExcluded("/health"))
	assert.True(t, r.IsExcluded("/public/logo.png"))

	h := http.Header{}
	h.Set("x-tenant-id", "ignored")
	res := r.Resolve("/api", h, "www.fla7a.ma")
	assert.Equal(t, "www", res.TenantID)
	assert.Equal(t, SourceSubdomain, res.Source)

	h.Set("X-Farm", "acme")
	assert.Equal(t, "acme", r.Resolve("/api", h, "").TenantID)
}

func TestResolver_EmptyConfigUsesDefaults(t *testing.T) {
	r := NewResolver(ResolverConfig{})

	assert.Equal(t, DefaultHeaderName, r.HeaderName())
	for _, s := range DefaultReservedSubdomains {
		assert.True(t, r.IsReserved(s), s)
	}
	for _, p := range DefaultExcludedPathPrefixes {
		assert.True(t, r.IsExcluded(p), p)
	}
}

func TestDefaultResolverConfig_ReturnsCopies(t *testing.T) {
	cfg := DefaultResolverConfig()
	cfg.ReservedSubdomains[0] = "changed"
	cfg.ExcludedPathPrefixes[0] = "/changed"

	assert.Equal(t, "www", DefaultReservedSubdomains[0])
	assert.Equal(t, "/api/v1/auth", DefaultExcludedPathPrefixes[0])
}

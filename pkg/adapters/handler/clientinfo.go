package handler

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

// clientInfo extracts the viewer's address and location. Forwarding and
// edge headers are client-controlled unless a proxy rewrites them, so they
// are read only when trustProxy is set.
type clientInfo struct {
	trustProxy bool
}

// addr returns the originating client address.
func (c clientInfo) addr(r *http.Request) string {
	if c.trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// location reads the country/city set by the hosting edge (Vercel or
// Cloudflare). It returns nil when no country is known.
func (c clientInfo) location(r *http.Request) *domain.Location {
	if !c.trustProxy {
		return nil
	}
	country := r.Header.Get("X-Vercel-IP-Country")
	if country == "" {
		country = r.Header.Get("CF-IPCountry")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" || country == "XX" {
		return nil
	}
	// Vercel URL-encodes the city name.
	city := r.Header.Get("X-Vercel-IP-City")
	if decoded, err := url.PathUnescape(city); err == nil {
		city = decoded
	}
	return &domain.Location{Country: country, City: strings.TrimSpace(city)}
}

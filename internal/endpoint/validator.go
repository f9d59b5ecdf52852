// Package endpoint decides which remote URLs may be fetched.
//
// Every outbound capabilities request passes through Validator.Validate
// before any network access happens.
package endpoint

import (
	"net"
	"net/netip"
	"net/url"
	"strings"

	"github.com/data-tales/data-sources/internal/domain"
	"github.com/data-tales/data-sources/internal/utils"
)

// DefaultMaxURLLength bounds attacker-supplied URLs.
const DefaultMaxURLLength = 2048

// Rejection reasons.
const (
	ReasonEmpty       = "service URL is empty"
	ReasonTooLong     = "service URL is too long"
	ReasonInvalid     = "service URL is not a valid URL"
	ReasonScheme      = "only https:// URLs are allowed"
	ReasonCredentials = "service URL must not contain credentials"
	ReasonNoHost      = "service URL has no host"
	ReasonLocalHost   = "service URL points to a local or private address"
	ReasonNotAllowed  = "service host is not in the allow-list"
	ReasonInvalidKind = "service kind must be wms or wfs"
)

// blockedRanges complements the net.IP predicates with ranges they do not cover.
var blockedRanges = []string{
	"0.0.0.0/8",     // "this" network
	"100.64.0.0/10", // carrier-grade NAT
	"192.0.0.0/24",  // IETF protocol assignments
	"198.18.0.0/15", // benchmarking
	"240.0.0.0/4",   // reserved
	"64:ff9b::/96",  // NAT64, may embed private v4
}

// Validator enforces the outbound URL policy.
type Validator struct {
	maxLen  int
	allowed map[string]struct{}
	blocked *utils.IPMatcher
}

// NewValidator builds a validator. allowedHosts is the custom-URL allow-list
// (normally the registry hosts); maxLen <= 0 selects DefaultMaxURLLength.
func NewValidator(maxLen int, allowedHosts []string) *Validator {
	if maxLen <= 0 {
		maxLen = DefaultMaxURLLength
	}
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allowed[h] = struct{}{}
		}
	}
	return &Validator{
		maxLen:  maxLen,
		allowed: allowed,
		blocked: utils.NewIPMatcher(blockedRanges),
	}
}

// Validate checks raw against the policy and returns its normalized form.
// custom marks URLs that did not come from the registry; only those are
// matched against the host allow-list.
func (v *Validator) Validate(raw string, custom bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.NewValidationError(ReasonEmpty)
	}
	if len(raw) > v.maxLen {
		return "", domain.NewValidationError(ReasonTooLong)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", domain.NewValidationError(ReasonInvalid)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return "", domain.NewValidationError(ReasonScheme)
	}
	if u.User != nil {
		return "", domain.NewValidationError(ReasonCredentials)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", domain.NewValidationError(ReasonNoHost)
	}
	if v.IsLocalHost(host) {
		return "", domain.NewValidationError(ReasonLocalHost)
	}
	if custom {
		if _, ok := v.allowed[host]; !ok {
			return "", domain.NewValidationError(ReasonNotAllowed)
		}
	}

	return normalize(u, host, u.Port()), nil
}

// IsLocalHost reports whether host names this machine or a non-public address.
// Hostnames other than localhost pass; their resolved addresses are checked
// at dial time with IsDisallowedIP.
func (v *Validator) IsLocalHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	// A zone only exists on link-local scopes.
	if strings.Contains(host, "%") {
		return true
	}
	if a, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		return v.IsDisallowedIP(net.IP(a.AsSlice()))
	}
	return false
}

// IsDisallowedIP reports loopback, private, link-local, unspecified,
// multicast and otherwise reserved addresses.
func (v *Validator) IsDisallowedIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	switch {
	case ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		ip.IsUnspecified():
		return true
	}
	return v.blocked.Contains(ip)
}

// normalize lowercases scheme and host, drops the default port and the fragment.
func normalize(u *url.URL, host, port string) string {
	out := *u
	out.Scheme = "https"
	out.User = nil
	out.Fragment = ""
	out.RawFragment = ""
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" && port != "443" {
		host = host + ":" + port
	}
	out.Host = host
	return out.String()
}

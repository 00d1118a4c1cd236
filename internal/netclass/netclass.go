// Package netclass guesses whether a client is on the local network.
// It gates UI affordances only and is not an access control boundary.
package netclass

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IsLocal reports whether addr (an IP, optionally with port) is loopback,
// private (RFC 1918 / IPv6 ULA) or link-local. Anything unparsable counts
// as local.
func IsLocal(addr string) bool {
	ip, ok := parseIP(addr)
	if !ok {
		return true
	}
	ip = ip.Unmap()
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

// ClientIP resolves the request's client address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if v := strings.TrimSpace(first); v != "" {
			return v
		}
	}
	if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FromRequest classifies r's client.
func FromRequest(r *http.Request) (isLocal bool, clientIP string) {
	clientIP = ClientIP(r)
	return IsLocal(clientIP), clientIP
}

func parseIP(addr string) (netip.Addr, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr(), true
	}
	addr = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
	// Zone ids (fe80::1%eth0) are fine for classification.
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip, true
}

package netclass

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocal(t *testing.T) {
	local := []string{
		"127.0.0.1", "::1", "10.1.2.3", "172.16.0.9", "172.31.255.255", "192.168.1.20",
		"169.254.10.10", "fe80::1", "fd12:3456::1", "::ffff:192.168.0.4", "192.168.1.2:5173",
		"[::1]:8080", "", "not-an-ip",
	}
	for _, a := range local {
		assert.True(t, IsLocal(a), a)
	}
	public := []string{"8.8.8.8", "172.32.0.1", "2001:4860:4860::8888", "203.0.113.9:443"}
	for _, a := range public {
		assert.False(t, IsLocal(a), a)
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/is-local", nil)
	r.RemoteAddr = "8.8.4.4:5555"
	ok, ip := FromRequest(r)
	assert.False(t, ok)
	assert.Equal(t, "8.8.4.4", ip)

	r.Header.Set("X-Forwarded-For", "192.168.0.7, 10.0.0.1")
	ok, ip = FromRequest(r)
	assert.True(t, ok)
	assert.Equal(t, "192.168.0.7", ip)

	r.Header.Del("X-Forwarded-For")
	r.Header.Set("X-Real-IP", "1.1.1.1")
	ok, ip = FromRequest(r)
	assert.False(t, ok)
	assert.Equal(t, "1.1.1.1", ip)
}

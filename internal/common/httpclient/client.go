package httpclient

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// NewSafeClient builds an outbound HTTP client for calls to external
// collaborators. safeurl validates resolved IPs at the dialer level, so
// requests to private, loopback, link-local and metadata addresses are
// rejected even after DNS resolution.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

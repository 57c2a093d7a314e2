package http

import (
	"crypto/tls"
	"net/http"

	"github.com/kardolus/chatgpt-agent/config"
)

const headerUserAgent = "User-Agent"

// New returns the HTTP client used for every model call. It honors
// skip_tls_verify and stamps the configured User-Agent on each request.
func New(cfg config.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Transport: &userAgentTransport{base: transport, userAgent: cfg.UserAgent},
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set(headerUserAgent, t.userAgent)
	}
	return t.base.RoundTrip(req)
}

package httpclient

import (
	"net/http"
	"time"

	"envios-web/internal/core/logger"
	"envios-web/internal/core/metrics"
	"envios-web/internal/core/proxy"

	"go.uber.org/zap"
)

// LoggingRoundTripper logs and meters every outbound request.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
// Query strings are left out of the logged URL because the maps provider keys travel there.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	target := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", target),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		metrics.ObserveUpstream(req.URL.Host, req.Method, 0, duration)
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ObserveUpstream(req.URL.Host, req.Method, resp.StatusCode, duration)
	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
// A zero timeout keeps the transport defaults.
func NewClient(timeout time.Duration, p proxy.Settings) *http.Client {
	transport := http.DefaultTransport
	if u := p.URL(); u != nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = http.ProxyURL(u)
		transport = t
		logger.Get().Info("Outbound proxy enabled", zap.String("proxy", p.HostPort()))
	}

	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: transport,
		},
		Timeout: timeout,
	}
}

package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/sells-group/edgar-service/internal/model"
)

// Transient reports whether an error is safe to retry: upstream
// throttling or server-side failure, or a network-level fault. Not-found
// and malformed-filing errors are never transient.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var ue *model.UpstreamError
	if errors.As(err, &ue) {
		if ue.StatusCode != 0 {
			return TransientStatus(ue.StatusCode)
		}
		// Status zero means the request never completed; fall through to
		// the network checks on the wrapped error.
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Heuristics for wrapped errors the HTTP client reports as strings.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// TransientStatus reports whether an HTTP status code indicates a
// retryable server-side condition.
func TransientStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

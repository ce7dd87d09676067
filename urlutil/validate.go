package urlutil

import (
	"errors"
	"fmt"
	neturl "net/url"
	"strings"
)

// MaxURLLength is the practical limit for a request URL, checked on the
// normalized form.
const MaxURLLength = 2048

// ErrInvalidURL indicates a URL that cannot be used as an HTTP request target.
var ErrInvalidURL = errors.New("invalid url")

// Validate checks that rawURL is usable as an HTTP request target:
//   - it is not empty or only whitespace
//   - it uses http:// or https://
//   - it has a host
//   - it does not exceed MaxURLLength
//
// Validate is meant for the output of Normalize. Normalization itself never
// validates, so a caller sending requests runs both:
//
//	u, err := urlutil.Normalize(raw)
//	if err != nil {
//		return err
//	}
//	if err := urlutil.Validate(u); err != nil {
//		return err
//	}
func Validate(rawURL string) error {
	_, err := parseHTTP(rawURL)
	return err
}

// ValidateHTTPSOnly is Validate plus an https requirement. Plain http is
// still accepted for localhost, 127.0.0.1 and ::1.
func ValidateHTTPSOnly(rawURL string) error {
	parsed, err := parseHTTP(rawURL)
	if err != nil {
		return err
	}
	if parsed.Scheme == "https" || isLocalhost(parsed.Hostname()) {
		return nil
	}
	return fmt.Errorf("%w: must use https:// (http:// only allowed for localhost)", ErrInvalidURL)
}

func parseHTTP(rawURL string) (*neturl.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: cannot be empty", ErrInvalidURL)
	}
	if len(rawURL) > MaxURLLength {
		return nil, fmt.Errorf("%w: exceeds maximum length of %d characters", ErrInvalidURL, MaxURLLength)
	}

	parsed, err := neturl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	case "":
		return nil, fmt.Errorf("%w: must use http:// or https://", ErrInvalidURL)
	default:
		return nil, fmt.Errorf("%w: must use http:// or https://, got: %s", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return parsed, nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
}

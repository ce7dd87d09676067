// Package urlutil normalizes URLs into a canonical ASCII form suitable for
// sending over the wire and for comparing or deduplicating URLs.
//
// # Usage
//
// Use Normalize before handing a user-supplied URL to an HTTP client:
//
//	import "github.com/lorien/weblib/urlutil"
//
//	u, err := urlutil.Normalize("https://ru.wikipedia.org/wiki/Россия")
//	if err != nil {
//		return fmt.Errorf("normalize url: %w", err)
//	}
//	// u == "https://ru.wikipedia.org/wiki/%D0%A0%D0%BE%D1%81%D1%81%D0%B8%D1%8F"
//
// Use Equal and Dedupe to compare URLs by their normalized form:
//
//	same, err := urlutil.Equal("http://test.com/%21", "http://test.com/%21")
//	unique, err := urlutil.Dedupe(crawledLinks)
//
// # Normalization Rules
//
// Normalization is applied per character and does not depend on where in the
// URL a character appears:
//   - Non-ASCII hosts are converted to IDNA ("xn--") labels; ASCII hosts are kept as written
//   - Userinfo and port are never modified
//   - Valid %XX escapes are kept exactly, hex case included
//   - Unreserved characters and ReservedChars stay literal
//   - Everything else, including a stray '%', is encoded as %XX with uppercase hex
//
// Already-encoded data is never decoded or re-encoded, so nested encodings such
// as a URL carried inside a query parameter come out unchanged.
//
// # Errors
//
// Normalize never fails on malformed structure. The only error is a host that
// cannot be IDNA-encoded; it is returned as a *HostEncodingError and matches
// ErrHostEncoding with errors.Is.
package urlutil

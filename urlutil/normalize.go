package urlutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"

	"github.com/lorien/weblib/logutil"
)

// ReservedChars is the set of URL delimiter characters that are never
// percent-encoded when they appear literally in a path, query or fragment.
const ReservedChars = "!*'();:@&=+$,/?#[]"

const upperHex = "0123456789ABCDEF"

// hostProfile is the UTS #46 lookup profile without the STD3 ASCII rules, so
// labels such as "пример_1" are encoded instead of rejected.
var hostProfile = idna.New(idna.MapForLookup(), idna.BidiRule(), idna.StrictDomainName(false))

// hostDelims may not appear in an encoded host.
const hostDelims = "/?#@:[]"

// ErrHostEncoding indicates the host could not be converted to its
// internationalized ASCII form.
var ErrHostEncoding = errors.New("host encoding error")

// HostEncodingError reports a host that failed IDNA encoding.
type HostEncodingError struct {
	Host string
	Err  error
}

func (e *HostEncodingError) Error() string {
	return fmt.Sprintf("%s: %q: %v", ErrHostEncoding, e.Host, e.Err)
}

func (e *HostEncodingError) Unwrap() []error {
	return []error{ErrHostEncoding, e.Err}
}

// IsReserved reports whether c is a member of ReservedChars.
func IsReserved(c byte) bool {
	return strings.IndexByte(ReservedChars, c) >= 0
}

// isUnreserved reports whether c is an RFC 3986 unreserved character.
func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// Normalize converts rawURL into its canonical ASCII form.
//
// A non-ASCII host is converted to IDNA ("xn--") labels; ASCII hosts, ports and
// userinfo are kept exactly as written. The path, query and fragment are
// percent-encoded byte by byte: existing %XX escapes are kept verbatim (including
// their hex case), unreserved and reserved characters stay literal, and every
// other byte (including a '%' that does not start a valid escape) becomes %XX
// with uppercase hex.
//
// Malformed input never fails; components that cannot be identified are left
// empty and passed through. The only error is a host that cannot be IDNA-encoded,
// reported as a *HostEncodingError.
//
// Normalize is idempotent: Normalize(Normalize(u)) == Normalize(u).
//
// Example:
//
//	u, err := urlutil.Normalize("http://почта.рф/path?arg=val")
//	// u == "http://xn--80a1acny.xn--p1ai/path?arg=val"
func Normalize(rawURL string) (string, error) {
	p := split(rawURL)

	host, err := encodeHost(p.host)
	if err != nil {
		logutil.Debug("host encoding failed", "host", p.host, "error", err)
		return "", err
	}
	p.host = host
	p.path = encodeComponent(p.path)
	p.query = encodeComponent(p.query)
	p.fragment = encodeComponent(p.fragment)

	return p.String(), nil
}

// MustNormalize is like Normalize but panics if the host cannot be encoded.
func MustNormalize(rawURL string) string {
	u, err := Normalize(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}

// parts is a URL split on its structural delimiters. Every field holds the
// text between delimiters; the has* flags record which delimiters were present
// so String reproduces them exactly.
type parts struct {
	scheme      string
	hasScheme   bool
	hasAuth     bool
	userinfo    string
	hasUserinfo bool
	host        string
	port        string
	hasPort     bool
	path        string
	query       string
	hasQuery    bool
	fragment    string
	hasFragment bool
}

func split(s string) parts {
	var p parts

	if i := strings.IndexByte(s, '#'); i >= 0 {
		p.fragment, p.hasFragment = s[i+1:], true
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		p.query, p.hasQuery = s[i+1:], true
		s = s[:i]
	}
	if scheme, rest, ok := cutScheme(s); ok {
		p.scheme, p.hasScheme = scheme, true
		s = rest
	}
	if strings.HasPrefix(s, "//") {
		p.hasAuth = true
		s = s[2:]
		authority := s
		if i := strings.IndexByte(s, '/'); i >= 0 {
			authority, s = s[:i], s[i:]
		} else {
			s = ""
		}
		p.splitAuthority(authority)
	}
	p.path = s
	return p
}

// cutScheme splits a leading "scheme:" off s. A scheme must start with a
// letter and contain only letters, digits, '+', '-' and '.'.
func cutScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9', c == '+', c == '-', c == '.':
			if i == 0 {
				return "", s, false
			}
		case c == ':':
			if i == 0 {
				return "", s, false
			}
			return s[:i], s[i+1:], true
		default:
			return "", s, false
		}
	}
	return "", s, false
}

func (p *parts) splitAuthority(authority string) {
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		p.userinfo, p.hasUserinfo = authority[:i], true
		authority = authority[i+1:]
	}
	// IPv6 literals keep their colons inside the brackets.
	hostEnd := 0
	if strings.HasPrefix(authority, "[") {
		if i := strings.IndexByte(authority, ']'); i >= 0 {
			hostEnd = i + 1
		}
	}
	if i := strings.LastIndexByte(authority, ':'); i >= hostEnd {
		p.host = authority[:i]
		p.port, p.hasPort = authority[i+1:], true
		return
	}
	p.host = authority
}

func (p *parts) String() string {
	var b strings.Builder
	if p.hasScheme {
		b.WriteString(p.scheme)
		b.WriteByte(':')
	}
	if p.hasAuth {
		b.WriteString("//")
		if p.hasUserinfo {
			b.WriteString(p.userinfo)
			b.WriteByte('@')
		}
		b.WriteString(p.host)
		if p.hasPort {
			b.WriteByte(':')
			b.WriteString(p.port)
		}
	}
	b.WriteString(p.path)
	if p.hasQuery {
		b.WriteByte('?')
		b.WriteString(p.query)
	}
	if p.hasFragment {
		b.WriteByte('#')
		b.WriteString(p.fragment)
	}
	return b.String()
}

// encodeHost converts a host containing non-ASCII characters to its IDNA form.
// ASCII hosts are returned unchanged.
func encodeHost(host string) (string, error) {
	if isASCII(host) {
		return host, nil
	}
	ascii, err := hostProfile.ToASCII(norm.NFC.String(host))
	if err != nil {
		return "", &HostEncodingError{Host: host, Err: err}
	}
	// Without STD3 rules fullwidth forms such as U+FF0F map to ASCII
	// delimiters, which would change how the result splits.
	if i := strings.IndexAny(ascii, hostDelims); i >= 0 {
		return "", &HostEncodingError{Host: host, Err: fmt.Errorf("encoded host contains delimiter %q", ascii[i])}
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// encodeComponent percent-encodes every byte of s that is neither unreserved,
// reserved, nor part of a valid %XX escape.
func encodeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !keepByte(s, i) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepByte(s, i) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

// keepByte reports whether s[i] may stay literal. A '%' is kept only when it
// starts a valid escape; the two hex digits that follow are unreserved anyway.
func keepByte(s string, i int) bool {
	c := s[i]
	if c == '%' {
		return i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])
	}
	return isUnreserved(c) || IsReserved(c)
}

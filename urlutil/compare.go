package urlutil

import "fmt"

// Equal reports whether a and b normalize to the same URL.
func Equal(a, b string) (bool, error) {
	na, err := Normalize(a)
	if err != nil {
		return false, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return false, err
	}
	return na == nb, nil
}

// Dedupe normalizes every URL and drops repeats, keeping the first occurrence
// of each normalized form in input order.
//
// Example:
//
//	unique, err := urlutil.Dedupe([]string{
//		"http://test.com/Россия",
//		"http://test.com/%D0%A0%D0%BE%D1%81%D1%81%D0%B8%D1%8F",
//	})
//	// unique == []string{"http://test.com/%D0%A0%D0%BE%D1%81%D1%81%D0%B8%D1%8F"}
func Dedupe(urls []string) ([]string, error) {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for i, raw := range urls {
		u, err := Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("url %d: %w", i, err)
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}

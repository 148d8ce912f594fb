package util

import "strings"

// proxy headers consulted for the originating client address, in priority order
var clientIPHeaders = []string{"x-real-ip", "x-forwarded-for", "cf-connecting-ip", "x-client-ip"}

// ClientIP derives the originating client address from proxy headers. get looks
// up a header by name; fallback is the transport-level remote address. An empty
// result is acceptable when nothing is known.
func ClientIP(get func(string) string, fallback string) string {
	for _, header := range clientIPHeaders {
		val := strings.TrimSpace(get(header))
		if val == "" {
			continue
		}
		if header == "x-forwarded-for" {
			// first hop in the comma-separated chain
			if first, _, found := strings.Cut(val, ","); found {
				val = strings.TrimSpace(first)
			}
		}
		if val != "" {
			return val
		}
	}
	return fallback
}

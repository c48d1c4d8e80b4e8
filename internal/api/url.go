package api

import "strings"

// ResolveURL joins base and path with exactly one separating slash.
// An empty base returns path unmodified so it resolves against the current
// origin (a development reverse-proxy).
func ResolveURL(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

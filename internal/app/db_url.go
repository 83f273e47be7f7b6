package app

import (
	"net/url"
	"strings"
)

const binaryParametersKey = "binary_parameters"

// normalizeDBURL turns on lib/pq binary parameters unless the URL sets them.
// They let unnamed statements run without a separate prepare, which keeps the
// pool usable behind pgbouncer in transaction mode.
func normalizeDBURL(raw string, binaryParameters bool) string {
	if !binaryParameters {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		if strings.Contains(trimmed, binaryParametersKey+"=") {
			return raw
		}
		return trimmed + " " + binaryParametersKey + "=yes"
	}

	query := parsed.Query()
	if query.Get(binaryParametersKey) == "" {
		query.Set(binaryParametersKey, "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			if name = strings.Trim(strings.TrimSpace(name), `"'`); name != "" {
				return name
			}
		}
	}
	return ""
}

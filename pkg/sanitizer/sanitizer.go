package sanitizer

import (
	"net/url"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func SanitizeNameOrAddress(input string) string {
	return Pipeline{TrimAndNormalize}.Apply(input)
}

func SanitizeCity(input string) string {
	return Pipeline{TrimAndNormalize, titleWords}.Apply(input)
}

// SanitizePlate normalizes a number plate to single-spaced upper case, so
// "klz  675k" and "KLZ 675K" are the same plate.
func SanitizePlate(input string) string {
	return Pipeline{TrimAndNormalize, strings.ToUpper}.Apply(input)
}

// SanitizeURL returns an https URL with a lowercase host, or "" when input
// has no usable host.
func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	lowered := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lowered, "https://"):
		s = s[len("https://"):]
	case strings.HasPrefix(lowered, "http://"):
		s = s[len("http://"):]
	}

	u, err := url.Parse("https://" + s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// SanitizeSlice applies strategy to every value, dropping empty results and
// duplicates while keeping first-seen order.
func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// Package sanitizer normalizes free-text parking lot input before it is
// validated and stored.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input is dropped rather than reported, so a URL
// that cannot be parsed comes back empty.
//
// Normalization includes:
//   - Names and addresses: trim, collapse runs of whitespace
//   - Cities: as names, with each word capitalized ("nairobi  west" becomes "Nairobi West")
//   - URLs: enforce https, lowercase the host, drop "www." and utm_ tracking parameters
//   - Slices: remove duplicates and empty values after normalization
package sanitizer

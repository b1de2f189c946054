package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// Lookup resolves a variable name
type Lookup func(key string) (string, bool)

// ExpandEnv replaces ${env.KEY} with the value of the environment variable
// KEY; unset variables expand to an empty string.
func ExpandEnv(value string) string {
	return Expand(value, os.LookupEnv)
}

// Expand replaces ${env.KEY} using lookup. An expression without a closing
// brace is kept literally; a key with characters other than letters, digits
// or '_' keeps the prefix literally and scanning resumes right after it.
func Expand(value string, lookup Lookup) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	for {
		idx := strings.Index(value, envPrefix)
		if idx < 0 {
			b.WriteString(value)
			return b.String()
		}
		b.WriteString(value[:idx])
		rest := value[idx+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(value[idx:])
			return b.String()
		}
		key := rest[:end]
		if !isKey(key) {
			b.WriteString(envPrefix)
			value = rest
			continue
		}
		if v, ok := lookup(key); ok {
			b.WriteString(v)
		}
		value = rest[end+1:]
	}
}

func isKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}

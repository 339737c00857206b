package extension

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cast"
)

// Context is the value every extension is constructed with. It carries the
// resolved location of the extension and a read-only view of the host
// settings.
type Context struct {
	RunID          string
	ExtensionsPath string
	ExtensionName  string
	Version        string
	Dir            string
	Settings       map[string]any
	Logger         *log.Logger
}

// Setting returns the string value of a host setting. Keys are matched
// case-insensitively and nested sections are separated by ':' or '.', so
// "Database:Host" and "database.host" address the same value. Missing keys
// return the empty string.
func (c Context) Setting(key string) string {
	v, ok := c.lookup(key)
	if !ok {
		return ""
	}
	return cast.ToString(v)
}

// HasSetting reports whether a setting exists.
func (c Context) HasSetting(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c Context) lookup(key string) (any, bool) {
	if c.Settings == nil {
		return nil, false
	}
	parts := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return r == ':' || r == '.'
	})
	if len(parts) == 0 {
		return nil, false
	}

	var cur any = c.Settings
	for _, part := range parts {
		m, err := cast.ToStringMapE(cur)
		if err != nil {
			return nil, false
		}
		next, ok := lookupFold(m, part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// lookupFold finds key in m ignoring case. Viper lowercases keys, but maps
// built by hand may not.
func lookupFold(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

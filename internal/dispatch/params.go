package dispatch

import (
	"encoding/json"
	"strings"

	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ApplyOverrides sets each key=value pair on the JSON document raw, using
// sjson paths for keys ("db.port", "tags.-1"). Values that are valid JSON
// are set as-is, anything else as a string. An empty raw starts from {}.
func ApplyOverrides(raw string, overrides []string) (string, error) {
	if len(overrides) == 0 {
		return raw, nil
	}
	doc := raw
	if strings.TrimSpace(doc) == "" {
		doc = "{}"
	}
	if !gjson.Valid(doc) {
		return "", outcome.New(outcome.InvalidArguments, "Parameters are not valid JSON.")
	}

	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return "", outcome.New(outcome.InvalidArguments, "Invalid --param %q, expected key=value.", o)
		}

		var err error
		if gjson.Valid(value) {
			doc, err = sjson.SetRaw(doc, key, value)
		} else {
			doc, err = sjson.Set(doc, key, value)
		}
		if err != nil {
			return "", outcome.Wrap(outcome.InvalidArguments, err, "Invalid --param %q", o)
		}
	}
	return doc, nil
}

// ParseParameters decodes the --parameters payload. An empty payload yields
// nil; objects decode to map[string]any, arrays to []any, and numbers to
// json.Number holding the literal text, so large integers survive intact.
func ParseParameters(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, outcome.New(outcome.InvalidArguments, "Parameters are not valid JSON.")
	}
	return decodeValue(gjson.Parse(raw)), nil
}

func decodeValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(strings.TrimSpace(r.Raw))
	case gjson.String:
		return r.Str
	}

	if r.IsArray() {
		items := []any{}
		r.ForEach(func(_, v gjson.Result) bool {
			items = append(items, decodeValue(v))
			return true
		})
		return items
	}
	obj := map[string]any{}
	r.ForEach(func(k, v gjson.Result) bool {
		obj[k.Str] = decodeValue(v)
		return true
	})
	return obj
}

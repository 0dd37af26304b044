package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// textKeys are tried in order when coercing an object to text.
var textKeys = []string{"text", "value", "content", "message", "output", "answer", "prompt", "question"}

// Width 0 keeps every array element on its own line.
var prettyOptions = &pretty.Options{Width: 0, Indent: "  "}

// Text coerces any JSON value to a display string. It never fails: objects with no
// recognizable text field are rendered as indented JSON.
func Text(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.Number:
		return strings.TrimSpace(v.Raw)
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	}

	switch {
	case v.IsArray():
		var parts []string
		v.ForEach(func(_, item gjson.Result) bool {
			if s := strings.TrimSpace(Text(item)); s != "" {
				parts = append(parts, s)
			}
			return true
		})
		return strings.Join(parts, "\n")
	case v.IsObject():
		if s := firstText(v, textKeys); s != "" {
			return s
		}
		if s := strings.TrimSpace(Text(field(v, "parts"))); s != "" {
			return s
		}
		return strings.TrimSpace(string(pretty.PrettyOptions([]byte(v.Raw), prettyOptions)))
	}
	return ""
}

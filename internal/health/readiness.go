package health

import "github.com/tidwall/gjson"

// Readiness is the predicate applied to a health response body. The body
// must be a JSON object and the value at Key must be the string Value.
// Key is a gjson path, so nested keys can be addressed with dots.
type Readiness struct {
	Key   string
	Value string
}

func DefaultReadiness() Readiness {
	return Readiness{
		Key:   "status",
		Value: "ok",
	}
}

// Ready never fails: malformed bodies are simply not ready.
func (r Readiness) Ready(body []byte) bool {
	if !gjson.ValidBytes(body) {
		return false
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return false
	}
	v := doc.Get(r.Key)
	return v.Type == gjson.String && v.Str == r.Value
}

package push

import "encoding/json"

// Payload is the wire format delivered to the service worker. Data may be
// a bare URL string or an object with a url key; receivers accept both.
type Payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Icon  string      `json:"icon,omitempty"`
	Tag   string      `json:"tag,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// DataURL wraps a navigation target in the object form of the data field.
type DataURL struct {
	URL string `json:"url"`
}

func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// DecodeDataURL extracts the navigation target from a data field in
// either wire form: a bare URL string or a {url} object. Reports false
// when the raw value is neither.
func DecodeDataURL(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var obj DataURL
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL, true
	}
	return "", false
}

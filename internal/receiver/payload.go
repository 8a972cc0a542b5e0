package receiver

import (
	"encoding/json"
	"fmt"
)

const (
	defaultIcon = "/icons/icon-192.png"
	defaultURL  = "/"
)

// Payload is the wire format delivered to the receiving agent. Data
// accepts both a bare string and a {url} object; older senders used the
// string form.
type Payload struct {
	Title          string `json:"title"`
	Body           string `json:"body"`
	Icon           string `json:"icon,omitempty"`
	Tag            string `json:"tag,omitempty"`
	Data           Data   `json:"data,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
}

// Data carries the click target.
type Data struct {
	URL string `json:"url"`
}

func (d *Data) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d.URL = s
		return nil
	}

	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("notification data is neither string nor object: %w", err)
	}
	d.URL = obj.URL
	return nil
}

func (d Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		URL string `json:"url"`
	}{URL: d.URL})
}

// ParsePayload decodes a delivered push frame and fills in display
// defaults so a sparse payload still renders something usable.
func ParsePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to decode push payload: %w", err)
	}
	if p.Title == "" {
		p.Title = "Amora"
	}
	if p.Icon == "" {
		p.Icon = defaultIcon
	}
	return p, nil
}

// TargetURL resolves where a click should navigate.
func (p Payload) TargetURL() string {
	if p.Data.URL != "" {
		return p.Data.URL
	}
	return defaultURL
}

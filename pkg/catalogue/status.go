package catalogue

import (
	"fmt"

	"github.com/goccy/go-json"
)

// StatusResponse is the JSON document carried by the StatusResponse packet.
type StatusResponse struct {
	Description string  `json:"description"`
	Favicon     string  `json:"favicon,omitempty"`
	Players     Players `json:"players"`
	Version     Version `json:"version"`
}

type Players struct {
	Max    int32    `json:"max"`
	Online int32    `json:"online"`
	Sample []Sample `json:"sample,omitempty"`
}

type Sample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type Version struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

// ParseStatusResponse decodes the response field of a StatusResponse packet.
func ParseStatusResponse(s string) (*StatusResponse, error) {
	var r StatusResponse
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, fmt.Errorf("catalogue: status response: %w", err)
	}
	return &r, nil
}

// String renders the response as the JSON text sent on the wire.
func (r *StatusResponse) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// Package cloudkitty fetches rating dataframes from the CloudKitty storage
// API.
package cloudkitty

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp tolerates the two wire formats CloudKitty emits: RFC 3339 with
// offset and a bare "2006-01-02T15:04:05" treated as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		t.Time = parsed.UTC()
		return nil
	}

	parsed, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		return fmt.Errorf("unsupported timestamp %q", value)
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}

// Dataframe is one CloudKitty billing record for a time interval, returned
// verbatim by the fetcher.
type Dataframe struct {
	Begin     Timestamp       `json:"begin"`
	End       Timestamp       `json:"end"`
	TenantID  string          `json:"tenant_id,omitempty"`
	Resources []ResourceEntry `json:"resources"`
}

// ResourceEntry is one priced resource usage inside a dataframe. Rating and
// volume arrive as numeric strings.
type ResourceEntry struct {
	Service string       `json:"service"`
	Rating  string       `json:"rating"`
	Volume  string       `json:"volume"`
	Desc    ResourceDesc `json:"desc"`
}

type ResourceDesc struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	FlavorName string `json:"flavor_name,omitempty"`
	State      string `json:"state,omitempty"`
}

type dataframesResponse struct {
	Dataframes []Dataframe `json:"dataframes"`
}

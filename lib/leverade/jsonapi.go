package leverade

import (
	"encoding/json"
	"strconv"
)

// the API speaks JSON:API: resources with string ids, typed
// relationship pointers and a flat `included` section.

type ResourceID struct {
	ID   FlexID `json:"id"`
	Type string `json:"type"`
}

type Relationship struct {
	Data json.RawMessage `json:"data"`
}

// One decodes a to-one relationship pointer.
func (r Relationship) One() (ResourceID, bool) {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return ResourceID{}, false
	}
	var id ResourceID
	err := json.Unmarshal(r.Data, &id)
	if err != nil || id.ID == "" {
		return ResourceID{}, false
	}
	return id, true
}

// Many decodes a to-many relationship pointer.
func (r Relationship) Many() []ResourceID {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	var ids []ResourceID
	err := json.Unmarshal(r.Data, &ids)
	if err != nil {
		return nil
	}
	return ids
}

type Resource struct {
	ID            FlexID                  `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships"`
	Meta          json.RawMessage         `json:"meta"`
}

func (r Resource) Rel(name string) Relationship {
	return r.Relationships[name]
}

type Document struct {
	Data     json.RawMessage `json:"data"`
	Included []Resource      `json:"included"`
	Meta     json.RawMessage `json:"meta"`
}

// Resource decodes the primary data as a single resource.
func (d Document) Resource() (Resource, error) {
	var res Resource
	err := json.Unmarshal(d.Data, &res)
	return res, err
}

func (d Document) IncludedOfType(typ string) []Resource {
	var out []Resource
	for _, inc := range d.Included {
		if inc.Type == typ {
			out = append(out, inc)
		}
	}
	return out
}

// FlexID is a resource id that tolerates the API sometimes emitting
// numbers where JSON:API mandates strings (standings rows, match meta).
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(f))), nil
}

func (f FlexID) String() string {
	return string(f)
}

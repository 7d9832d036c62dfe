package assets

// Wire structures for the Jira Assets registry API.

// Object is a registry object as returned by GET /object/{id} and by AQL
// searches with includeAttributes enabled.
type Object struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	ObjectKey  string            `json:"objectKey"`
	ObjectType ObjectType        `json:"objectType"`
	Attributes []ObjectAttribute `json:"attributes"`
}

// ObjectType identifies the registry object type an object belongs to.
type ObjectType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ObjectAttribute is a single attribute slot on a registry object.
type ObjectAttribute struct {
	ObjectTypeAttributeID string           `json:"objectTypeAttributeId"`
	Values                []AttributeValue `json:"objectAttributeValues"`
}

// AttributeValue is one value of a registry attribute.
type AttributeValue struct {
	Value string `json:"value"`
}

// SearchResponse is one page of an AQL search.
type SearchResponse struct {
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Total      int      `json:"total"`
	Values     []Object `json:"values"`
}

// UpdateRequest is the body of PUT /object/{id}.
type UpdateRequest struct {
	Attributes   []ObjectAttribute `json:"attributes"`
	ObjectTypeID string            `json:"objectTypeId"`
	AvatarUUID   string            `json:"avatarUUID"`
	HasAvatar    bool              `json:"hasAvatar"`
}

// AttributeMap flattens an object's attributes into an id → first-value map.
// Multi-valued attributes keep their first value; the valuation attributes are
// all single-valued.
func (o *Object) AttributeMap() map[string]string {
	m := make(map[string]string, len(o.Attributes))
	for _, attr := range o.Attributes {
		if len(attr.Values) > 0 {
			m[attr.ObjectTypeAttributeID] = attr.Values[0].Value
		}
	}
	return m
}

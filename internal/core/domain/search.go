package domain

// FieldCondition matches a payload field either against a single value
// or against any value in a set. Exactly one of Value/Any should be set.
type FieldCondition struct {
	Key   string   `json:"key"`
	Value string   `json:"value,omitempty"`
	Any   []string `json:"any,omitempty"`
}

// Filter is a structural predicate over point payloads. Must conditions
// all have to hold; Should conditions require at least one match.
type Filter struct {
	Must   []FieldCondition `json:"must,omitempty"`
	Should []FieldCondition `json:"should,omitempty"`
}

// IsEmpty reports whether the filter has no conditions
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Must) == 0 && len(f.Should) == 0)
}

// MatchDocument builds a filter selecting all points of one document
func MatchDocument(documentID string) *Filter {
	return &Filter{
		Must: []FieldCondition{{Key: "documentId", Value: documentID}},
	}
}

// MatchAnyRole builds a filter selecting points whose requiredRole is
// one of the given roles
func MatchAnyRole(roles []string) *Filter {
	return &Filter{
		Must: []FieldCondition{{Key: "requiredRole", Any: roles}},
	}
}

package extractor

import "fmt"

// Registry maps canonical field names to Extractors, keeping registration
// order so records are assembled deterministically.
type Registry struct {
	extractors map[string]*Extractor
	order      []string
}

// NewRegistry compiles every cue into an Extractor.
func NewRegistry(cues []Cue) (*Registry, error) {
	r := &Registry{extractors: make(map[string]*Extractor, len(cues))}
	for _, c := range cues {
		e, err := Compile(c)
		if err != nil {
			return nil, err
		}
		r.Register(e)
	}
	return r, nil
}

// DefaultRegistry compiles DefaultCues. The built-in table always compiles.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCues())
	if err != nil {
		panic(fmt.Sprintf("extractor: default cue table: %v", err))
	}
	return r
}

// Register adds an extractor, replacing any previous one for the same field.
func (r *Registry) Register(e *Extractor) {
	if _, exists := r.extractors[e.Field()]; !exists {
		r.order = append(r.order, e.Field())
	}
	r.extractors[e.Field()] = e
}

// Get returns the extractor for a field, or nil if not found.
func (r *Registry) Get(field string) *Extractor {
	return r.extractors[field]
}

// All returns all registered extractors in registration order.
func (r *Registry) All() []*Extractor {
	out := make([]*Extractor, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, r.extractors[f])
	}
	return out
}

// Fields returns the registered field names in registration order.
func (r *Registry) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered extractors.
func (r *Registry) Len() int {
	return len(r.order)
}

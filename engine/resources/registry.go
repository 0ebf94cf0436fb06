package resources

import "sort"

type entry[T any] struct {
	resource  *T
	residency Residency
}

// registry holds every resource of one kind. Each name maps to a single entry
// carrying its residency, so a name can never be in two states at once.
type registry[T any] struct {
	kind  ResourceType
	items map[string]*entry[T]
}

func newRegistry[T any](kind ResourceType) *registry[T] {
	return &registry[T]{
		kind:  kind,
		items: make(map[string]*entry[T]),
	}
}

func (r *registry[T]) get(name string) (*T, Residency, bool) {
	e, ok := r.items[name]
	if !ok {
		return nil, Unrealized, false
	}
	return e.resource, e.residency, true
}

func (r *registry[T]) has(name string) bool {
	_, ok := r.items[name]
	return ok
}

func (r *registry[T]) insert(name string, res *T) {
	r.items[name] = &entry[T]{resource: res, residency: Unrealized}
}

func (r *registry[T]) setResidency(name string, residency Residency) {
	if e, ok := r.items[name]; ok {
		e.residency = residency
	}
}

func (r *registry[T]) remove(name string) {
	delete(r.items, name)
}

// names returns the names in the given state, sorted for stable logs and tests.
func (r *registry[T]) names(residency Residency) []string {
	var out []string
	for name, e := range r.items {
		if e.residency == residency {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (r *registry[T]) allNames() []string {
	out := make([]string, 0, len(r.items))
	for name := range r.items {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

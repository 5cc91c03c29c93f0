package models

import "sort"

// Macro is a single binding to action entry.
type Macro struct {
	Binding KeyBinding
	Action  Action
}

// Registry maps key bindings to actions. Binding a key that is already
// bound replaces the previous action. Registry is not safe for
// concurrent use.
type Registry struct {
	macros map[KeyBinding]Action
}

func NewRegistry() *Registry {
	return &Registry{macros: make(map[KeyBinding]Action)}
}

// Insert binds action to b, replacing any existing binding.
func (r *Registry) Insert(b KeyBinding, action Action) {
	r.macros[b] = action
}

// Remove unbinds b and reports whether it was bound.
func (r *Registry) Remove(b KeyBinding) bool {
	if _, ok := r.macros[b]; !ok {
		return false
	}
	delete(r.macros, b)
	return true
}

func (r *Registry) Lookup(b KeyBinding) (Action, bool) {
	a, ok := r.macros[b]
	return a, ok
}

func (r *Registry) Len() int {
	return len(r.macros)
}

// ListSorted returns all macros ordered by KeyBinding.Less.
func (r *Registry) ListSorted() []Macro {
	list := make([]Macro, 0, len(r.macros))
	for b, a := range r.macros {
		list = append(list, Macro{Binding: b, Action: a})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Binding.Less(list[j].Binding)
	})
	return list
}

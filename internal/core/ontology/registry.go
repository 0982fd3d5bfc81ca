package ontology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RootClass is the top of the carrier taxonomy. Every classification path
// starts here, so even an unrecognized upload is classifiable.
const RootClass = "DigitalInformationCarrier"

// Class is one node of the taxonomy. Parent is empty only for roots.
type Class struct {
	Name   string `yaml:"name"`
	Parent string `yaml:"parent,omitempty"`
	Label  string `yaml:"label,omitempty"`
}

// Registry is the immutable, startup-loaded class hierarchy. It is never
// mutated after construction and is safe for concurrent readers.
type Registry struct {
	classes map[string]Class
	depth   map[string]int
}

// NewRegistry builds and validates a registry from a class list. Every class
// except roots must reference an existing parent, and parent chains must be
// acyclic.
func NewRegistry(classes []Class) (*Registry, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("ontology registry: no classes")
	}

	byName := make(map[string]Class, len(classes))
	for _, c := range classes {
		if c.Name == "" {
			return nil, fmt.Errorf("ontology registry: class with empty name")
		}
		if _, dup := byName[c.Name]; dup {
			return nil, fmt.Errorf("ontology registry: duplicate class %q", c.Name)
		}
		byName[c.Name] = c
	}
	if _, ok := byName[RootClass]; !ok {
		return nil, fmt.Errorf("ontology registry: missing root class %q", RootClass)
	}

	depth := make(map[string]int, len(byName))
	for name := range byName {
		d, err := chainDepth(byName, name)
		if err != nil {
			return nil, err
		}
		depth[name] = d
	}

	return &Registry{classes: byName, depth: depth}, nil
}

func chainDepth(byName map[string]Class, name string) (int, error) {
	d := 0
	cur := name
	for {
		c := byName[cur]
		if c.Parent == "" {
			return d, nil
		}
		parent, ok := byName[c.Parent]
		if !ok {
			return 0, fmt.Errorf("ontology registry: class %q references unknown parent %q", cur, c.Parent)
		}
		d++
		if d > len(byName) {
			return 0, fmt.Errorf("ontology registry: cycle through class %q", name)
		}
		cur = parent.Name
	}
}

type registryFile struct {
	Classes []Class `yaml:"classes"`
}

// LoadRegistry reads the class hierarchy from a YAML file. Failure here is
// fatal to process startup: every other operation needs the registry.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ontology file: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse ontology file: %w", err)
	}
	return NewRegistry(f.Classes)
}

// Contains reports whether the class is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.classes[name]
	return ok
}

// Label returns the human label for a class, falling back to its name.
func (r *Registry) Label(name string) string {
	c, ok := r.classes[name]
	if !ok || c.Label == "" {
		return name
	}
	return c.Label
}

// Depth returns the number of parent hops from the class to its root.
// Unknown classes report 0.
func (r *Registry) Depth(name string) int {
	return r.depth[name]
}

// Path returns the root-to-leaf ancestor chain for a class by walking parent
// pointers. The chain is contiguous with no gaps.
func (r *Registry) Path(leaf string) ([]string, error) {
	if _, ok := r.classes[leaf]; !ok {
		return nil, fmt.Errorf("ontology registry: unknown class %q", leaf)
	}
	var reversed []string
	cur := leaf
	for cur != "" {
		reversed = append(reversed, cur)
		cur = r.classes[cur].Parent
	}
	path := make([]string, len(reversed))
	for i, name := range reversed {
		path[len(reversed)-1-i] = name
	}
	return path, nil
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.classes)
}

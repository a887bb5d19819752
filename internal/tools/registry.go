package tools

import (
	"errors"
	"fmt"
	"strings"
)

// Registry holds the active tool set. Names are unique and the set is fixed
// once wiring completes; the run loop may only invoke registered names.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: map[string]Tool{},
		order: make([]string, 0, 16),
	}
}

func (r *Registry) Register(tool Tool) error {
	if r == nil {
		return errors.New("tool registry is nil")
	}
	if tool == nil {
		return errors.New("tool is nil")
	}

	name := strings.TrimSpace(tool.Spec().Name)
	if name == "" {
		return errors.New("tool spec name is required")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	if r == nil {
		return nil, false
	}
	tool, ok := r.tools[strings.TrimSpace(name)]
	return tool, ok
}

// ListOrdered returns the tools in registration order.
func (r *Registry) ListOrdered() []Tool {
	if r == nil {
		return nil
	}
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		if tool, ok := r.tools[name]; ok {
			out = append(out, tool)
		}
	}
	return out
}

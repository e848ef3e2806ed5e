// Package tools hosts the registry of side-effecting actions the
// planner can dispatch to. Tool failures are always converted into
// short user-facing strings, never propagated.
package tools

import (
	"fmt"

	"github.com/franklab/frank/internal/logging"
)

// Func is a tool implementation. Args come straight from the planner's
// JSON, so values are loosely typed.
type Func func(args map[string]interface{}) string

// Registry maps tool names to implementations.
type Registry struct {
	tools map[string]Func
	log   *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Func),
		log:   logging.WithField("component", "tools"),
	}
}

// Register installs a tool under the given name, replacing any previous
// registration.
func (r *Registry) Register(name string, fn Func) {
	r.tools[name] = fn
}

// Names returns the registered tool names.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	return out
}

// Execute runs the named tool. Unknown names and panicking tools both
// come back as textual errors.
func (r *Registry) Execute(name string, args map[string]interface{}) (result string) {
	fn, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Outil inconnu: %s", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("tool %s panicked: %v", name, rec)
			result = fmt.Sprintf("Erreur lors de l'exécution de %s: %v", name, rec)
		}
	}()

	if args == nil {
		args = map[string]interface{}{}
	}
	return fn(args)
}

// argString reads a string argument, "" when absent or mistyped.
func argString(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// Package resolver implements the per-parse memoization engine shared by
// all frontends. It guarantees that one source schema node becomes exactly
// one TypeDefinition, no matter how many paths reach it, and that cyclic
// structures terminate.
package resolver

import (
	"fmt"

	"github.com/unigen-dev/uirgen/pkg/schema"
)

// Key carries the identities under which a source node may already be
// known. Tiers are consulted in declaration order: the literal reference
// path first, then the in-memory node identity, then the structural path.
// Zero-valued fields skip their tier.
type Key struct {
	// Ref is the literal reference string from the source document, e.g.
	// "#/components/schemas/Message".
	Ref string
	// Identity is a comparable handle on the node itself, usually a
	// pointer. Nodes reached twice through different paths converge here
	// even without a named reference.
	Identity any
	// Pointer is a structural path such as "Message.content", the fallback
	// for nodes with neither a reference nor a stable identity.
	Pointer string
}

// BuildFunc populates the kind-specific fields of a freshly allocated
// definition. The definition is already registered and appended when build
// runs, so recursive Resolve calls through the same node return its id
// instead of recursing forever. A non-nil error marks the parse failed but
// does not unwind conversion.
type BuildFunc func(def *schema.TypeDefinition) error

// Resolver owns all mutable per-parse state: the three lookup tiers, the
// monotonic id counter, the growing type list, and the collected
// diagnostics. Each parse invocation allocates its own Resolver; instances
// are not safe for concurrent use and are never shared.
type Resolver struct {
	refs       map[string]string
	identities map[any]string
	pointers   map[string]string

	nextID int
	types  []*schema.TypeDefinition

	warnings []string
	errors   []string
}

// New returns an empty resolver for a single parse invocation.
func New() *Resolver {
	return &Resolver{
		refs:       make(map[string]string),
		identities: make(map[any]string),
		pointers:   make(map[string]string),
	}
}

// Resolve returns the canonical reference for the node identified by key,
// allocating and building a new definition on a full miss. Ids are assigned
// sequentially in first-encounter order and are stable across repeated
// parses of the same document within a process.
func (r *Resolver) Resolve(key Key, build BuildFunc) (schema.TypeReference, error) {
	if id, ok := r.lookup(key); ok {
		return schema.TypeReference{TypeID: id}, nil
	}

	def := &schema.TypeDefinition{ID: r.allocID()}
	// Register before building: a cycle re-entering this node must find the
	// placeholder instead of allocating again.
	r.register(key, def.ID)
	r.types = append(r.types, def)

	if err := build(def); err != nil {
		return schema.TypeReference{TypeID: def.ID}, err
	}
	return schema.TypeReference{TypeID: def.ID}, nil
}

// Lookup reports whether any tier already knows the node, without
// allocating.
func (r *Resolver) Lookup(key Key) (string, bool) {
	return r.lookup(key)
}

func (r *Resolver) lookup(key Key) (string, bool) {
	if key.Ref != "" {
		if id, ok := r.refs[key.Ref]; ok {
			return id, true
		}
	}
	if key.Identity != nil {
		if id, ok := r.identities[key.Identity]; ok {
			return id, true
		}
	}
	if key.Pointer != "" {
		if id, ok := r.pointers[key.Pointer]; ok {
			return id, true
		}
	}
	return "", false
}

func (r *Resolver) register(key Key, id string) {
	if key.Ref != "" {
		r.refs[key.Ref] = id
	}
	if key.Identity != nil {
		r.identities[key.Identity] = id
	}
	if key.Pointer != "" {
		r.pointers[key.Pointer] = id
	}
}

func (r *Resolver) allocID() string {
	id := fmt.Sprintf("type_%d", r.nextID)
	r.nextID++
	return id
}

// Placeholder allocates a fresh unknown-primitive definition for a node
// that could not be converted (unresolved reference, unknown kind). The
// caller records the accompanying warning; conversion continues with the
// placeholder standing in.
func (r *Resolver) Placeholder(name string) schema.TypeReference {
	def := &schema.TypeDefinition{
		ID:        r.allocID(),
		Name:      name,
		Kind:      schema.KindPrimitive,
		Primitive: schema.PrimitiveUnknown,
	}
	r.types = append(r.types, def)
	return schema.TypeReference{TypeID: def.ID}
}

// Types returns the accumulated definitions in allocation order. The slice
// is handed to the CanonicalSchema verbatim; callers must not mutate it
// after the parse returns.
func (r *Resolver) Types() []*schema.TypeDefinition {
	return r.types
}

// Warnf records a recoverable node-level diagnostic under a taxonomy code.
func (r *Resolver) Warnf(code, format string, args ...any) {
	r.warnings = append(r.warnings, code+": "+fmt.Sprintf(format, args...))
}

// Errorf records a diagnostic that makes the parse result unusable at the
// scope it occurred. Conversion still proceeds so the partial schema can be
// inspected.
func (r *Resolver) Errorf(code, format string, args ...any) {
	r.errors = append(r.errors, code+": "+fmt.Sprintf(format, args...))
}

// Warnings returns the collected warnings in emission order.
func (r *Resolver) Warnings() []string { return r.warnings }

// Errors returns the collected errors in emission order.
func (r *Resolver) Errors() []string { return r.errors }

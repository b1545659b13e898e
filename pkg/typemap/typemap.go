// Package typemap projects canonical type references onto target-language
// type expressions and import sets. Mapping is a pure function of the
// schema except for the per-run name-disambiguation registry, which exists
// so every reference to one type id renders the same name everywhere.
package typemap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unigen-dev/uirgen/pkg/schema"
	"github.com/unigen-dev/uirgen/pkg/utils"
)

// Supported target languages.
const (
	LangTypeScript = "typescript"
	LangGo         = "go"
	LangPython     = "python"
)

// Context describes the usage site of a reference.
type Context struct {
	// Nullable marks the site optional regardless of the reference's own
	// flag, e.g. a property absent from its object's required list.
	Nullable bool
	// Nested marks a generic/container position, where some targets need
	// grouping (TypeScript unions inside Array<...>).
	Nested bool
}

// Mapped is the projection result: a type expression and the imports it
// needs. Imports are deduplicated and sorted.
type Mapped struct {
	Expression string
	Imports    []string
}

// Mapper binds one schema to one run's naming registries. Allocate one per
// generation run and per target language family of use; disambiguated
// names are language-specific and must not leak across runs.
type Mapper struct {
	index map[string]*schema.TypeDefinition
	names map[string]string            // lang + typeID -> chosen name
	taken map[string]map[string]string // lang -> chosen name -> typeID
}

// New creates a mapper over an immutable schema.
func New(s *schema.CanonicalSchema) *Mapper {
	return &Mapper{
		index: s.TypeIndex(),
		names: make(map[string]string),
		taken: make(map[string]map[string]string),
	}
}

// MapType projects a reference for the target language. An unresolvable
// type id is a broken pipeline invariant and fails immediately; there is
// no warning channel here.
func (m *Mapper) MapType(ref schema.TypeReference, lang string, ctx Context) (Mapped, error) {
	table, ok := languages[lang]
	if !ok {
		return Mapped{}, fmt.Errorf("unsupported target language %q", lang)
	}
	def, ok := m.index[ref.TypeID]
	if !ok {
		return Mapped{}, fmt.Errorf("type reference %q does not resolve to a schema type: referential closure is broken", ref.TypeID)
	}

	expr, imports, err := m.mapDefinition(def, lang, table, ctx)
	if err != nil {
		return Mapped{}, err
	}

	if ref.Nullable || ctx.Nullable {
		var extra []string
		expr, extra = table.optional(expr, ctx.Nested)
		imports = append(imports, extra...)
	}
	return Mapped{Expression: expr, Imports: dedupe(imports)}, nil
}

// TypeName returns the disambiguated nominal name a definition renders as
// in the target language. Generators use it to title the declarations the
// mapper's expressions refer to.
func (m *Mapper) TypeName(typeID, lang string) (string, error) {
	def, ok := m.index[typeID]
	if !ok {
		return "", fmt.Errorf("type reference %q does not resolve to a schema type: referential closure is broken", typeID)
	}
	if _, ok := languages[lang]; !ok {
		return "", fmt.Errorf("unsupported target language %q", lang)
	}
	return m.nameFor(def, lang), nil
}

func (m *Mapper) mapDefinition(def *schema.TypeDefinition, lang string, table *capability, ctx Context) (string, []string, error) {
	switch def.Kind {
	case schema.KindPrimitive:
		expr, ok := table.primitives[def.Primitive]
		if !ok {
			expr = table.anyExpr
		}
		return expr, table.primitiveImports[def.Primitive], nil

	case schema.KindObject, schema.KindEnum:
		// Nominal in every supported target; enums render as the target's
		// closed-variant construct (or constant set) at the definition site.
		return m.nameFor(def, lang), nil, nil

	case schema.KindArray:
		if def.Items == nil {
			return "", nil, fmt.Errorf("array type %q has no items reference", def.ID)
		}
		item, err := m.MapType(*def.Items, lang, Context{Nested: true})
		if err != nil {
			return "", nil, err
		}
		expr, extra := table.list(item.Expression)
		return expr, append(item.Imports, extra...), nil

	case schema.KindUnion:
		if table.nominalUnion {
			// No native sum type: the union maps to its fallback nominal
			// type, one struct with one optional field per variant.
			return m.nameFor(def, lang), nil, nil
		}
		variants := make([]string, 0, len(def.Variants))
		var imports []string
		for _, v := range def.Variants {
			mv, err := m.MapType(v, lang, Context{Nested: true})
			if err != nil {
				return "", nil, err
			}
			variants = append(variants, mv.Expression)
			imports = append(imports, mv.Imports...)
		}
		expr, extra := table.union(variants, ctx.Nested)
		return expr, append(imports, extra...), nil

	default:
		return "", nil, fmt.Errorf("unknown type kind %q on %q", def.Kind, def.ID)
	}
}

// nameFor returns the cached per-(type, language) name, disambiguating
// collisions with a numeric suffix in first-come order.
func (m *Mapper) nameFor(def *schema.TypeDefinition, lang string) string {
	key := lang + "\x00" + def.ID
	if name, ok := m.names[key]; ok {
		return name
	}
	base := utils.ToPascalCaseAdvanced(def.Name)
	if base == "" {
		base = utils.ToPascalCaseAdvanced(def.ID)
	}
	if m.taken[lang] == nil {
		m.taken[lang] = make(map[string]string)
	}
	name := base
	for i := 2; ; i++ {
		owner, exists := m.taken[lang][name]
		if !exists || owner == def.ID {
			break
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
	m.taken[lang][name] = def.ID
	m.names[key] = name
	return name
}

func dedupe(imports []string) []string {
	if len(imports) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		if imp == "" || seen[imp] {
			continue
		}
		seen[imp] = true
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

// capability fixes how one target language renders each canonical
// construct. Rules live here, not at call sites; nothing is improvised per
// call.
type capability struct {
	primitives       map[schema.PrimitiveKind]string
	primitiveImports map[schema.PrimitiveKind][]string
	anyExpr          string
	list             func(item string) (string, []string)
	optional         func(expr string, nested bool) (string, []string)
	// nominalUnion marks targets without a native sum type; their unions
	// fall back to a generated nominal type.
	nominalUnion bool
	union        func(variants []string, nested bool) (string, []string)
}

var languages = map[string]*capability{
	LangTypeScript: {
		primitives: map[schema.PrimitiveKind]string{
			schema.PrimitiveString:  "string",
			schema.PrimitiveInteger: "number",
			schema.PrimitiveNumber:  "number",
			schema.PrimitiveBoolean: "boolean",
			schema.PrimitiveNull:    "null",
			schema.PrimitiveUnknown: "unknown",
		},
		anyExpr: "unknown",
		list: func(item string) (string, []string) {
			if strings.Contains(item, " | ") || strings.Contains(item, " & ") {
				item = "(" + item + ")"
			}
			return "Array<" + item + ">", nil
		},
		optional: func(expr string, nested bool) (string, []string) {
			if expr == "null" {
				return expr, nil
			}
			out := expr + " | null"
			if nested {
				out = "(" + out + ")"
			}
			return out, nil
		},
		union: func(variants []string, nested bool) (string, []string) {
			out := strings.Join(variants, " | ")
			if nested {
				out = "(" + out + ")"
			}
			return out, nil
		},
	},
	LangGo: {
		primitives: map[schema.PrimitiveKind]string{
			schema.PrimitiveString:  "string",
			schema.PrimitiveInteger: "int64",
			schema.PrimitiveNumber:  "float64",
			schema.PrimitiveBoolean: "bool",
			schema.PrimitiveNull:    "interface{}",
			schema.PrimitiveUnknown: "interface{}",
		},
		anyExpr: "interface{}",
		list: func(item string) (string, []string) {
			return "[]" + item, nil
		},
		optional: func(expr string, nested bool) (string, []string) {
			// interface{} and slices are already nil-able.
			if expr == "interface{}" || strings.HasPrefix(expr, "[]") || strings.HasPrefix(expr, "*") {
				return expr, nil
			}
			return "*" + expr, nil
		},
		nominalUnion: true,
	},
	LangPython: {
		primitives: map[schema.PrimitiveKind]string{
			schema.PrimitiveString:  "str",
			schema.PrimitiveInteger: "int",
			schema.PrimitiveNumber:  "float",
			schema.PrimitiveBoolean: "bool",
			schema.PrimitiveNull:    "None",
			schema.PrimitiveUnknown: "Any",
		},
		primitiveImports: map[schema.PrimitiveKind][]string{
			schema.PrimitiveUnknown: {"from typing import Any"},
		},
		anyExpr: "Any",
		list: func(item string) (string, []string) {
			return "List[" + item + "]", []string{"from typing import List"}
		},
		optional: func(expr string, nested bool) (string, []string) {
			if expr == "None" {
				return expr, nil
			}
			return "Optional[" + expr + "]", []string{"from typing import Optional"}
		},
		union: func(variants []string, nested bool) (string, []string) {
			return "Union[" + strings.Join(variants, ", ") + "]", []string{"from typing import Union"}
		},
	},
}

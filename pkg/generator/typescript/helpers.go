package typescript

import (
	"fmt"
	"strings"

	"github.com/unigen-dev/uirgen/pkg/config"
	"github.com/unigen-dev/uirgen/pkg/schema"
	"github.com/unigen-dev/uirgen/pkg/typemap"
)

type modelsView struct {
	Target   config.Target
	Provider string
	Types    []typeView
}

type typeView struct {
	Kind        string
	Name        string
	Description string
	Fields      []fieldView
	Alias       string
}

type fieldView struct {
	Name        string
	Type        string
	Optional    bool
	Description string
}

// buildModelsView walks the schema's nominal types (objects, enums,
// unions) in allocation order and maps every reference they touch.
func buildModelsView(target config.Target, s *schema.CanonicalSchema, mapper *typemap.Mapper) (*modelsView, error) {
	view := &modelsView{Target: target, Provider: s.Metadata.ProviderID}

	for _, def := range s.Types {
		switch def.Kind {
		case schema.KindObject:
			name, err := mapper.TypeName(def.ID, typemap.LangTypeScript)
			if err != nil {
				return nil, err
			}
			tv := typeView{Kind: "object", Name: name, Description: def.Description}
			for _, prop := range def.Properties {
				mapped, err := mapper.MapType(prop.Type, typemap.LangTypeScript, typemap.Context{})
				if err != nil {
					return nil, err
				}
				tv.Fields = append(tv.Fields, fieldView{
					Name:        quotePropertyName(prop.Name),
					Type:        mapped.Expression,
					Optional:    !prop.Required,
					Description: prop.Description,
				})
			}
			view.Types = append(view.Types, tv)

		case schema.KindEnum:
			name, err := mapper.TypeName(def.ID, typemap.LangTypeScript)
			if err != nil {
				return nil, err
			}
			literals := make([]string, 0, len(def.EnumValues))
			for _, v := range def.EnumValues {
				literals = append(literals, tsLiteral(v, def.ValueType))
			}
			view.Types = append(view.Types, typeView{
				Kind:        "enum",
				Name:        name,
				Description: def.Description,
				Alias:       strings.Join(literals, " | "),
			})

		case schema.KindUnion:
			name, err := mapper.TypeName(def.ID, typemap.LangTypeScript)
			if err != nil {
				return nil, err
			}
			variants := make([]string, 0, len(def.Variants))
			for _, v := range def.Variants {
				mapped, err := mapper.MapType(v, typemap.LangTypeScript, typemap.Context{})
				if err != nil {
					return nil, err
				}
				variants = append(variants, mapped.Expression)
			}
			view.Types = append(view.Types, typeView{
				Kind:        "union",
				Name:        name,
				Description: def.Description,
				Alias:       strings.Join(variants, " | "),
			})

		case schema.KindPrimitive, schema.KindArray:
			// rendered inline at usage sites
		}
	}
	return view, nil
}

func tsLiteral(v any, valueType schema.PrimitiveKind) string {
	switch valueType {
	case schema.PrimitiveInteger, schema.PrimitiveNumber, schema.PrimitiveBoolean:
		return fmt.Sprint(v)
	default:
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
}

// quotePropertyName quotes names that are not valid TypeScript identifiers.
func quotePropertyName(name string) string {
	needsQuoting := len(name) == 0
	for i, r := range name {
		valid := r == '_' || r == '$' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !valid {
			needsQuoting = true
			break
		}
	}
	if needsQuoting {
		return `"` + name + `"`
	}
	return name
}

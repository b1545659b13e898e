package golang

import (
	"fmt"
	"strings"

	"github.com/unigen-dev/uirgen/pkg/config"
	"github.com/unigen-dev/uirgen/pkg/schema"
	"github.com/unigen-dev/uirgen/pkg/typemap"
	"github.com/unigen-dev/uirgen/pkg/utils"
)

type modelsView struct {
	Target   config.Target
	Provider string
	Package  string
	Types    []typeView
}

type typeView struct {
	Kind        string
	Name        string
	Description string
	Fields      []fieldView
	BaseType    string
	Values      []enumValueView
}

type fieldView struct {
	Name        string
	Type        string
	Tag         string
	Description string
}

type enumValueView struct {
	Name    string
	Literal string
}

func buildModelsView(target config.Target, s *schema.CanonicalSchema, mapper *typemap.Mapper) (*modelsView, error) {
	pkg := utils.ToSnakeCaseAdvanced(target.PackageName)
	pkg = strings.ReplaceAll(pkg, "_", "")
	if pkg == "" {
		pkg = "models"
	}
	view := &modelsView{Target: target, Provider: s.Metadata.ProviderID, Package: pkg}

	for _, def := range s.Types {
		switch def.Kind {
		case schema.KindObject:
			tv, err := buildStruct(def, mapper)
			if err != nil {
				return nil, err
			}
			view.Types = append(view.Types, tv)

		case schema.KindEnum:
			tv, err := buildEnum(def, mapper)
			if err != nil {
				return nil, err
			}
			view.Types = append(view.Types, tv)

		case schema.KindUnion:
			tv, err := buildUnionStruct(def, mapper)
			if err != nil {
				return nil, err
			}
			view.Types = append(view.Types, tv)

		case schema.KindPrimitive, schema.KindArray:
			// rendered inline at usage sites
		}
	}
	return view, nil
}

func buildStruct(def *schema.TypeDefinition, mapper *typemap.Mapper) (typeView, error) {
	name, err := mapper.TypeName(def.ID, typemap.LangGo)
	if err != nil {
		return typeView{}, err
	}
	tv := typeView{Kind: "object", Name: name, Description: def.Description}
	for _, prop := range def.Properties {
		mapped, err := mapper.MapType(prop.Type, typemap.LangGo, typemap.Context{Nullable: !prop.Required})
		if err != nil {
			return typeView{}, err
		}
		tag := prop.Name
		if !prop.Required {
			tag += ",omitempty"
		}
		tv.Fields = append(tv.Fields, fieldView{
			Name:        fieldName(prop.Name),
			Type:        mapped.Expression,
			Tag:         tag,
			Description: prop.Description,
		})
	}
	return tv, nil
}

func buildEnum(def *schema.TypeDefinition, mapper *typemap.Mapper) (typeView, error) {
	name, err := mapper.TypeName(def.ID, typemap.LangGo)
	if err != nil {
		return typeView{}, err
	}
	tv := typeView{Kind: "enum", Name: name, Description: def.Description, BaseType: "string"}
	switch def.ValueType {
	case schema.PrimitiveInteger:
		tv.BaseType = "int64"
	case schema.PrimitiveNumber:
		tv.BaseType = "float64"
	}
	for _, v := range def.EnumValues {
		literal := fmt.Sprint(v)
		if tv.BaseType == "string" {
			literal = fmt.Sprintf("%q", fmt.Sprint(v))
		}
		tv.Values = append(tv.Values, enumValueView{
			Name:    name + fieldName(fmt.Sprint(v)),
			Literal: literal,
		})
	}
	return tv, nil
}

// buildUnionStruct renders a union as a struct with one optional field per
// variant, since Go has no native sum type.
func buildUnionStruct(def *schema.TypeDefinition, mapper *typemap.Mapper) (typeView, error) {
	name, err := mapper.TypeName(def.ID, typemap.LangGo)
	if err != nil {
		return typeView{}, err
	}
	tv := typeView{Kind: "union", Name: name, Description: def.Description}
	seen := map[string]bool{}
	for i, v := range def.Variants {
		mapped, err := mapper.MapType(v, typemap.LangGo, typemap.Context{Nullable: true})
		if err != nil {
			return typeView{}, err
		}
		fname := fieldName(strings.TrimLeft(mapped.Expression, "*[]"))
		if fname == "" || seen[fname] {
			fname = fmt.Sprintf("Variant%d", i+1)
		}
		seen[fname] = true
		tv.Fields = append(tv.Fields, fieldView{
			Name: fname,
			Type: mapped.Expression,
			Tag:  utils.ToSnakeCaseAdvanced(fname) + ",omitempty",
		})
	}
	return tv, nil
}

// fieldName converts a wire name into an exported Go identifier.
func fieldName(name string) string {
	out := utils.ToPascalCaseAdvanced(name)
	if out == "" {
		return out
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "Value" + out
	}
	return out
}

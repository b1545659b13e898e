package python

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unigen-dev/uirgen/pkg/config"
	"github.com/unigen-dev/uirgen/pkg/schema"
	"github.com/unigen-dev/uirgen/pkg/typemap"
	"github.com/unigen-dev/uirgen/pkg/utils"
)

type modelsView struct {
	Target   config.Target
	Provider string
	Imports  []string
	Types    []typeView
}

type typeView struct {
	Kind        string
	Name        string
	Description string
	Fields      []fieldView
	Values      []enumValueView
	Alias       string
}

type fieldView struct {
	Name        string
	Type        string
	Default     string
	Description string
}

type enumValueView struct {
	Name    string
	Literal string
}

func buildModelsView(target config.Target, s *schema.CanonicalSchema, mapper *typemap.Mapper) (*modelsView, error) {
	view := &modelsView{Target: target, Provider: s.Metadata.ProviderID}
	imports := map[string]bool{"from dataclasses import dataclass": true}

	for _, def := range s.Types {
		switch def.Kind {
		case schema.KindObject:
			tv, used, err := buildDataclass(def, mapper)
			if err != nil {
				return nil, err
			}
			for _, imp := range used {
				imports[imp] = true
			}
			view.Types = append(view.Types, tv)

		case schema.KindEnum:
			tv, err := buildEnum(def, mapper)
			if err != nil {
				return nil, err
			}
			imports["from enum import Enum"] = true
			view.Types = append(view.Types, tv)

		case schema.KindUnion:
			tv, used, err := buildUnionAlias(def, mapper)
			if err != nil {
				return nil, err
			}
			for _, imp := range used {
				imports[imp] = true
			}
			view.Types = append(view.Types, tv)

		case schema.KindPrimitive, schema.KindArray:
			// rendered inline at usage sites
		}
	}

	for imp := range imports {
		view.Imports = append(view.Imports, imp)
	}
	sort.Strings(view.Imports)
	return view, nil
}

// buildDataclass orders required fields before optional ones so the
// dataclass definition stays valid: defaulted parameters may not precede
// non-defaulted ones.
func buildDataclass(def *schema.TypeDefinition, mapper *typemap.Mapper) (typeView, []string, error) {
	name, err := mapper.TypeName(def.ID, typemap.LangPython)
	if err != nil {
		return typeView{}, nil, err
	}
	tv := typeView{Kind: "object", Name: name, Description: def.Description}
	var imports []string
	var optional []fieldView

	for _, prop := range def.Properties {
		mapped, err := mapper.MapType(prop.Type, typemap.LangPython, typemap.Context{Nullable: !prop.Required})
		if err != nil {
			return typeView{}, nil, err
		}
		imports = append(imports, mapped.Imports...)
		fv := fieldView{
			Name:        pyIdentifier(prop.Name),
			Type:        mapped.Expression,
			Description: prop.Description,
		}
		if prop.Required {
			tv.Fields = append(tv.Fields, fv)
		} else {
			fv.Default = "None"
			optional = append(optional, fv)
		}
	}
	tv.Fields = append(tv.Fields, optional...)
	return tv, imports, nil
}

func buildEnum(def *schema.TypeDefinition, mapper *typemap.Mapper) (typeView, error) {
	name, err := mapper.TypeName(def.ID, typemap.LangPython)
	if err != nil {
		return typeView{}, err
	}
	tv := typeView{Kind: "enum", Name: name, Description: def.Description}
	for _, v := range def.EnumValues {
		literal := fmt.Sprint(v)
		if def.ValueType != schema.PrimitiveInteger && def.ValueType != schema.PrimitiveNumber && def.ValueType != schema.PrimitiveBoolean {
			literal = fmt.Sprintf("%q", literal)
		}
		tv.Values = append(tv.Values, enumValueView{
			Name:    memberName(fmt.Sprint(v)),
			Literal: literal,
		})
	}
	return tv, nil
}

func buildUnionAlias(def *schema.TypeDefinition, mapper *typemap.Mapper) (typeView, []string, error) {
	name, err := mapper.TypeName(def.ID, typemap.LangPython)
	if err != nil {
		return typeView{}, nil, err
	}
	variants := make([]string, 0, len(def.Variants))
	var imports []string
	for _, v := range def.Variants {
		mapped, err := mapper.MapType(v, typemap.LangPython, typemap.Context{Nested: true})
		if err != nil {
			return typeView{}, nil, err
		}
		variants = append(variants, mapped.Expression)
		imports = append(imports, mapped.Imports...)
	}
	imports = append(imports, "from typing import Union")
	return typeView{
		Kind:        "union",
		Name:        name,
		Description: def.Description,
		Alias:       "Union[" + strings.Join(variants, ", ") + "]",
	}, imports, nil
}

// pyIdentifier converts a wire name into a snake_case attribute name.
func pyIdentifier(name string) string {
	out := utils.ToSnakeCaseAdvanced(name)
	if out == "" {
		return "field_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "field_" + out
	}
	return out
}

// memberName converts an enum value into an UPPER_SNAKE member name.
func memberName(value string) string {
	out := strings.ToUpper(utils.ToSnakeCaseAdvanced(value))
	if out == "" {
		return "EMPTY"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "VALUE_" + out
	}
	return out
}

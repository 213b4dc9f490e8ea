package jsondom

import "fmt"

// TypeMask is a bitmask of Value kinds a schema node accepts (spec §4.5:
// "a bitmask of allowed primitive types (0 = any)").
type TypeMask int

const (
	TypeNull TypeMask = 1 << iota
	TypeBool
	TypeNumber
	TypeString
	TypeArray
	TypeObject
	TypeAny TypeMask = 0
)

func maskForKind(k Kind) TypeMask {
	switch k {
	case KindNull:
		return TypeNull
	case KindBool:
		return TypeBool
	case KindNumber:
		return TypeNumber
	case KindString:
		return TypeString
	case KindArray:
		return TypeArray
	case KindObject:
		return TypeObject
	default:
		return 0
	}
}

// Schema is a compiled JSON Schema subset node (spec §4.5). Every Value it
// owns (Enum, Const, and their descendants) lives in its own Context,
// obtained via Clone at compile time, so a Schema can outlive the document
// it was compiled from.
type Schema struct {
	Types TypeMask

	Properties map[string]*Schema
	Required   []string
	Items      *Schema

	Enum  []*Value
	Const *Value

	HasMinimum bool
	Minimum    float64
	HasMaximum bool
	Maximum    float64

	HasMinLength bool
	MinLength    int
	HasMaxLength bool
	MaxLength    int

	HasMinItems bool
	MinItems    int
	HasMaxItems bool
	MaxItems    int
}

// typeNameSet maps the names a schema's "type" keyword may use to their
// TypeMask bits. Compile interprets only the well-known keys of a schema
// object; unknown keys are silently ignored (spec §4.5 "Compilation
// ignores unknown keys").
type typeNameSet map[string]TypeMask

var typeNames = typeNameSet{
	"null":    TypeNull,
	"boolean": TypeBool,
	"number":  TypeNumber,
	"integer": TypeNumber,
	"string":  TypeString,
	"array":   TypeArray,
	"object":  TypeObject,
}

// Compile builds a Schema from a schema document (itself a parsed Value,
// typically an object). Compilation deep-clones every enum/const literal
// into the Schema's own context, so the source document can be freed
// independently afterward (spec §4.5, §3 "Lifecycles").
func Compile(doc *Value) (*Schema, error) {
	if doc.Kind() != KindObject {
		return nil, fmt.Errorf("%w: schema document must be an object", ErrSchema)
	}
	return compileNode(doc)
}

func compileNode(doc *Value) (*Schema, error) {
	s := &Schema{}

	if typeVal, ok := doc.Get("type"); ok {
		mask, err := compileTypeField(typeVal)
		if err != nil {
			return nil, err
		}
		s.Types = mask
	}

	if propsVal, ok := doc.Get("properties"); ok {
		if propsVal.Kind() != KindObject {
			return nil, fmt.Errorf("%w: schema \"properties\" must be an object", ErrSchema)
		}
		s.Properties = make(map[string]*Schema, propsVal.Len())
		for _, p := range propsVal.Pairs() {
			child, err := compileNode(p.Val)
			if err != nil {
				return nil, err
			}
			s.Properties[p.Key] = child
		}
	}

	if reqVal, ok := doc.Get("required"); ok {
		if reqVal.Kind() != KindArray {
			return nil, fmt.Errorf("%w: schema \"required\" must be an array", ErrSchema)
		}
		for _, e := range reqVal.Elements() {
			name, err := e.AsString()
			if err != nil {
				return nil, fmt.Errorf("%w: schema \"required\" entries must be strings", ErrSchema)
			}
			s.Required = append(s.Required, name)
		}
	}

	if itemsVal, ok := doc.Get("items"); ok {
		child, err := compileNode(itemsVal)
		if err != nil {
			return nil, err
		}
		s.Items = child
	}

	if enumVal, ok := doc.Get("enum"); ok {
		if enumVal.Kind() != KindArray {
			return nil, fmt.Errorf("%w: schema \"enum\" must be an array", ErrSchema)
		}
		for _, e := range enumVal.Elements() {
			s.Enum = append(s.Enum, Clone(e))
		}
	}

	if constVal, ok := doc.Get("const"); ok {
		s.Const = Clone(constVal)
	}

	if minVal, ok := doc.Get("minimum"); ok {
		f, err := minVal.AsFloat64()
		if err != nil {
			return nil, fmt.Errorf("%w: schema \"minimum\" must be a number", ErrSchema)
		}
		s.HasMinimum, s.Minimum = true, f
	}
	if maxVal, ok := doc.Get("maximum"); ok {
		f, err := maxVal.AsFloat64()
		if err != nil {
			return nil, fmt.Errorf("%w: schema \"maximum\" must be a number", ErrSchema)
		}
		s.HasMaximum, s.Maximum = true, f
	}

	if v, ok := doc.Get("minLength"); ok {
		n, err := intField(v, "minLength")
		if err != nil {
			return nil, err
		}
		s.HasMinLength, s.MinLength = true, n
	}
	if v, ok := doc.Get("maxLength"); ok {
		n, err := intField(v, "maxLength")
		if err != nil {
			return nil, err
		}
		s.HasMaxLength, s.MaxLength = true, n
	}

	if v, ok := doc.Get("minItems"); ok {
		n, err := intField(v, "minItems")
		if err != nil {
			return nil, err
		}
		s.HasMinItems, s.MinItems = true, n
	}
	if v, ok := doc.Get("maxItems"); ok {
		n, err := intField(v, "maxItems")
		if err != nil {
			return nil, err
		}
		s.HasMaxItems, s.MaxItems = true, n
	}

	return s, nil
}

func intField(v *Value, name string) (int, error) {
	i, err := v.AsInt64()
	if err != nil {
		return 0, fmt.Errorf("%w: schema %q must be an integer", ErrSchema, name)
	}
	return int(i), nil
}

func compileTypeField(v *Value) (TypeMask, error) {
	switch v.Kind() {
	case KindString:
		name, _ := v.AsString()
		mask, ok := typeNames[name]
		if !ok {
			return 0, fmt.Errorf("%w: unknown schema type %q", ErrSchema, name)
		}
		return mask, nil
	case KindArray:
		var mask TypeMask
		for _, e := range v.Elements() {
			name, err := e.AsString()
			if err != nil {
				return 0, fmt.Errorf("%w: schema \"type\" array entries must be strings", ErrSchema)
			}
			m, ok := typeNames[name]
			if !ok {
				return 0, fmt.Errorf("%w: unknown schema type %q", ErrSchema, name)
			}
			mask |= m
		}
		return mask, nil
	default:
		return 0, fmt.Errorf("%w: schema \"type\" must be a string or array of strings", ErrSchema)
	}
}

// Validate checks inst against s, recursively (spec §4.5 "Validation
// proceeds recursively"). It returns the first failure found; validation
// does not accumulate a full error list.
func (s *Schema) Validate(inst *Value) error {
	if s.Const != nil {
		if Equal(inst, s.Const) {
			return nil
		}
		return fmt.Errorf("%w: value does not match const", ErrSchema)
	}

	if len(s.Enum) > 0 {
		matched := false
		for _, e := range s.Enum {
			if Equal(inst, e) {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("%w: value does not match any enum member", ErrSchema)
		}
	}

	if s.Types != TypeAny && s.Types&maskForKind(inst.Kind()) == 0 {
		return fmt.Errorf("%w: value has kind %s, not permitted by schema", ErrSchema, inst.Kind())
	}

	switch inst.Kind() {
	case KindNumber:
		return s.validateNumber(inst)
	case KindString:
		return s.validateString(inst)
	case KindArray:
		return s.validateArray(inst)
	case KindObject:
		return s.validateObject(inst)
	default:
		return nil
	}
}

func (s *Schema) validateNumber(inst *Value) error {
	f, err := inst.AsFloat64()
	if err != nil {
		return fmt.Errorf("%w: number has no comparable double view", ErrSchema)
	}
	if s.HasMinimum && f < s.Minimum {
		return fmt.Errorf("%w: number %v below minimum %v", ErrSchema, f, s.Minimum)
	}
	if s.HasMaximum && f > s.Maximum {
		return fmt.Errorf("%w: number %v above maximum %v", ErrSchema, f, s.Maximum)
	}
	return nil
}

func (s *Schema) validateString(inst *Value) error {
	str, _ := inst.AsString()
	n := len(str)
	if s.HasMinLength && n < s.MinLength {
		return fmt.Errorf("%w: string length %d below minLength %d", ErrSchema, n, s.MinLength)
	}
	if s.HasMaxLength && n > s.MaxLength {
		return fmt.Errorf("%w: string length %d above maxLength %d", ErrSchema, n, s.MaxLength)
	}
	return nil
}

func (s *Schema) validateArray(inst *Value) error {
	elems := inst.Elements()
	if s.HasMinItems && len(elems) < s.MinItems {
		return fmt.Errorf("%w: array has %d items, below minItems %d", ErrSchema, len(elems), s.MinItems)
	}
	if s.HasMaxItems && len(elems) > s.MaxItems {
		return fmt.Errorf("%w: array has %d items, above maxItems %d", ErrSchema, len(elems), s.MaxItems)
	}
	if s.Items != nil {
		for i, e := range elems {
			if err := s.Items.Validate(e); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
		}
	}
	return nil
}

func (s *Schema) validateObject(inst *Value) error {
	for _, req := range s.Required {
		if _, ok := inst.Get(req); !ok {
			return fmt.Errorf("%w: missing required property %q", ErrSchema, req)
		}
	}
	for _, p := range inst.Pairs() {
		child, ok := s.Properties[p.Key]
		if !ok {
			continue // properties not named in the schema are ignored
		}
		if err := child.Validate(p.Val); err != nil {
			return fmt.Errorf("property %q: %w", p.Key, err)
		}
	}
	return nil
}

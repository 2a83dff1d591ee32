package foamdict

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var valueType = reflect.TypeOf(Value{})

// Unmarshal parses a headerless dictionary body and stores the result in
// the struct pointed to by v.
//
// Struct tags map dictionary keys to fields:
//   - `foam:"name"` - maps key "name" to this field
//   - `foam:"name,required"` - fails when the key is missing
//   - `foam:"-"` - ignores this field
//
// Without a tag the field name with a lower-case first letter is used, so
// EndTime reads endTime. Fields of type Value receive the parsed value as
// is.
//
// Example:
//
//	type Control struct {
//	    Application string  `foam:"application"`
//	    EndTime     float64 `foam:"endTime"`
//	    WriteFormat string  `foam:"writeFormat"`
//	    RunTimeModifiable bool `foam:"runTimeModifiable"`
//	}
func Unmarshal(data []byte, v any) error {
	doc, err := ParseString(string(data))
	if err != nil {
		return err
	}
	return UnmarshalDocument(doc, v)
}

// UnmarshalDocument unmarshals the body of a parsed Document into v.
func UnmarshalDocument(doc *Document, v any) error {
	body, err := doc.Dict()
	if err != nil {
		return err
	}
	return UnmarshalDict(body, v)
}

// UnmarshalDict unmarshals a dictionary into v.
func UnmarshalDict(d *Dict, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("unmarshal target must be a non-nil pointer")
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal target must be a pointer to struct")
	}
	return unmarshalStruct(d, elem)
}

func unmarshalStruct(d *Dict, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		tag := field.Tag.Get("foam")
		if tag == "-" {
			continue
		}
		name, opts := parseTag(tag)
		if name == "" {
			name = lowerFirst(field.Name)
		}

		value, ok := d.Get(name)
		if !ok {
			if hasOption(opts, "required") {
				return fmt.Errorf("required key %s not found", name)
			}
			continue
		}
		if err := setField(fieldValue, value.Resolved()); err != nil {
			return fmt.Errorf("key %s: %w", name, err)
		}
	}
	return nil
}

// setField stores value into field, converting between dictionary kinds and
// Go kinds.
func setField(field reflect.Value, value Value) error {
	if field.Type() == valueType {
		field.Set(reflect.ValueOf(value))
		return nil
	}
	// a uniform field reads as its payload
	if value.Kind == KindField && value.Field.Kind == Uniform {
		value = value.Field.Payload
	}

	switch field.Kind() {
	case reflect.String:
		return setString(field, value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(field, value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUint(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloat(field, value)
	case reflect.Bool:
		return setBool(field, value)
	case reflect.Slice:
		return setSlice(field, value)
	case reflect.Array:
		return setArray(field, value)
	case reflect.Map:
		return setMap(field, value)
	case reflect.Struct:
		if value.Kind != KindDict {
			return fmt.Errorf("cannot convert %s to struct", value.Kind)
		}
		return unmarshalStruct(value.Dict, field)
	case reflect.Ptr:
		ptr := reflect.New(field.Type().Elem())
		if err := setField(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	case reflect.Interface:
		field.Set(reflect.ValueOf(value))
		return nil
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
}

func setString(field reflect.Value, value Value) error {
	if s, ok := value.Text(); ok {
		field.SetString(s)
		return nil
	}
	field.SetString(value.String())
	return nil
}

func setInt(field reflect.Value, value Value) error {
	switch value.Kind {
	case KindInt:
		field.SetInt(value.Int)
	case KindFloat:
		if value.Float != float64(int64(value.Float)) {
			return fmt.Errorf("cannot convert %v to int without loss", value.Float)
		}
		field.SetInt(int64(value.Float))
	case KindWord, KindString:
		i, err := strconv.ParseInt(value.Str, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse as int: %w", err)
		}
		field.SetInt(i)
	default:
		return fmt.Errorf("cannot convert %s to int", value.Kind)
	}
	return nil
}

func setUint(field reflect.Value, value Value) error {
	if value.Kind == KindInt && value.Int < 0 {
		return fmt.Errorf("cannot convert %d to uint", value.Int)
	}
	switch value.Kind {
	case KindInt:
		field.SetUint(uint64(value.Int))
	case KindWord, KindString:
		u, err := strconv.ParseUint(value.Str, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse as uint: %w", err)
		}
		field.SetUint(u)
	default:
		return fmt.Errorf("cannot convert %s to uint", value.Kind)
	}
	return nil
}

func setFloat(field reflect.Value, value Value) error {
	if n, ok := value.Number(); ok {
		field.SetFloat(n)
		return nil
	}
	if value.Kind == KindWord || value.Kind == KindString {
		f, err := strconv.ParseFloat(value.Str, 64)
		if err != nil {
			return fmt.Errorf("cannot parse as float: %w", err)
		}
		field.SetFloat(f)
		return nil
	}
	return fmt.Errorf("cannot convert %s to float", value.Kind)
}

func setBool(field reflect.Value, value Value) error {
	switch value.Kind {
	case KindInt:
		field.SetBool(value.Int != 0)
		return nil
	case KindWord, KindString:
		b, err := parseSwitch(value.Str)
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil
	}
	return fmt.Errorf("cannot convert %s to bool", value.Kind)
}

// elements returns the members of any list-shaped value. Vectors and
// tensors yield their components.
func elements(value Value) ([]Value, error) {
	switch value.Kind {
	case KindList, KindTuple:
		return value.Items, nil
	case KindVector, KindSymmTensor, KindTensor, KindDimension:
		items := make([]Value, len(value.Nums))
		for i, n := range value.Nums {
			items[i] = Float(n)
		}
		return items, nil
	case KindField:
		return elements(value.Field.Payload)
	}
	return nil, fmt.Errorf("cannot convert %s to a sequence", value.Kind)
}

func setSlice(field reflect.Value, value Value) error {
	items, err := elements(value)
	if err != nil {
		return err
	}
	slice := reflect.MakeSlice(field.Type(), len(items), len(items))
	for i, item := range items {
		if err := setField(slice.Index(i), item); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	field.Set(slice)
	return nil
}

func setArray(field reflect.Value, value Value) error {
	items, err := elements(value)
	if err != nil {
		return err
	}
	if len(items) != field.Len() {
		return fmt.Errorf("expected %d elements, got %d", field.Len(), len(items))
	}
	for i, item := range items {
		if err := setField(field.Index(i), item); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}
	return nil
}

func setMap(field reflect.Value, value Value) error {
	if value.Kind != KindDict {
		return fmt.Errorf("cannot convert %s to map", value.Kind)
	}
	if field.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("map key must be a string")
	}
	m := reflect.MakeMap(field.Type())
	for _, key := range value.Dict.Keys() {
		val, _ := value.Dict.Get(key)
		elem := reflect.New(field.Type().Elem()).Elem()
		if err := setField(elem, val.Resolved()); err != nil {
			return fmt.Errorf("key %s: %w", key, err)
		}
		m.SetMapIndex(reflect.ValueOf(key).Convert(field.Type().Key()), elem)
	}
	field.Set(m)
	return nil
}

func parseTag(tag string) (string, []string) {
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func hasOption(opts []string, option string) bool {
	for _, opt := range opts {
		if opt == option {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// parseSwitch accepts the spellings OpenFOAM allows for a switch.
func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "y", "t":
		return true, nil
	case "false", "no", "off", "n", "f", "none":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch value: %s", s)
}

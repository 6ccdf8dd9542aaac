// Package report holds the ordered environment report produced by envinfo.
// A Report is populated through a Builder and is read-only afterwards.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateField is returned when a field is set twice
	ErrDuplicateField = errors.New("field already set")
	// ErrBuilt is returned when a builder is used after Build
	ErrBuilt = errors.New("report already built")
)

// Value is a report value: either a string or a boolean
type Value struct {
	str    string
	b      bool
	isBool bool
}

// String returns a string value
func String(s string) Value { return Value{str: s} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{b: b, isBool: true} }

// IsBool reports whether v holds a boolean
func (v Value) IsBool() bool { return v.isBool }

// AsBool returns the boolean held by v, false for string values
func (v Value) AsBool() bool { return v.isBool && v.b }

// String renders the value as it appears in text output
func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.b)
	}
	return v.str
}

// Interface returns the value as a plain Go string or bool
func (v Value) Interface() interface{} {
	if v.isBool {
		return v.b
	}
	return v.str
}

// MarshalJSON encodes booleans as JSON booleans and everything else as strings
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts a JSON string or boolean
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case bool:
		*v = Bool(val)
	case string:
		*v = String(val)
	default:
		return fmt.Errorf("unsupported report value %s", string(data))
	}
	return nil
}

// Field is a single key/value pair of a report
type Field struct {
	Key   string
	Value Value
}

// Report is an ordered mapping from field name to value
type Report struct {
	fields *orderedmap.OrderedMap[string, Value]
}

func newReport() *Report {
	return &Report{fields: orderedmap.New[string, Value]()}
}

// Len returns the number of fields
func (r *Report) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Get returns the value of a field
func (r *Report) Get(key string) (Value, bool) {
	if r == nil || r.fields == nil {
		return Value{}, false
	}
	return r.fields.Get(key)
}

// Has reports whether the field is present
func (r *Report) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the field names in insertion order
func (r *Report) Keys() []string {
	keys := make([]string, 0, r.Len())
	for _, f := range r.Fields() {
		keys = append(keys, f.Key)
	}
	return keys
}

// Fields returns a copy of the fields in insertion order
func (r *Report) Fields() []Field {
	if r.Len() == 0 {
		return nil
	}
	fields := make([]Field, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		fields = append(fields, Field{Key: pair.Key, Value: pair.Value})
	}
	return fields
}

// Lines renders the report as "key: value" lines
func (r *Report) Lines() []string {
	lines := make([]string, 0, r.Len())
	for _, f := range r.Fields() {
		lines = append(lines, f.Key+": "+f.Value.String())
	}
	return lines
}

// Map returns the report as a plain map, losing order
func (r *Report) Map() map[string]interface{} {
	m := make(map[string]interface{}, r.Len())
	for _, f := range r.Fields() {
		m[f.Key] = f.Value.Interface()
	}
	return m
}

// MarshalJSON encodes the report as a JSON object in field order
func (r *Report) MarshalJSON() ([]byte, error) {
	if r.Len() == 0 {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping its key order
func (r *Report) UnmarshalJSON(data []byte) error {
	fields := orderedmap.New[string, Value]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decoding report: %w", err)
	}
	r.fields = fields
	return nil
}

// MarshalYAML encodes the report as an ordered YAML mapping
func (r *Report) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.Fields() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value.String()}
		if f.Value.IsBool() {
			val.Tag = "!!bool"
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// ToCtyValue converts the report to a cty object for HCL and template use
func (r *Report) ToCtyValue() cty.Value {
	if r.Len() == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, r.Len())
	for _, f := range r.Fields() {
		if f.Value.IsBool() {
			attrs[f.Key] = cty.BoolVal(f.Value.AsBool())
		} else {
			attrs[f.Key] = cty.StringVal(f.Value.String())
		}
	}
	return cty.ObjectVal(attrs)
}

// Builder accumulates fields for a Report. A field can be set only once.
type Builder struct {
	r *Report
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{r: newReport()}
}

// Set adds a field. It never overwrites an existing one.
func (b *Builder) Set(key string, v Value) error {
	if b.r == nil {
		return ErrBuilt
	}
	if key == "" {
		return errors.New("field name is empty")
	}
	if b.r.Has(key) {
		return fmt.Errorf("%s: %w", key, ErrDuplicateField)
	}
	b.r.fields.Set(key, v)
	return nil
}

// SetString is shorthand for Set(key, String(s))
func (b *Builder) SetString(key, s string) error {
	return b.Set(key, String(s))
}

// SetBool is shorthand for Set(key, Bool(v))
func (b *Builder) SetBool(key string, v bool) error {
	return b.Set(key, Bool(v))
}

// Build returns the report. The builder cannot be used afterwards.
func (b *Builder) Build() *Report {
	r := b.r
	if r == nil {
		r = newReport()
	}
	b.r = nil
	return r
}

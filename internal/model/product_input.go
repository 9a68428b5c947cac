package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Inbound payload keys. The legacy numeric id travels as "id".
const (
	FieldLegacyID    = "id"
	FieldName        = "name"
	FieldPrice       = "price"
	FieldImage       = "image"
	FieldImg         = "img"
	FieldCategory    = "category"
	FieldCat         = "cat"
	FieldDescription = "description"
	FieldDesc        = "desc"
	FieldUses        = "uses"
	FieldFeatured    = "featured"
	FieldTag         = "tag"
	FieldStock       = "stock"
)

// ProductInput is a create or partial-update payload. A field is "touched"
// when its key appeared in the payload, even with a null value; untouched
// fields are left alone on update.
type ProductInput struct {
	LegacyID    *int64
	Name        *string
	Price       *float64
	Image       *string
	Img         *string
	Category    *string
	Cat         *string
	Description *string
	Desc        *string
	Uses        []string
	Featured    *bool
	Tag         *string
	Stock       *int

	touched map[string]bool
}

// Touched reports whether field was supplied.
func (in *ProductInput) Touched(field string) bool {
	return in.touched[field]
}

// Touch marks field as supplied.
func (in *ProductInput) Touch(field string) {
	if in.touched == nil {
		in.touched = make(map[string]bool)
	}
	in.touched[field] = true
}

// Empty reports whether no known field was supplied.
func (in *ProductInput) Empty() bool {
	return len(in.touched) == 0
}

// UnmarshalJSON decodes a payload, accepting numeric strings for numeric
// fields. Unknown keys are ignored.
func (in *ProductInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewValidationError(ErrCodeInvalidJSON, "invalid request body")
	}

	*in = ProductInput{}

	for key, value := range raw {
		var err error
		switch key {
		case FieldLegacyID:
			in.LegacyID, err = decodeInt64(key, value)
		case FieldName:
			in.Name, err = decodeString(key, value)
		case FieldPrice:
			in.Price, err = decodeFloat(key, value)
		case FieldImage:
			in.Image, err = decodeString(key, value)
		case FieldImg:
			in.Img, err = decodeString(key, value)
		case FieldCategory:
			in.Category, err = decodeString(key, value)
		case FieldCat:
			in.Cat, err = decodeString(key, value)
		case FieldDescription:
			in.Description, err = decodeString(key, value)
		case FieldDesc:
			in.Desc, err = decodeString(key, value)
		case FieldUses:
			in.Uses, err = decodeStrings(key, value)
		case FieldFeatured:
			in.Featured, err = decodeBool(key, value)
		case FieldTag:
			in.Tag, err = decodeString(key, value)
		case FieldStock:
			in.Stock, err = decodeStock(key, value)
		default:
			continue
		}
		if err != nil {
			return err
		}
		in.Touch(key)
	}

	return nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func invalidField(key, want string) error {
	return NewValidationError(ErrCodeInvalidField, fmt.Sprintf("%s must be %s", key, want))
}

func decodeString(key string, value json.RawMessage) (*string, error) {
	if isNull(value) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, invalidField(key, "a string")
	}
	return &s, nil
}

func decodeStrings(key string, value json.RawMessage) ([]string, error) {
	if isNull(value) {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal(value, &list); err != nil {
		return nil, invalidField(key, "an array of strings")
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func decodeBool(key string, value json.RawMessage) (*bool, error) {
	if isNull(value) {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, invalidField(key, "a boolean")
	}
	switch t := v.(type) {
	case bool:
		return &t, nil
	case string:
		b, err := cast.ToBoolE(strings.TrimSpace(t))
		if err != nil {
			return nil, invalidField(key, "a boolean")
		}
		return &b, nil
	default:
		return nil, invalidField(key, "a boolean")
	}
}

// numericValue decodes a JSON number or numeric string. Booleans are rejected
// even though cast would coerce them.
func numericValue(key, want string, value json.RawMessage) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, invalidField(key, want)
	}
	switch t := v.(type) {
	case json.Number:
		return t.String(), nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, invalidField(key, want)
		}
		return t, nil
	default:
		return nil, invalidField(key, want)
	}
}

func decodeFloat(key string, value json.RawMessage) (*float64, error) {
	if isNull(value) {
		return nil, nil
	}
	v, err := numericValue(key, "a number", value)
	if err != nil {
		return nil, err
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, invalidField(key, "a number")
	}
	return &f, nil
}

func decodeInt64(key string, value json.RawMessage) (*int64, error) {
	if isNull(value) {
		return nil, nil
	}
	v, err := numericValue(key, "an integer", value)
	if err != nil {
		return nil, err
	}
	n, err := ParseDecimalInt(v.(string))
	if err != nil {
		return nil, invalidField(key, "an integer")
	}
	return &n, nil
}

// decodeStock reads the stock count, which is stored as a 32-bit integer.
func decodeStock(key string, value json.RawMessage) (*int, error) {
	n, err := decodeInt64(key, value)
	if err != nil || n == nil {
		return nil, err
	}
	if *n < math.MinInt32 || *n > math.MaxInt32 {
		return nil, invalidField(key, fmt.Sprintf("an integer between %d and %d", math.MinInt32, math.MaxInt32))
	}
	v := int(*n)
	return &v, nil
}

// ParseDecimalInt reads a base-10 integer. Leading zeros do not switch the
// base, and integral float forms such as "10.0" or "1e3" are accepted.
func ParseDecimalInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if strings.ContainsAny(s, "xX") {
		return 0, fmt.Errorf("%q is not a base-10 integer", s)
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%q is not a base-10 integer", s)
	}
	return int64(f), nil
}

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/kevin07696/payout-validation/internal/domain"
)

var requestTypes = map[domain.ValidationMode]reflect.Type{
	domain.ModeCreation:   reflect.TypeOf(creationRequest{}),
	domain.ModeProcessing: reflect.TypeOf(processingRequest{}),
	domain.ModeCompliance: reflect.TypeOf(complianceRequest{}),
}

// describeDecodeError maps a decode failure to a batch field path and a
// message that does not echo parser internals. The body is re-walked against
// the request type so values rejected by custom unmarshalers (decimals,
// timestamps) still get a path.
func describeDecodeError(mode domain.ValidationMode, body []byte, err error) (field, message string) {
	path, found := "", false
	if t, ok := requestTypes[mode]; ok {
		path, found = locateInvalidValue(t, body, "")
	}

	var typeErr *json.UnmarshalTypeError
	isTypeErr := errors.As(err, &typeErr)
	if !found && isTypeErr {
		path, found = typeErr.Field, true
	}
	if !found {
		return "", "request contains a value of the wrong type"
	}

	field = path
	if field != "batch" {
		field = strings.TrimPrefix(field, "batch.")
	}
	if isTypeErr && typeErr.Type != nil {
		return field, fmt.Sprintf("%s must be %s, got %s", fieldOrBody(field), typeErr.Type.String(), typeErr.Value)
	}
	return field, fmt.Sprintf("%s is not a valid value", fieldOrBody(field))
}

func fieldOrBody(field string) string {
	if field == "" {
		return "request body"
	}
	return field
}

// locateInvalidValue returns the path of the innermost value in raw that does
// not decode into t.
func locateInvalidValue(t reflect.Type, raw json.RawMessage, path string) (string, bool) {
	if string(raw) == "null" {
		return "", false
	}
	if json.Unmarshal(raw, reflect.New(t).Interface()) == nil {
		return "", false
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()) {
		return path, true
	}

	switch t.Kind() {
	case reflect.Struct:
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) != nil {
			return path, true
		}
		for _, key := range slices.Sorted(maps.Keys(obj)) {
			f, ok := fieldByJSONName(t, key)
			if !ok {
				continue
			}
			if p, found := locateInvalidValue(f.Type, obj[key], joinPath(path, jsonName(f))); found {
				return p, true
			}
		}
	case reflect.Slice, reflect.Array:
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return path, true
		}
		for i, item := range items {
			if p, found := locateInvalidValue(t.Elem(), item, path+"["+strconv.Itoa(i)+"]"); found {
				return p, true
			}
		}
	case reflect.Map:
		var obj map[string]json.RawMessage
		if json.Unmarshal(raw, &obj) != nil {
			return path, true
		}
		for _, key := range slices.Sorted(maps.Keys(obj)) {
			if p, found := locateInvalidValue(t.Elem(), obj[key], joinPath(path, key)); found {
				return p, true
			}
		}
	}
	return path, true
}

func fieldByJSONName(t reflect.Type, key string) (reflect.StructField, bool) {
	var fold reflect.StructField
	folded := false
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonName(f)
		if name == "-" {
			continue
		}
		if name == key {
			return f, true
		}
		if !folded && strings.EqualFold(name, key) {
			fold, folded = f, true
		}
	}
	return fold, folded
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

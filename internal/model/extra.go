package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// marshalWithExtra encodes declared and merges in the undeclared document
// fields from extra. Declared fields win on a name clash.
func marshalWithExtra(declared interface{}, extra bson.M) ([]byte, error) {
	base, err := json.Marshal(declared)
	if err != nil || len(extra) == 0 {
		return base, err
	}

	fields := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", k, err)
		}
		fields[k] = raw
	}

	var own map[string]json.RawMessage
	if err := json.Unmarshal(base, &own); err != nil {
		return nil, err
	}
	for k, v := range own {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// unmarshalExtra decodes data into declared (a struct pointer) and returns the
// keys declared has no field for.
func unmarshalExtra(data []byte, declared interface{}) (bson.M, error) {
	if err := json.Unmarshal(data, declared); err != nil {
		return nil, err
	}

	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	known := jsonNames(reflect.TypeOf(declared).Elem())
	var extra bson.M
	for k, v := range all {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = bson.M{}
		}
		extra[k] = v
	}
	return extra, nil
}

func jsonNames(t reflect.Type) map[string]bool {
	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = true
	}
	return names
}

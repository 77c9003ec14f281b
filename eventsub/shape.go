package eventsub

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var (
	timeType          = reflect.TypeFor[time.Time]()
	messageType       = reflect.TypeFor[Message]()
	unmarshalerFrom   = reflect.TypeFor[json.UnmarshalerFrom]()
	legacyUnmarshaler = reflect.TypeFor[json.Unmarshaler]()
)

// shape lists the JSON members of a struct type and which of them must be
// present. The decoder zero-fills absent members, so presence is checked
// separately against the raw document.
type shape struct {
	members []member
}

type member struct {
	name     string
	required bool
	nested   *shape
	repeated bool
}

func shapeOf(t reflect.Type) *shape {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == messageType {
		t = reflect.TypeFor[messageObject]()
	}
	if t.Kind() != reflect.Struct || opaque(t) {
		return nil
	}

	s := &shape{}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		m := member{name: name, required: requiredField(f.Type, opts)}
		ft := f.Type
		if ft.Kind() == reflect.Slice {
			ft = ft.Elem()
			m.repeated = true
		}
		m.nested = shapeOf(ft)
		s.members = append(s.members, m)
	}
	return s
}

func opaque(t reflect.Type) bool {
	if t == timeType {
		return true
	}
	pt := reflect.PointerTo(t)
	return pt.Implements(unmarshalerFrom) || pt.Implements(legacyUnmarshaler)
}

func requiredField(t reflect.Type, opts string) bool {
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "omitzero" || opt == "omitempty" {
			return false
		}
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return false
	default:
		return true
	}
}

// missing returns the JSON pointer of the first required member absent from
// raw, relative to path. Values that are not objects are left to the decoder.
func (s *shape) missing(raw jsontext.Value, path string) (string, bool) {
	if s == nil || raw.Kind() != '{' {
		return "", false
	}

	var obj map[string]jsontext.Value
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}

	for _, m := range s.members {
		v, ok := obj[m.name]
		memberPath := path + "/" + escapePointer(m.name)
		if !ok || (m.required && v.Kind() == 'n') {
			if m.required {
				return memberPath, true
			}
			continue
		}
		if m.nested == nil {
			continue
		}
		if !m.repeated {
			if p, ok := m.nested.missing(v, memberPath); ok {
				return p, true
			}
			continue
		}
		var elems []jsontext.Value
		if err := json.Unmarshal(v, &elems); err != nil {
			continue
		}
		for i, elem := range elems {
			if p, ok := m.nested.missing(elem, memberPath+"/"+strconv.Itoa(i)); ok {
				return p, true
			}
		}
	}
	return "", false
}

func escapePointer(name string) string {
	name = strings.ReplaceAll(name, "~", "~0")
	return strings.ReplaceAll(name, "/", "~1")
}

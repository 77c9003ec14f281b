package eventsub

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// schema is a registered payload type: how to decode it and which members it requires.
type schema struct {
	key   Discriminant
	shape *shape
	decode func(raw jsontext.Value, opts json.Options) (Payload, error)
}

func define[P Payload]() schema {
	var zero P
	return schema{
		key:   zero.Discriminant(),
		shape: shapeOf(reflect.TypeFor[P]()),
		decode: func(raw jsontext.Value, opts json.Options) (Payload, error) {
			var p P
			if err := json.Unmarshal(raw, &p, opts); err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

// registry is built once at package initialization and only read afterwards.
var registry = newRegistry(
	define[AutomodMessageHoldV1Payload](),
	define[AutomodMessageHoldV2Payload](),
	define[AutomodMessageUpdateV1Payload](),
	define[ChannelChatMessageV1Payload](),
	define[ChannelFollowV2Payload](),
	define[ChannelUpdateV2Payload](),
	define[StreamOnlineV1Payload](),
	define[StreamOfflineV1Payload](),
)

func newRegistry(schemas ...schema) map[Discriminant]schema {
	r := make(map[Discriminant]schema, len(schemas))
	for _, s := range schemas {
		if _, dup := r[s.key]; dup {
			panic(fmt.Sprintf("eventsub: duplicate schema for %s", s.key))
		}
		r[s.key] = s
	}
	return r
}

// Registered reports whether a payload schema exists for (t, version).
func Registered(t EventType, version string) bool {
	_, ok := registry[Discriminant{Type: t, Version: version}]
	return ok
}

// Discriminants returns every registered (type, version) pair, sorted.
func Discriminants() []Discriminant {
	out := make([]Discriminant, 0, len(registry))
	for d := range registry {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Discriminant) int {
		if c := strings.Compare(string(a.Type), string(b.Type)); c != 0 {
			return c
		}
		return strings.Compare(a.Version, b.Version)
	})
	return out
}

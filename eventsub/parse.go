package eventsub

import (
	"reflect"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Parser decodes notification documents. The zero value is a permissive parser.
// A Parser holds no mutable state and is safe for concurrent use.
type Parser struct {
	strict bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithStrict makes unexpected members in the subscription or event sections
// fail with ErrMalformedPayload instead of being discarded.
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Strict reports whether unknown members are rejected.
func (p *Parser) Strict() bool { return p.strict }

var defaultParser = &Parser{}

// Parse decodes a notification document with a permissive Parser.
func Parse(raw []byte) (Envelope, error) {
	return defaultParser.Parse(raw)
}

type document struct {
	Subscription jsontext.Value `json:"subscription"`
	Event        jsontext.Value `json:"event"`
	Challenge    *string        `json:"challenge"`
}

type discriminantFields struct {
	Type    *string `json:"type"`
	Version *string `json:"version"`
}

func (p *Parser) options() json.Options {
	return json.RejectUnknownMembers(p.strict)
}

// Parse decodes a {"subscription": ..., "event": ...} document into an Envelope.
// Errors are *ParseError values matching ErrMissingDiscriminant,
// ErrUnknownEventType or ErrMalformedPayload.
func (p *Parser) Parse(raw []byte) (Envelope, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return Envelope{}, err
	}
	return p.parseDocument(doc)
}

func (p *Parser) parseDocument(doc document) (Envelope, error) {
	d, err := discriminant(doc.Subscription)
	if err != nil {
		return Envelope{}, err
	}

	s, ok := registry[d]
	if !ok {
		return Envelope{}, unknownEventType(d)
	}

	if len(doc.Event) == 0 || doc.Event.Kind() == 'n' {
		return Envelope{}, missingMember(d, "/event")
	}
	event, err := s.decode(doc.Event, p.options())
	if err != nil {
		return Envelope{}, malformed(d, "/event", err)
	}
	if path, ok := s.shape.missing(doc.Event, "/event"); ok {
		return Envelope{}, missingMember(d, path)
	}

	sub, err := p.decodeSubscription(d, doc.Subscription)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Subscription: sub, Event: event}, nil
}

// ParseSubscription decodes only the subscription section of a document, as
// sent with revocation and webhook_callback_verification messages. The
// (type, version) pair is not looked up in the registry.
func (p *Parser) ParseSubscription(raw []byte) (Subscription, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return Subscription{}, err
	}

	d, err := discriminant(doc.Subscription)
	if err != nil {
		return Subscription{}, err
	}
	return p.decodeSubscription(d, doc.Subscription)
}

// ParseChallenge decodes a webhook_callback_verification document and returns
// its challenge together with the subscription being verified.
func (p *Parser) ParseChallenge(raw []byte) (string, Subscription, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return "", Subscription{}, err
	}

	d, err := discriminant(doc.Subscription)
	if err != nil {
		return "", Subscription{}, err
	}
	if doc.Challenge == nil {
		return "", Subscription{}, missingMember(d, "/challenge")
	}

	sub, err := p.decodeSubscription(d, doc.Subscription)
	if err != nil {
		return "", Subscription{}, err
	}
	return *doc.Challenge, sub, nil
}

var subscriptionShape = shapeOf(reflect.TypeFor[Subscription]())

func (p *Parser) decodeSubscription(d Discriminant, raw jsontext.Value) (Subscription, error) {
	var sub Subscription
	if err := json.Unmarshal(raw, &sub, p.options()); err != nil {
		return Subscription{}, malformed(d, "/subscription", err)
	}
	if path, ok := subscriptionShape.missing(raw, "/subscription"); ok {
		return Subscription{}, missingMember(d, path)
	}
	return sub, nil
}

func decodeDocument(raw []byte) (document, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, malformed(Discriminant{}, "", err)
	}
	return doc, nil
}

func discriminant(raw jsontext.Value) (Discriminant, error) {
	if len(raw) == 0 || raw.Kind() == 'n' {
		return Discriminant{}, missingDiscriminant("/subscription")
	}

	var f discriminantFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return Discriminant{}, malformed(Discriminant{}, "/subscription", err)
	}
	if f.Type == nil || *f.Type == "" {
		return Discriminant{}, missingDiscriminant("/subscription/type")
	}
	if f.Version == nil || *f.Version == "" {
		return Discriminant{}, missingDiscriminant("/subscription/version")
	}
	return Discriminant{Type: EventType(*f.Type), Version: *f.Version}, nil
}

// Marshal encodes an Envelope back into a notification document. Nil slices
// and maps are written as null so that Parse restores them as nil, while empty
// ones stay [] and {}.
func Marshal(env Envelope) ([]byte, error) {
	return json.Marshal(env,
		json.Deterministic(true),
		json.FormatNilSliceAsNull(true),
		json.FormatNilMapAsNull(true),
	)
}

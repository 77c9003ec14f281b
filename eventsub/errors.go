package eventsub

import (
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// ErrorKind classifies why a document could not be parsed.
type ErrorKind int

const (
	// KindMissingDiscriminant: subscription.type or subscription.version is absent.
	KindMissingDiscriminant ErrorKind = iota + 1
	// KindUnknownEventType: the (type, version) pair has no registered schema.
	KindUnknownEventType
	// KindMalformedPayload: a member is missing, mistyped or unexpected.
	KindMalformedPayload
)

var (
	ErrMissingDiscriminant = errors.New("missing subscription type or version")
	ErrUnknownEventType    = errors.New("unknown event type")
	ErrMalformedPayload    = errors.New("malformed payload")

	errMissingMember = errors.New("missing required member")
)

// String returns a snake_case label, suitable for logs and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingDiscriminant:
		return "missing_discriminant"
	case KindUnknownEventType:
		return "unknown_event_type"
	case KindMalformedPayload:
		return "malformed_payload"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindMissingDiscriminant:
		return ErrMissingDiscriminant
	case KindUnknownEventType:
		return ErrUnknownEventType
	case KindMalformedPayload:
		return ErrMalformedPayload
	default:
		return nil
	}
}

// ParseError reports a failed parse. It matches ErrMissingDiscriminant,
// ErrUnknownEventType or ErrMalformedPayload under errors.Is, depending on Kind.
type ParseError struct {
	Kind    ErrorKind
	Type    EventType
	Version string
	// Path is a JSON pointer to the offending member, e.g. "/event/message_id".
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Type != "" || e.Version != "" {
		msg += fmt.Sprintf(" %s@v%s", e.Type, e.Version)
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the ErrorKind of err, or 0 if err is not a *ParseError.
func KindOf(err error) ErrorKind {
	if pe, ok := errors.AsType[*ParseError](err); ok {
		return pe.Kind
	}
	return 0
}

func missingDiscriminant(path string) *ParseError {
	return &ParseError{Kind: KindMissingDiscriminant, Path: path, Err: errMissingMember}
}

func unknownEventType(d Discriminant) *ParseError {
	return &ParseError{Kind: KindUnknownEventType, Type: d.Type, Version: d.Version}
}

func missingMember(d Discriminant, path string) *ParseError {
	return &ParseError{Kind: KindMalformedPayload, Type: d.Type, Version: d.Version, Path: path, Err: errMissingMember}
}

// malformed wraps a decoding error, resolving the offending member's path
// relative to prefix.
func malformed(d Discriminant, prefix string, err error) *ParseError {
	path := prefix
	if semErr, ok := errors.AsType[*json.SemanticError](err); ok {
		path += string(semErr.JSONPointer)
	} else if synErr, ok := errors.AsType[*jsontext.SyntacticError](err); ok {
		path += string(synErr.JSONPointer)
	}
	return &ParseError{Kind: KindMalformedPayload, Type: d.Type, Version: d.Version, Path: path, Err: err}
}

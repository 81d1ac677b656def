// Package scieerr defines the error taxonomy from SPEC_FULL §7 as
// Kind-comparable errors rather than ad-hoc string messages, following the
// teacher's reason-code convention (pkg/conform/reason_codes.go).
package scieerr

import "errors"

// Kind identifies one of the closed set of error kinds from §7.
type Kind string

const (
	CorpusUnreadable           Kind = "CORPUS_UNREADABLE"
	ArtifactBijectionBroken    Kind = "ARTIFACT_BIJECTION_BROKEN"
	RuleCheckException         Kind = "RULE_CHECK_EXCEPTION"
	RuleCheckTimeout           Kind = "RULE_CHECK_TIMEOUT"
	CacheMiss                  Kind = "CACHE_MISS"
	ChainBreak                 Kind = "CHAIN_BREAK"
	ConcurrentWrite            Kind = "CONCURRENT_WRITE"
	StoreReadonly              Kind = "STORE_READONLY"
	BaselineAbsent             Kind = "BASELINE_ABSENT"
	ControllerSaturated        Kind = "CONTROLLER_SATURATED"
	AdversarialDetectDegraded  Kind = "ADVERSARIAL_DETECTION_DEGRADED"
)

// Fatal reports whether a Kind escapes a run fully (vs. being recovered and
// recorded), per §7's propagation rules.
func (k Kind) Fatal() bool {
	switch k {
	case CorpusUnreadable, ArtifactBijectionBroken, StoreReadonly:
		return true
	default:
		return false
	}
}

// Error is a Kind-tagged error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, scieerr.New(KindX, "")) to match on Kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// KindOf extracts the Kind from err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

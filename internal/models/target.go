package models

import "fmt"

// TargetType enumerates the kinds of entities a reaction or subscription can
// point at. The set is closed: anything else is rejected at parse time.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Target identifies a reactable entity by (type, id). Post IDs are MongoDB
// ObjectID hex strings; comment IDs are decimal-formatted Postgres IDs.
type Target struct {
	Type TargetType
	ID   string
}

// ParseTargetType validates a raw path segment against the closed enum.
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(s) {
	case TargetPost, TargetComment:
		return TargetType(s), nil
	}
	return "", fmt.Errorf("unknown target type %q", s)
}

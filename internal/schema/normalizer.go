package schema

import (
	"encoding/json"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
	"github.com/google/uuid"
)

// timestampDivisor coarsens the client-supplied epoch-millisecond
// timestamp into the canonical storage unit. The division floors.
const timestampDivisor = 1000

// Normalizer produces the canonical storage form of a validated event.
// It performs no I/O; every ingestion and the log mirror consume its
// output.
type Normalizer struct {
	newID func() string
}

// NewNormalizer creates a Normalizer using random UUIDs for log ids.
func NewNormalizer() *Normalizer {
	return &Normalizer{newID: uuid.NewString}
}

// Normalize canonicalizes a validated event in place:
//
//   - browser.userip is overwritten with the connection-derived clientIP;
//     the caller-supplied value is never trusted
//   - each free-form object field becomes nil when empty, otherwise a
//     serialized JSON string with empty nested objects (at any depth,
//     including inside arrays) replaced by null
//   - empty optional records (actor.user, actor.entity) become nil
//   - the canonical timestamp is Timestamp/timestampDivisor, floored
//   - a fresh log_id is assigned
//
// Re-running Normalize on its own output yields the same canonical value
// except for the newly generated log_id.
func (n *Normalizer) Normalize(evt *v1.LogEvent, clientIP string) {
	if evt.Browser == nil {
		evt.Browser = &v1.Browser{}
	}
	ip := clientIP
	evt.Browser.UserIP = &ip

	if evt.Action != nil && evt.Action.Details != nil {
		details := evt.Action.Details
		details.Params = canonicalFreeform(details.Params)
		details.Headers = canonicalFreeform(details.Headers)
		details.Body = canonicalFreeform(details.Body)
	}
	if evt.Actor != nil {
		evt.Actor.AdditionalInfo = canonicalFreeform(evt.Actor.AdditionalInfo)
		if emptyRef(evt.Actor.User) {
			evt.Actor.User = nil
		}
		if emptyRef(evt.Actor.Entity) {
			evt.Actor.Entity = nil
		}
	}

	if evt.Timestamp != nil {
		evt.TimestampSec = *evt.Timestamp / timestampDivisor
	}
	evt.LogID = n.newID()
}

// canonicalFreeform maps a free-form value to its storage form: nil for
// absent or empty objects, a serialized JSON string otherwise. Strings
// are assumed already canonical and pass through unchanged.
func canonicalFreeform(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case string:
		return v
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
		raw, err := json.Marshal(ReplaceEmptyObjects(v))
		if err != nil {
			return nil
		}
		return string(raw)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(raw)
	}
}

// ReplaceEmptyObjects recursively replaces every empty JSON object, at
// any depth including inside arrays, with nil. Non-empty objects and
// arrays are recursed into, not replaced.
func ReplaceEmptyObjects(val any) any {
	switch v := val.(type) {
	case map[string]any:
		if len(v) == 0 {
			return nil
		}
		for key, item := range v {
			v[key] = ReplaceEmptyObjects(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = ReplaceEmptyObjects(item)
		}
		return v
	default:
		return val
	}
}

func emptyRef(ref *v1.ActorRef) bool {
	return ref != nil && ref.ID == nil
}

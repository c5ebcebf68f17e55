package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// TimeLayout is the ISO-8601 layout used for the timestamp field.
const TimeLayout = "2006-01-02T15:04:05-0700"

// Field names shared with the ingestion service.
const (
	FieldType           = "type"
	FieldTimestamp      = "timestamp"
	FieldMessageID      = "messageId"
	FieldEvent          = "event"
	FieldAccountID      = "accountId"
	FieldUserID         = "userId"
	FieldTraits         = "traits"
	FieldProductID      = "productId"
	FieldModuleID       = "moduleId"
	FieldFeatureID      = "featureId"
	FieldTotal          = "total"
	FieldSubscriptionID = "subscriptionId"
	FieldInvoiceID      = "invoiceId"
)

// Type discriminates envelopes.
type Type string

const (
	TypeTrack        Type = "track"
	TypeAccount      Type = "account"
	TypeUser         Type = "user"
	TypeFeature      Type = "feature"
	TypeSubscription Type = "subscription"
	TypeInvoice      Type = "invoice"
)

// Track event names with dedicated routes.
const (
	EventLogin  = "User Login"
	EventLogout = "User Logout"
)

var ErrMalformed = errors.New("envelope: malformed")

// Envelope is one outbound event record. Once built it is treated as
// immutable: the queue, splitter and transports only read it.
type Envelope map[string]any

// Type returns the discriminator, or "" if absent.
func (e Envelope) Type() Type {
	s, _ := e[FieldType].(string)
	return Type(s)
}

// Timestamp returns the ISO-8601 creation time, or "" if absent.
func (e Envelope) Timestamp() string {
	s, _ := e[FieldTimestamp].(string)
	return s
}

// Event returns the track event name, or "" for other types.
func (e Envelope) Event() string {
	s, _ := e[FieldEvent].(string)
	return s
}

// Clone returns a shallow copy that can be modified freely.
func (e Envelope) Clone() Envelope {
	return maps.Clone(e)
}

// Decode parses one JSON object into an envelope and checks that the type and
// timestamp fields are present.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}
	if e.Type() == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, FieldType)
	}
	if e.Timestamp() == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformed, FieldTimestamp)
	}
	return e, nil
}

package envelope

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Validation errors returned by the Builder.
var (
	ErrMissingAccountID = errors.New("envelope: account id is required")
	ErrMissingUserID    = errors.New("envelope: user id is required")
	ErrMissingField     = errors.New("envelope: required field is empty")
	ErrInvalidTotal     = errors.New("envelope: total must not be negative")
)

// Builder creates envelopes stamped with a timestamp and message id.
// It is safe for concurrent use as long as its clock and id source are.
type Builder struct {
	clock clock.Clock
	newID func() string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock sets the time source. Defaults to the wall clock.
func WithClock(c clock.Clock) BuilderOption {
	return func(b *Builder) { b.clock = c }
}

// WithIDGenerator sets the message id source. Defaults to random UUIDs.
func WithIDGenerator(fn func() string) BuilderOption {
	return func(b *Builder) { b.newID = fn }
}

// NewBuilder returns a Builder using the wall clock and UUIDv4 ids.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		clock: clock.New(),
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FeatureUsage describes one feature-usage event.
type FeatureUsage struct {
	AccountID string
	UserID    string
	ProductID string
	ModuleID  string
	FeatureID string
	// Total is the usage count. Zero means 1.
	Total int
}

// Track builds a named track event for a user.
func (b *Builder) Track(event, accountID, userID string) (Envelope, error) {
	if err := requireIDs(accountID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(event) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldEvent)
	}
	e := b.base(TypeTrack)
	e[FieldAccountID] = accountID
	e[FieldUserID] = userID
	e[FieldEvent] = event
	return e, nil
}

// Login builds the track event recorded when a user logs in.
func (b *Builder) Login(accountID, userID string) (Envelope, error) {
	return b.Track(EventLogin, accountID, userID)
}

// Logout builds the track event recorded when a user logs out.
func (b *Builder) Logout(accountID, userID string) (Envelope, error) {
	return b.Track(EventLogout, accountID, userID)
}

// Account builds an account profile update.
func (b *Builder) Account(accountID string, traits map[string]any) (Envelope, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrMissingAccountID
	}
	e := b.base(TypeAccount)
	e[FieldAccountID] = accountID
	e[FieldTraits] = traitsOrEmpty(traits)
	return e, nil
}

// User builds a user profile update.
func (b *Builder) User(accountID, userID string, traits map[string]any) (Envelope, error) {
	if err := requireIDs(accountID, userID); err != nil {
		return nil, err
	}
	e := b.base(TypeUser)
	e[FieldAccountID] = accountID
	e[FieldUserID] = userID
	e[FieldTraits] = traitsOrEmpty(traits)
	return e, nil
}

// Feature builds a feature-usage event.
func (b *Builder) Feature(f FeatureUsage) (Envelope, error) {
	if err := requireIDs(f.AccountID, f.UserID); err != nil {
		return nil, err
	}
	for name, v := range map[string]string{
		FieldProductID: f.ProductID,
		FieldModuleID:  f.ModuleID,
		FieldFeatureID: f.FeatureID,
	} {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	if f.Total < 0 {
		return nil, ErrInvalidTotal
	}
	total := f.Total
	if total == 0 {
		total = 1
	}
	e := b.base(TypeFeature)
	e[FieldAccountID] = f.AccountID
	e[FieldUserID] = f.UserID
	e[FieldProductID] = f.ProductID
	e[FieldModuleID] = f.ModuleID
	e[FieldFeatureID] = f.FeatureID
	e[FieldTotal] = total
	return e, nil
}

// Subscription builds a subscription lifecycle event.
func (b *Builder) Subscription(accountID, subscriptionID string, traits map[string]any) (Envelope, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrMissingAccountID
	}
	if strings.TrimSpace(subscriptionID) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldSubscriptionID)
	}
	e := b.base(TypeSubscription)
	e[FieldAccountID] = accountID
	e[FieldSubscriptionID] = subscriptionID
	e[FieldTraits] = traitsOrEmpty(traits)
	return e, nil
}

// Invoice builds an invoice lifecycle event. The invoice must be attached to
// an account, a subscription, or both.
func (b *Builder) Invoice(accountID, subscriptionID, invoiceID string, traits map[string]any) (Envelope, error) {
	if strings.TrimSpace(accountID) == "" && strings.TrimSpace(subscriptionID) == "" {
		return nil, fmt.Errorf("%w: %s or %s", ErrMissingField, FieldAccountID, FieldSubscriptionID)
	}
	if strings.TrimSpace(invoiceID) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldInvoiceID)
	}
	e := b.base(TypeInvoice)
	if accountID != "" {
		e[FieldAccountID] = accountID
	}
	if subscriptionID != "" {
		e[FieldSubscriptionID] = subscriptionID
	}
	e[FieldInvoiceID] = invoiceID
	e[FieldTraits] = traitsOrEmpty(traits)
	return e, nil
}

func (b *Builder) base(t Type) Envelope {
	return Envelope{
		FieldType:      string(t),
		FieldTimestamp: b.clock.Now().Format(TimeLayout),
		FieldMessageID: b.newID(),
	}
}

func requireIDs(accountID, userID string) error {
	if strings.TrimSpace(accountID) == "" {
		return ErrMissingAccountID
	}
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUserID
	}
	return nil
}

// traitsOrEmpty copies traits so later caller mutations do not leak into a
// queued envelope.
func traitsOrEmpty(traits map[string]any) map[string]any {
	out := make(map[string]any, len(traits))
	for k, v := range traits {
		out[k] = v
	}
	return out
}

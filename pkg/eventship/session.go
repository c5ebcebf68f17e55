package eventship

import "github.com/bft-labs/eventship/pkg/envelope"

// session remembers who logged in last so that later calls may omit ids.
type session struct {
	accountID string
	userID    string
}

// Session returns the account and user recorded by the last Login.
func (c *Client) Session() (accountID, userID string) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.session.accountID, c.session.userID
}

func (c *Client) fillSession(accountID, userID string) (string, string) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if accountID == "" {
		accountID = c.session.accountID
	}
	if userID == "" {
		userID = c.session.userID
	}
	return accountID, userID
}

func (c *Client) enqueue(e envelope.Envelope, err error) error {
	if err != nil {
		return err
	}
	c.Append(e)
	return nil
}

// Track queues a generic track event.
func (c *Client) Track(event, accountID, userID string) error {
	accountID, userID = c.fillSession(accountID, userID)
	return c.enqueue(c.builder.Track(event, accountID, userID))
}

// Login queues a login event and remembers the account and user.
func (c *Client) Login(accountID, userID string) error {
	e, err := c.builder.Login(accountID, userID)
	if err != nil {
		return err
	}
	c.sessionMu.Lock()
	c.session = session{accountID: accountID, userID: userID}
	c.sessionMu.Unlock()
	c.Append(e)
	return nil
}

// Logout queues a logout event. Empty ids fall back to the session, which
// is cleared afterwards.
func (c *Client) Logout(accountID, userID string) error {
	accountID, userID = c.fillSession(accountID, userID)
	e, err := c.builder.Logout(accountID, userID)
	if err != nil {
		return err
	}
	c.sessionMu.Lock()
	c.session = session{}
	c.sessionMu.Unlock()
	c.Append(e)
	return nil
}

// Account queues an account profile update.
func (c *Client) Account(accountID string, traits map[string]any) error {
	return c.enqueue(c.builder.Account(accountID, traits))
}

// User queues a user profile update.
func (c *Client) User(accountID, userID string, traits map[string]any) error {
	return c.enqueue(c.builder.User(accountID, userID, traits))
}

// Feature queues a feature usage event. Empty ids fall back to the session.
func (c *Client) Feature(f envelope.FeatureUsage) error {
	f.AccountID, f.UserID = c.fillSession(f.AccountID, f.UserID)
	return c.enqueue(c.builder.Feature(f))
}

// Subscription queues a subscription lifecycle event.
func (c *Client) Subscription(accountID, subscriptionID string, traits map[string]any) error {
	return c.enqueue(c.builder.Subscription(accountID, subscriptionID, traits))
}

// Invoice queues an invoice event. Either accountID or subscriptionID is required.
func (c *Client) Invoice(accountID, subscriptionID, invoiceID string, traits map[string]any) error {
	return c.enqueue(c.builder.Invoice(accountID, subscriptionID, invoiceID, traits))
}

package store

// ClientFactory constructs a Client for a given target. Mirrors the
// teacher's provisioner-factory shape so Client construction can be
// substituted in tests via the DI container instead of a package-level
// constructor.
type ClientFactory interface {
	New(target Target, hasToken bool) *Client
}

// DefaultClientFactory constructs Clients backed by the real store binary.
type DefaultClientFactory struct{}

// New implements ClientFactory.
func (DefaultClientFactory) New(target Target, hasToken bool) *Client {
	return New(target, hasToken, nil)
}

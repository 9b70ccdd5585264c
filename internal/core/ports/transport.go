package ports

import "time"

// Transport is the client-held key/value bag (cookies) a session travels in.
// Reads observe writes made earlier in the same request.
type Transport interface {
	Get(name string) (string, bool)
	Set(name, value string, expires time.Time)
	Delete(name string)
}

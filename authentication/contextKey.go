package authentication

// contextKey names the metadata entries the interceptor adds to incoming calls.
type contextKey string

func (c contextKey) String() string {
	return string(c)
}

var (
	clientId = contextKey("geobounds-client-id")
)

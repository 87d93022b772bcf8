package audit

import "context"

type clientKey struct{}

// Client identifies the caller of a request
type Client struct {
	IPAddress string
	UserAgent string
}

// WithClient returns a context carrying the request's client
func WithClient(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// ClientFrom returns the client stored in ctx, if any
func ClientFrom(ctx context.Context) Client {
	client, _ := ctx.Value(clientKey{}).(Client)
	return client
}

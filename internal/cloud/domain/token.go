package domain

import "context"

// TokenSource yields a valid bearer token for a cloud, reusing the cached one
// when it has not expired. Implemented by the keystone service.
type TokenSource interface {
	AccessToken(ctx context.Context, cloud *Cloud) (string, error)
}

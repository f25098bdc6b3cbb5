package keystone

import "fmt"

// AuthError reports a rejected or unreachable identity service. The cached
// token state is never mutated on this path, so the next call retries
// cleanly.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("identity service unreachable: %s", e.Body)
	}
	return fmt.Sprintf("identity service rejected authentication (status %d): %s", e.StatusCode, e.Body)
}

type CatalogFailure string

const (
	// CatalogNoRatingService means the catalog carries no usable "rating"
	// service entry at all.
	CatalogNoRatingService CatalogFailure = "no_rating_service"
	// CatalogNoMatchingEndpoint means a rating entry exists but none of its
	// endpoints match the cloud's interface and region.
	CatalogNoMatchingEndpoint CatalogFailure = "no_matching_endpoint"
)

// CatalogError is a configuration problem: authentication succeeded but the
// catalog cannot serve this cloud. The two failure reasons are
// distinguishable so operators know whether to fix the deployment or the
// cloud record.
type CatalogError struct {
	Reason    CatalogFailure
	Interface string
	Region    string
}

func (e *CatalogError) Error() string {
	switch e.Reason {
	case CatalogNoRatingService:
		return "no rating endpoints found in the service catalog"
	default:
		return fmt.Sprintf("no rating endpoint matches interface %q and region %q", e.Interface, e.Region)
	}
}

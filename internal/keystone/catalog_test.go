package keystone

import (
	"testing"

	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCloud() *clouddomain.Cloud {
	return &clouddomain.Cloud{
		Interface:  "public",
		RegionName: "RegionOne",
	}
}

func TestResolveRatingEndpoint(t *testing.T) {
	cloud := testCloud()

	catalog := []CatalogEntry{
		{Type: "identity", Endpoints: []Endpoint{
			{Interface: "public", Region: "RegionOne", URL: "https://identity.example/"},
		}},
		{Type: "rating", Endpoints: []Endpoint{
			{Interface: "internal", Region: "RegionOne", URL: "https://rating.internal/"},
			{Interface: "public", Region: "RegionOne", URL: "https://rating.example/"},
			{Interface: "public", Region: "RegionOne", URL: "https://rating.shadow/"},
		}},
	}

	endpoint, err := ResolveRatingEndpoint(cloud, catalog)
	require.NoError(t, err)
	// First matching endpoint in catalog order wins.
	assert.Equal(t, "https://rating.example/", endpoint)
}

func TestResolveRatingEndpoint_NoRatingService(t *testing.T) {
	catalog := []CatalogEntry{
		{Type: "identity", Endpoints: []Endpoint{
			{Interface: "public", Region: "RegionOne", URL: "https://identity.example/"},
		}},
	}

	_, err := ResolveRatingEndpoint(testCloud(), catalog)
	require.Error(t, err)

	catalogErr, ok := err.(*CatalogError)
	require.True(t, ok)
	assert.Equal(t, CatalogNoRatingService, catalogErr.Reason)
}

func TestResolveRatingEndpoint_NoMatchingEndpoint(t *testing.T) {
	catalog := []CatalogEntry{
		{Type: "rating", Endpoints: []Endpoint{
			{Interface: "internal", Region: "RegionOne", URL: "https://rating.internal/"},
			{Interface: "public", Region: "RegionTwo", URL: "https://rating.two/"},
		}},
	}

	_, err := ResolveRatingEndpoint(testCloud(), catalog)
	require.Error(t, err)

	catalogErr, ok := err.(*CatalogError)
	require.True(t, ok)
	assert.Equal(t, CatalogNoMatchingEndpoint, catalogErr.Reason)
	assert.Equal(t, "public", catalogErr.Interface)
	assert.Equal(t, "RegionOne", catalogErr.Region)
}

func TestResolveRatingEndpoint_EmptyRatingEntry(t *testing.T) {
	// A rating entry with zero endpoints reads the same as no rating
	// service at all.
	catalog := []CatalogEntry{
		{Type: "rating", Endpoints: nil},
	}

	_, err := ResolveRatingEndpoint(testCloud(), catalog)
	require.Error(t, err)

	catalogErr, ok := err.(*CatalogError)
	require.True(t, ok)
	assert.Equal(t, CatalogNoRatingService, catalogErr.Reason)
}

package keystone

import (
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
)

type CatalogEntry struct {
	Type      string     `json:"type"`
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	Interface string `json:"interface"`
	Region    string `json:"region"`
	URL       string `json:"url"`
}

// ResolveRatingEndpoint walks the catalog for the "rating" service and picks
// the endpoint matching the cloud's interface and region. Multiple matches
// should not happen upstream; the first in catalog order wins.
func ResolveRatingEndpoint(cloud *clouddomain.Cloud, catalog []CatalogEntry) (string, error) {
	var endpoints []Endpoint
	for _, entry := range catalog {
		if entry.Type == "rating" {
			endpoints = entry.Endpoints
			break
		}
	}

	if len(endpoints) == 0 {
		return "", &CatalogError{Reason: CatalogNoRatingService}
	}

	for _, endpoint := range endpoints {
		if endpoint.Interface == cloud.Interface && endpoint.Region == cloud.RegionName {
			return endpoint.URL, nil
		}
	}

	return "", &CatalogError{
		Reason:    CatalogNoMatchingEndpoint,
		Interface: cloud.Interface,
		Region:    cloud.RegionName,
	}
}

// Copyright (c) 2019 Antonio Romito
// SPDX-License-Identifier: GPL-3.0-or-later

package rhsm

import "encoding/json"

// Pagination describes the window of records a single API page covers.
// Count is the number of records in this page, not the overall total.
type Pagination struct {
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrataCounts breaks down outstanding advisories for a system by type
type ErrataCounts struct {
	SecurityCount    int `json:"securityCount"`
	BugfixCount      int `json:"bugfixCount"`
	EnhancementCount int `json:"enhancementCount"`
}

// System is one registered host in the subscription inventory. The errata
// counters are flattened out of the nested errataCounts object so a record
// maps 1:1 onto a CSV row.
type System struct {
	Name              string `json:"name"`
	UUID              string `json:"uuid"`
	Href              string `json:"href"`
	Type              string `json:"type"`
	EntitlementCount  int    `json:"entitlementCount"`
	EntitlementStatus string `json:"entitlementStatus"`

	// LastCheckin is empty for systems that never checked in
	LastCheckin string `json:"lastCheckin"`

	SecurityCount    int `json:"-"`
	BugfixCount      int `json:"-"`
	EnhancementCount int `json:"-"`
}

// UnmarshalJSON flattens the optional errataCounts object into the top-level
// counters. Systems without errata report zero across the board.
func (s *System) UnmarshalJSON(data []byte) error {
	type alias System
	aux := struct {
		*alias
		ErrataCounts *ErrataCounts `json:"errataCounts"`
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.ErrataCounts != nil {
		s.SecurityCount = aux.ErrataCounts.SecurityCount
		s.BugfixCount = aux.ErrataCounts.BugfixCount
		s.EnhancementCount = aux.ErrataCounts.EnhancementCount
	}

	return nil
}

// Allocation is a subscription allocation (e.g. a Satellite manifest)
type Allocation struct {
	UUID                         string `json:"uuid"`
	Name                         string `json:"name"`
	Type                         string `json:"type"`
	Version                      string `json:"version"`
	EntitlementsAttachedQuantity int    `json:"entitlementsAttachedQuantity"`
}

// Subscription is one purchased subscription on the account
type Subscription struct {
	ContractNumber     string `json:"contractNumber"`
	SubscriptionNumber string `json:"subscriptionNumber"`
	SubscriptionName   string `json:"subscriptionName"`
	SKU                string `json:"sku"`
	Quantity           int    `json:"quantity"`
	Status             string `json:"status"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
}

// Erratum is a single published advisory
type Erratum struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Synopsis   string `json:"synopsis"`
	IssuedDate string `json:"issuedDate"`
}

// Package is one RPM installed on a system. SystemUUID is not part of the
// API payload; it is filled in by the caller so rows from per-system package
// listings stay attributable.
type Package struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Release    string `json:"release"`
	Arch       string `json:"arch"`
	SystemUUID string `json:"-"`
}

// SystemsPage is one page of the /systems listing
type SystemsPage struct {
	Pagination Pagination `json:"pagination"`
	Body       []System   `json:"body"`
}

// AllocationsPage is one page of the /allocations listing
type AllocationsPage struct {
	Pagination Pagination   `json:"pagination"`
	Body       []Allocation `json:"body"`
}

// SubscriptionsPage is one page of the /subscriptions listing
type SubscriptionsPage struct {
	Pagination Pagination     `json:"pagination"`
	Body       []Subscription `json:"body"`
}

// ErrataPage is one page of the /errata listing
type ErrataPage struct {
	Pagination Pagination `json:"pagination"`
	Body       []Erratum  `json:"body"`
}

// PackagesPage is one page of a /systems/{uuid}/packages listing
type PackagesPage struct {
	Pagination Pagination `json:"pagination"`
	Body       []Package  `json:"body"`
}

package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and engines return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: session or record does not exist in store
// - ErrExpired: view session idled past its TTL
// - ErrUnavailable: query engine or cache temporarily unavailable
// - ErrSuperseded: a newer request for the same panel was issued first
//
// For validation errors (bad input, unknown option values), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
	ErrSuperseded  = errors.New("superseded")
)

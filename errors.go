// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package assetrules holds the types shared by every rule layer: the call
// context handed to contract entry points and the error kinds every failure
// is classified under.
package assetrules

import "errors"

// Error kinds. Every error returned by an entry point wraps exactly one of
// these so callers can branch on the class of failure with errors.Is.
var (
	// ErrPolicyViolation is a caller-recoverable rejection: a cap was
	// exceeded, the payment was wrong or the input was invalid.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrAuthorization is returned when the caller is not the contract owner,
	// not the owner of record of a token or not otherwise approved.
	ErrAuthorization = errors.New("authorization failure")

	// ErrCapacityExhausted is returned when a supply or per-call limit is
	// reached or an internal counter would overflow.
	ErrCapacityExhausted = errors.New("capacity exhausted")

	// ErrCollaboratorFailure is returned when the base ledger or an external
	// contract call failed. It is never retried.
	ErrCollaboratorFailure = errors.New("collaborator failure")
)

// Kind is the label of an error kind.
type Kind string

const (
	KindNone                Kind = ""
	KindPolicyViolation     Kind = "policy_violation"
	KindAuthorization       Kind = "authorization_failure"
	KindCapacityExhausted   Kind = "capacity_exhausted"
	KindCollaboratorFailure Kind = "collaborator_failure"
	KindUnknown             Kind = "unknown"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrPolicyViolation, KindPolicyViolation},
	{ErrAuthorization, KindAuthorization},
	{ErrCapacityExhausted, KindCapacityExhausted},
}

// KindOf returns the kind err is classified under. A nil error has no kind.
// A collaborator failure that carries the collaborator's own classified cause
// is reported as a collaborator failure.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrCollaboratorFailure) {
		return KindCollaboratorFailure
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	return string(k)
}

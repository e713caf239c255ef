// Package apperrors defines the relayer's error taxonomy. Every error that
// crosses a chain handler, the redemption service, or the VAA service into
// the scheduler is one of these kinds so the caller can decide whether to
// retry, record a permanent failure, or treat the deposit as reconciled under a
// different status without inspecting error strings.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the scheduler's retry/fail decision.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindTransientRPC
	KindChainRevertBridgeWaiting
	KindChainRevertPermanent
	KindReconciliationJump
	KindVAANotFound
	KindVAAInvalidEmitter
	KindL1SubmissionFailure
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransientRPC:
		return "transient_rpc"
	case KindChainRevertBridgeWaiting:
		return "chain_revert_bridge_waiting"
	case KindChainRevertPermanent:
		return "chain_revert_permanent"
	case KindReconciliationJump:
		return "reconciliation_jump"
	case KindVAANotFound:
		return "vaa_not_found"
	case KindVAAInvalidEmitter:
		return "vaa_invalid_emitter"
	case KindL1SubmissionFailure:
		return "l1_submission_failure"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the concrete type behind every taxonomy member. Callers use
// Classify, not a type assertion, to read the Kind.
type Error struct {
	Kind    Kind
	Op      string // component/operation that produced the error, e.g. "handler.evm.Finalize"
	Chain   string // chain name the error concerns, empty if not chain-specific
	Err     error
}

func (e *Error) Error() string {
	if e.Chain != "" {
		return fmt.Sprintf("%s[%s]: %s: %v", e.Op, e.Chain, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, op, chain string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Chain: chain, Err: err}
}

// Validation wraps an error that means the input itself is malformed and
// retrying will never help (bad deposit id, malformed funding tx bytes).
func Validation(op string, err error) error { return wrap(KindValidation, op, "", err) }

// TransientRPC wraps an error that means the underlying chain RPC failed in
// a way retrying later is expected to fix (timeout, connection reset, rate
// limit).
func TransientRPC(op, chain string, err error) error {
	return wrap(KindTransientRPC, op, chain, err)
}

// ChainRevertBridgeWaiting wraps an on-chain revert that means the deposit
// is not actually an error: the L2 contract is waiting on something the
// relayer does not control (e.g. the L1 depositor reverts with "Deposit not
// finalized by the bridge"). The scheduler should neither fail nor advance the
// deposit; it just retries the tick.
func ChainRevertBridgeWaiting(op, chain string, err error) error {
	return wrap(KindChainRevertBridgeWaiting, op, chain, err)
}

// ChainRevertPermanent wraps an on-chain revert that will never succeed
// (e.g. a second relayer already finalized the same deposit).
func ChainRevertPermanent(op, chain string, err error) error {
	return wrap(KindChainRevertPermanent, op, chain, err)
}

// ReconciliationJump wraps the case where a past-deposit reconciliation
// scan finds a deposit already past the status the relayer has stored for
// it (someone else finalized it, or a restart missed a transition). The
// store record jumps forward rather than replaying the skipped states.
func ReconciliationJump(op, chain string, err error) error {
	return wrap(KindReconciliationJump, op, chain, err)
}

// VAANotFound wraps the case where the Wormhole guardian network has not
// yet produced a signed VAA for a given emitter/sequence pair.
func VAANotFound(op string, err error) error { return wrap(KindVAANotFound, op, "", err) }

// VAAInvalidEmitter wraps the case where a fetched VAA exists but its
// emitter address does not match the expected Wormhole core contract.
func VAAInvalidEmitter(op string, err error) error {
	return wrap(KindVAAInvalidEmitter, op, "", err)
}

// L1SubmissionFailure wraps a failure to submit or confirm a transaction on
// the L1 settlement chain.
func L1SubmissionFailure(op string, err error) error {
	return wrap(KindL1SubmissionFailure, op, "", err)
}

// Fatal wraps an error that means the process cannot continue (e.g. the
// operation store is unreachable at startup).
func Fatal(op string, err error) error { return wrap(KindFatal, op, "", err) }

// Classify extracts the Kind from err, walking the wrap chain with
// errors.As. Errors not produced by this package classify as KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether the scheduler should retry the job on its next
// tick rather than recording the error as a permanent failure.
func Retryable(err error) bool {
	switch Classify(err) {
	case KindTransientRPC, KindChainRevertBridgeWaiting, KindVAANotFound:
		return true
	default:
		return false
	}
}

// Package bpterrors defines the sentinel errors raised by the B+Tree index
// and its scan state machine. Callers compare against these with errors.Is;
// internal plumbing wraps them with fmt.Errorf("...: %w", ...) for context
// the way the rest of this module's packages do.
package bpterrors

import "errors"

var (
	// ErrBadIndexInfo is returned by OpenOrCreate when an existing index
	// file's persisted metadata disagrees with the parameters the caller
	// supplied, or when the path exists but was not created by this index.
	ErrBadIndexInfo = errors.New("bptreeindex: index metadata does not match provided parameters")

	// ErrUnsupportedAttrType is returned by OpenOrCreate for an attribute
	// type tag other than Integer. The core only implements integer keys.
	ErrUnsupportedAttrType = errors.New("bptreeindex: only Integer attribute type is implemented")

	// ErrBadOpcodes is returned by StartScan when lowOp is not GT/GTE or
	// highOp is not LT/LTE.
	ErrBadOpcodes = errors.New("bptreeindex: lowOp must be GT or GTE, highOp must be LT or LTE")

	// ErrBadScanRange is returned by StartScan when low > high.
	ErrBadScanRange = errors.New("bptreeindex: low bound must not exceed high bound")

	// ErrNoSuchKeyFound is returned by StartScan when no key in the index
	// satisfies both bounds.
	ErrNoSuchKeyFound = errors.New("bptreeindex: no key satisfies the requested scan range")

	// ErrScanNotInitialized is returned by ScanNext or EndScan when no scan
	// is currently active.
	ErrScanNotInitialized = errors.New("bptreeindex: no scan is active")

	// ErrIndexScanCompleted is returned by ScanNext once the last
	// in-range record has been yielded.
	ErrIndexScanCompleted = errors.New("bptreeindex: scan has yielded its last in-range record")
)

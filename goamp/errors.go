package goamp

import "errors"

// Errors
var (
	ErrBitWidth           = errors.New("value does not fit in bit width")
	ErrBitString          = errors.New("bad output bit string")
	ErrGrayLength         = errors.New("bad Gray schedule length")
	ErrMatrixShape        = errors.New("bad binary matrix shape")
	ErrNodeCount          = errors.New("bad node count")
	ErrQubitRange         = errors.New("qubit index out of range")
	ErrSameQubit          = errors.New("gate qubits must be distinct")
	ErrColorConflict      = errors.New("gate qubits must have pairwise different colors")
	ErrColorMismatch      = errors.New("transfer qubits must share a color")
	ErrMonomialShape      = errors.New("monomial must have degree 2 or 3")
	ErrUnclassifiable     = errors.New("monomial does not fit any color class table")
	ErrWalkNotClosed      = errors.New("walk did not return to its seeded state")
	ErrQuickRejectUnsound = errors.New("quick reject disagrees with the linear solver")
	ErrPartition          = errors.New("bad walk partition")
	ErrTooManyQubits      = errors.New("too many qubits for brute force")
	ErrBadCircuit         = errors.New("bad circuit description")
	ErrNoCheckpoint       = errors.New("no checkpoint for partition")
	ErrCheckpointMismatch = errors.New("checkpoint does not match this walk")
	ErrReadOnly           = errors.New("checkpoint store is read-only")
	ErrBadOption          = errors.New("unrecognized option value")
)

// Copyright 2025 Certen Protocol

package builder

import "errors"

var (
	ErrMetadataNotFound    = errors.New("builder: metadata field not declared by interface")
	ErrGlobalNotFound      = errors.New("builder: global state field not declared by interface")
	ErrAssignmentNotFound  = errors.New("builder: assignment field not declared by interface")
	ErrValencyNotFound     = errors.New("builder: valency field not declared by interface")
	ErrTypify              = errors.New("builder: value does not typecheck against its semantic type")
	ErrConfinement         = errors.New("builder: value violates confinement bounds")
	ErrStrictEncode        = errors.New("builder: value failed to strict-encode")
	ErrTooManyLayers1      = errors.New("builder: contract already carries the maximum number of alt layer-1 chains")
	ErrInvalidLayer1       = errors.New("builder: layer-1 chain not enabled for this contract")
	ErrNoOperationSubtype  = errors.New("builder: interface declares no default transition type")
	ErrTransitionNotFound  = errors.New("builder: transition type not declared by interface")
	ErrNoDefaultAssignment = errors.New("builder: interface declares no default assignment type")
	ErrAlreadyComplete     = errors.New("builder: builder has already been completed; it is single-use")
)

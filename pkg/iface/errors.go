// Copyright 2025 Certen Protocol

package iface

import "errors"

var (
	// ErrMetadataNotFound is returned when a builder or reader asks for
	// a metadata field name the interface does not declare.
	ErrMetadataNotFound = errors.New("iface: metadata field not found")

	// ErrGlobalNotFound is returned when a global state field name is
	// not declared by the interface.
	ErrGlobalNotFound = errors.New("iface: global state field not found")

	// ErrAssignmentNotFound is returned when an owned-state field name
	// is not declared by the interface.
	ErrAssignmentNotFound = errors.New("iface: assignment field not found")

	// ErrValencyNotFound is returned when a valency field name is not
	// declared by the interface.
	ErrValencyNotFound = errors.New("iface: valency field not found")

	// ErrTransitionNotFound is returned when a named transition type is
	// not declared by the interface implementation.
	ErrTransitionNotFound = errors.New("iface: named transition not found")

	// ErrNoDefaultAssignment is returned when a builder needs the
	// interface's default assignment name but none is declared.
	ErrNoDefaultAssignment = errors.New("iface: no default assignment declared")

	// ErrNoOperationSubtype is returned when the interface does not
	// declare a default operation (transition) type for named builders.
	ErrNoOperationSubtype = errors.New("iface: no default operation type declared")

	// ErrInconsistent is returned by ConsistencyCheck when an
	// interface implementation references a schema type the schema
	// itself does not declare. This represents a programmer/packaging
	// error, not a runtime data error.
	ErrInconsistent = errors.New("iface: interface implementation inconsistent with schema")
)

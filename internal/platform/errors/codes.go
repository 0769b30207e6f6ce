// Package errors provides structured error handling for the taskboard services.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Project errors
	CodeProjectAlreadyExists       Code = "PROJECT_ALREADY_EXISTS"
	CodeProjectNotFound            Code = "PROJECT_NOT_FOUND"
	CodeProjectTitleEmpty          Code = "PROJECT_TITLE_EMPTY"
	CodeProjectCreatorRequired     Code = "PROJECT_CREATOR_REQUIRED"
	CodeProjectUpdateNoOp          Code = "PROJECT_UPDATE_NOOP"
	CodeProjectMemberRequired      Code = "PROJECT_MEMBER_REQUIRED"
	CodeProjectAlreadyMember       Code = "PROJECT_ALREADY_MEMBER"
	CodeProjectNotAMember          Code = "PROJECT_NOT_A_MEMBER"
	CodeProjectCannotRemoveCreator Code = "PROJECT_CANNOT_REMOVE_CREATOR"

	// Task errors
	CodeTaskIDRequired        Code = "TASK_ID_REQUIRED"
	CodeTaskAlreadyExists     Code = "TASK_ALREADY_EXISTS"
	CodeTaskNotFound          Code = "TASK_NOT_FOUND"
	CodeTaskNameEmpty         Code = "TASK_NAME_EMPTY"
	CodeTaskUpdateNoOp        Code = "TASK_UPDATE_NOOP"
	CodeTaskAssigneeRequired  Code = "TASK_ASSIGNEE_REQUIRED"
	CodeTaskAssigneeNotMember Code = "TASK_ASSIGNEE_NOT_MEMBER"

	// Tag errors
	CodeTagIDRequired      Code = "TAG_ID_REQUIRED"
	CodeTagAlreadyExists   Code = "TAG_ALREADY_EXISTS"
	CodeTagNotFound        Code = "TAG_NOT_FOUND"
	CodeTagNameEmpty       Code = "TAG_NAME_EMPTY"
	CodeTagCreatorRequired Code = "TAG_CREATOR_REQUIRED"

	// User errors
	CodeUserNotFound  Code = "USER_NOT_FOUND"
	CodeUserNameEmpty Code = "USER_NAME_EMPTY"

	// Request errors
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// Runtime errors
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeInternal            Code = "INTERNAL"
)

// Kind groups codes into the error taxonomy shared by every transport.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidArgument    Kind = "invalid_argument"
	KindConflict           Kind = "conflict"
	KindPreconditionFailed Kind = "precondition_failed"
	KindAborted            Kind = "aborted"
	KindInternal           Kind = "internal"
)

// Kind returns the taxonomy bucket for the code.
func (c Code) Kind() Kind {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeProjectTitleEmpty,
		CodeProjectCreatorRequired,
		CodeProjectMemberRequired,
		CodeTaskIDRequired,
		CodeTaskNameEmpty,
		CodeTaskAssigneeRequired,
		CodeTagIDRequired,
		CodeTagNameEmpty,
		CodeTagCreatorRequired,
		CodeUserNameEmpty,
		CodeRequestInvalid:
		return KindInvalidArgument

	// NotFound - referenced project/task/tag/user does not exist
	case CodeProjectNotFound,
		CodeTaskNotFound,
		CodeTagNotFound,
		CodeUserNotFound:
		return KindNotFound

	// Conflict - duplicates and identity rules
	case CodeProjectAlreadyExists,
		CodeProjectAlreadyMember,
		CodeProjectCannotRemoveCreator,
		CodeTaskAlreadyExists,
		CodeTagAlreadyExists:
		return KindConflict

	// PreconditionFailed - state doesn't allow operation
	case CodeProjectUpdateNoOp,
		CodeProjectNotAMember,
		CodeTaskUpdateNoOp,
		CodeTaskAssigneeNotMember:
		return KindPreconditionFailed

	case CodeConcurrencyConflict:
		return KindAborted

	default:
		return KindInternal
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindConflict:
		return codes.AlreadyExists
	case KindPreconditionFailed:
		return codes.FailedPrecondition
	case KindAborted:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

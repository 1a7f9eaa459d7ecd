package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates the caller's credentials were missing or wrong.
var ErrUnauthorized = errors.New("unauthorized")

// ErrLocked indicates that a record inspected mid-run was locked by a
// concurrent process. The run aborts with nothing committed; the caller may
// retry the whole run.
var ErrLocked = errors.New("record locked by concurrent process")

// ErrRemote indicates that a record-store call failed. Fatal for the
// current run.
var ErrRemote = errors.New("record store operation failed")

package patch

import "errors"

var (
	ErrUnknownOp        = errors.New("patch: unknown operation code")
	ErrMissingPath      = errors.New("patch: operation missing path")
	ErrMissingValue     = errors.New("patch: add/replace operation missing value")
	ErrUnexpectedValue  = errors.New("patch: remove operation carries a value")
	ErrUnsupportedValue = errors.New("patch: unsupported tree value")
)

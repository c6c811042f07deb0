package catalog

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes reported by DefinitionError.
const (
	ErrCodeCUE             = "CUE_ERROR"
	ErrCodeNoFilters       = "NO_FILTERS"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodeInvalidExpr     = "INVALID_EXPRESSION"
	ErrCodeInvalidOp       = "INVALID_OPERATOR"
	ErrCodeInvalidValue    = "INVALID_VALUE"
	ErrCodeUnknownEntity   = "UNKNOWN_ENTITY"
	ErrCodeUnknownField    = "UNKNOWN_FIELD"
	ErrCodeValueKind       = "VALUE_KIND"
	ErrCodeUnknownRelation = "UNKNOWN_RELATION"
	ErrCodeRelationKind    = "RELATION_KIND"
	ErrCodeUnknownSubtype  = "UNKNOWN_SUBTYPE"
	ErrCodeUnknownFilter   = "UNKNOWN_FILTER"
)

// DefinitionError reports a problem with one filter definition.
// Path locates the offending node, e.g. "filters.vip.where.and[1].where".
type DefinitionError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos
}

func (e *DefinitionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// IsDefinitionError reports whether err wraps a DefinitionError with the
// given code. An empty code matches any DefinitionError.
func IsDefinitionError(err error, code string) bool {
	var de *DefinitionError
	if !errors.As(err, &de) {
		return false
	}
	return code == "" || de.Code == code
}

func defErr(code, path string, pos token.Pos, format string, args ...any) *DefinitionError {
	return &DefinitionError{Code: code, Path: path, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, path string) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &DefinitionError{Code: ErrCodeCUE, Path: path, Message: err.Error()}
	}

	// Return first error with position info
	first := errs[0]
	de := &DefinitionError{Code: ErrCodeCUE, Path: path, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		de.Pos = positions[0]
	}
	return de
}

var noPos token.Pos

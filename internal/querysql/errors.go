package querysql

import (
	"errors"
	"fmt"
)

// Error codes reported by TranslateError.
const (
	CodeOpaque            = "OPAQUE"
	CodeUnknownTable      = "UNKNOWN_TABLE"
	CodeUnknownRelation   = "UNKNOWN_RELATION"
	CodeNoDiscriminator   = "NO_DISCRIMINATOR"
	CodeInvalidIdentifier = "INVALID_IDENTIFIER"
	CodeUnsupported       = "UNSUPPORTED"
)

// TranslateError reports a predicate node the compiler could not translate.
// Path locates the node using the same notation as queryir.Validate.
type TranslateError struct {
	Code    string
	Path    string
	Message string
}

func (e *TranslateError) Error() string {
	return fmt.Sprintf("%s: %s [%s]", e.Path, e.Message, e.Code)
}

// IsTranslateError reports whether err wraps a TranslateError with the given
// code. An empty code matches any TranslateError.
func IsTranslateError(err error, code string) bool {
	var te *TranslateError
	if !errors.As(err, &te) {
		return false
	}
	return code == "" || te.Code == code
}

func translateErr(code, path, format string, args ...any) error {
	return &TranslateError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

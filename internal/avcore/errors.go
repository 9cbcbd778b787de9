package avcore

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Error codes for the spec's closed taxonomy (§7). Errors never
// substitute NotFound or IoError for one another — call sites branch on
// Code() when they need to distinguish, e.g. to decide whether a Verdict
// should be Error(NotFound) vs Error(IoError).
const (
	CodeNotFound   goerrors.ErrorCode = "AV1000"
	CodeIoError    goerrors.ErrorCode = "AV1001"
	CodeParseError goerrors.ErrorCode = "AV1002"
	CodeStateError goerrors.ErrorCode = "AV1003"
	CodeFatal      goerrors.ErrorCode = "AV1004"
)

// newError builds a *goerrors.Error tagged with one of the codes above
// and a component name for log correlation.
func newError(code goerrors.ErrorCode, component, format string, args ...interface{}) *goerrors.Error {
	msg := fmt.Sprintf(format, args...)
	return goerrors.New(code, msg).WithContext("component", component)
}

func errNotFound(path string) error {
	return newError(CodeNotFound, "avcore", "path not found: %s", path).WithSeverity("error")
}

func errIO(op, path string, cause error) error {
	return newError(CodeIoError, "avcore", "%s failed for %s: %v", op, path, cause).WithSeverity("error")
}

func errParse(path string, line int, reason string) error {
	return newError(CodeParseError, "avcore", "%s:%d: %s", path, line, reason).WithSeverity("warning")
}

func errState(op, reason string) error {
	return newError(CodeStateError, "avcore", "%s: %s", op, reason).WithSeverity("warning")
}

func errFatal(op string, cause error) error {
	return newError(CodeFatal, "avcore", "%s: unrecoverable: %v", op, cause).WithSeverity("critical")
}

// CodeOf extracts the go-errors ErrorCode from err, if any was attached
// through this package's helpers.
func CodeOf(err error) (goerrors.ErrorCode, bool) {
	var ge *goerrors.Error
	if !asGoError(err, &ge) {
		return "", false
	}
	return ge.ErrorCode(), true
}

func asGoError(err error, target **goerrors.Error) bool {
	ge, ok := err.(*goerrors.Error)
	if !ok {
		return false
	}
	*target = ge
	return true
}

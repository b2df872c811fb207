package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/ragged/internal/configloader"
	"github.com/yaklabco/ragged/pkg/errs"
)

// Exit codes for ragged, following sysexits.h where one fits.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates an error with no more specific code.
	ExitFailure = 1

	// ExitInvalidUsage indicates invalid command-line usage or option values.
	ExitInvalidUsage = 64

	// ExitDataError indicates malformed input or data that cannot be combined.
	ExitDataError = 65

	// ExitInternalError indicates a broken layout invariant.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 78
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var verr *configloader.ValidationError
	if errors.As(err, &verr) {
		return ExitConfigError
	}

	var perr *fs.PathError
	if errors.As(err, &perr) {
		return ExitIOError
	}

	switch errs.KindOf(err) {
	case errs.KindInvalidArgument:
		return ExitInvalidUsage
	case errs.KindStructuralInvariant:
		return ExitInternalError
	case "":
		return ExitFailure
	default:
		return ExitDataError
	}
}

package rules

import (
	"errors"
	"fmt"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

// ErrUnknownPlaceholder is reported when an executable argument references a
// placeholder that does not exist or does not apply to the dialog kind.
var ErrUnknownPlaceholder = errors.New("unknown placeholder")

// RuleFileParseError aborts the run before any dialog is processed.
type RuleFileParseError struct {
	Path string
	Err  error
}

func (e *RuleFileParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse rules: %s", e.Err)
	}

	return fmt.Sprintf("parse rules file %s: %s", e.Path, e.Err)
}

func (e *RuleFileParseError) Unwrap() error {
	return e.Err
}

type RemoteFetchError struct {
	Dialog model.Dialog
	Err    error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetch full info of %s: %s", e.Dialog, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

type ParticipantEnumerationError struct {
	Dialog model.Dialog
	Err    error
}

func (e *ParticipantEnumerationError) Error() string {
	return fmt.Sprintf("list participants of %s: %s", e.Dialog, e.Err)
}

func (e *ParticipantEnumerationError) Unwrap() error {
	return e.Err
}

type ExternalProcessError struct {
	Path string
	Err  error
}

func (e *ExternalProcessError) Error() string {
	return fmt.Sprintf("run %s: %s", e.Path, e.Err)
}

func (e *ExternalProcessError) Unwrap() error {
	return e.Err
}

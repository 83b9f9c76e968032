// Package validation runs ordered lists of zero-argument validators and
// turns the first failure into a wrapped error, so callers across the
// scheduler (task intake, config loading, ...) share one error shape.
package validation

import "github.com/pkg/errors"

// Validator checks one condition and reports a failure as an error. It
// takes no arguments so a closure can capture whatever state it needs to
// check.
type Validator func() error

// Validate runs a list of validators in order. If any fails, the returned
// error wraps it with baseErrMsg.
func Validate(baseErrMsg string, validators ...Validator) error {
	for _, v := range validators {
		if err := v(); err != nil {
			return errors.Wrap(err, baseErrMsg)
		}
	}
	return nil
}

package validation

import (
	"github.com/pkg/errors"

	"github.com/spdfg/cloudsim-eec/internal/model"
)

// TaskValidator validates one or more attributes of a task.
type TaskValidator func(model.Task) error

// ValidatorForTask returns a Validator that runs every given TaskValidator
// against t, stopping at the first one that fails.
func ValidatorForTask(t model.Task, validators ...TaskValidator) Validator {
	return func() error {
		for _, tv := range validators {
			if err := tv(t); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithGuestOSValidator returns a TaskValidator that checks the task's
// required guest OS can actually run on its required CPU architecture,
// per the fixed compatibility matrix in GuestOS.Compatible.
func WithGuestOSValidator() TaskValidator {
	return func(t model.Task) error {
		if !t.RequiredGuestOS.Compatible(t.RequiredCPU) {
			return errors.Errorf("guest OS %s cannot run on CPU %s", t.RequiredGuestOS, t.RequiredCPU)
		}
		return nil
	}
}

// WithMemoryValidator returns a TaskValidator that checks the task
// requests a positive amount of memory.
func WithMemoryValidator() TaskValidator {
	return func(t model.Task) error {
		if t.RequiredMemory <= 0 {
			return errors.New("required memory must be positive")
		}
		return nil
	}
}

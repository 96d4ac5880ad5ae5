// SPDX-FileCopyrightText: 2022-present Intel Corporation
// SPDX-FileCopyrightText: 2020-present Open Networking Foundation <info@opennetworking.org>
//
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"fmt"
)

// UpdateFailedError is returned when a writer fails. Processed lists the modifications
// that succeeded before it, in execution order, so they can be reverted.
type UpdateFailedError struct {
	Processed []*Modification
	Failed    *Modification
	Cause     error
}

func (e *UpdateFailedError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Failed, e.Cause)
}

func (e *UpdateFailedError) Unwrap() error {
	return e.Cause
}

// RevertFailedError is returned when undoing a modification fails. The device may be
// left partially configured.
type RevertFailedError struct {
	Failed *Modification
	Cause  error
	// Original is the error that triggered the revert, when known
	Original error
}

func (e *RevertFailedError) Error() string {
	what := "commit"
	if e.Failed != nil {
		what = e.Failed.String()
	}
	if e.Original != nil {
		return fmt.Sprintf("Failed to revert %s: %v (reverting after: %v)", what, e.Cause, e.Original)
	}
	return fmt.Sprintf("Failed to revert %s: %v", what, e.Cause)
}

func (e *RevertFailedError) Unwrap() error {
	return e.Cause
}

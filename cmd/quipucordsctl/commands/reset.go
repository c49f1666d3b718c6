package commands

import (
	qcerrors "github.com/quipucords/quipucordsctl/internal/errors"
)

// resetOutcome maps a reset result to the command's error. A reset that did
// not update the secret (declined confirmation, failed validation, store
// refusal) has already logged its reason, so it becomes a silent non-zero
// exit rather than a success.
func resetOutcome(updated bool, err error) error {
	if err != nil {
		return err
	}
	if !updated {
		return qcerrors.SilentError{}
	}
	return nil
}

package eventstore

import (
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
)

func storeError(err error, message string) error {
	return ferrors.WrapError(err, ferrors.CategoryEventStore, message).Retryable().Build()
}

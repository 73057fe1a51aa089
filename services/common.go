package services

import (
	"context"
	"errors"

	apperrors "storefront-service/errors"
	"storefront-service/logger"
	"storefront-service/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseObjectID converts a hex id, returning onInvalid for anything malformed.
func parseObjectID(raw string, onInvalid *apperrors.Error) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, onInvalid
	}
	return id, nil
}

// storeError maps repository failures: ErrNotFound becomes notFound and
// anything else an internal error logged with the request id.
func storeError(ctx context.Context, err error, notFound *apperrors.Error, op string) error {
	if errors.Is(err, repository.ErrNotFound) && notFound != nil {
		return notFound
	}
	logger.Error(ctx, op+" failed", err)
	return apperrors.Internal("Internal server error", err)
}

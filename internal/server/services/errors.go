// Package services contains the portal's business logic: identity, content
// and engagement. Services take the caller's *auth.Session explicitly and
// return only sentinel errors from internal/common; store failures are logged
// here and surface as common.ErrInfrastructure.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/blogportal/internal/common"
	"github.com/dmitrijs2005/blogportal/internal/logging"
)

var domainErrors = []error{
	common.ErrorNotFound,
	common.ErrDuplicateEmail,
	common.ErrInvalidCredentials,
	common.ErrUnauthenticated,
	common.ErrForbidden,
	common.ErrEmptyContent,
	common.ErrValidation,
	common.ErrInfrastructure,
}

// translate passes domain errors through and turns anything else into
// common.ErrInfrastructure after logging it under op.
func translate(ctx context.Context, log logging.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return known
		}
	}
	log.Error(ctx, "store failure", "op", op, "error", err)
	return common.ErrInfrastructure
}

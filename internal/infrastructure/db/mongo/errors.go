package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/planactions/customfields/internal/core/domain"
)

// Server error codes the repositories translate.
const (
	codeUnauthorized = 13
	codeForbidden    = 8000 // Atlas: user is not allowed to do action
)

// translate maps an authorization rejection from the server onto
// domain.ErrAccessDenied and passes every other error through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(codeUnauthorized) || se.HasErrorCode(codeForbidden)) {
		return errors.Join(domain.ErrAccessDenied, err)
	}
	return err
}

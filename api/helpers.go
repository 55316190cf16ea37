package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/verdict"
	"github.com/xraph/verdict/decisionlog"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var denied *verdict.NotAuthorizedError
	if errors.As(err, &denied) {
		return forge.Forbidden(denied.Error())
	}
	if errors.Is(err, decisionlog.ErrNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, verdict.ErrPolicyNotFound) || errors.Is(err, verdict.ErrRuleNotFound) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrScopeNotDefined) || errors.Is(err, verdict.ErrUnresolvableContextKey) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, verdict.ErrRecursiveEvaluation) {
		return forge.BadRequest(err.Error())
	}
	return err
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

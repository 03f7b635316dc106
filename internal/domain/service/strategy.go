package service

import (
	"FactorBack/internal/domain/models"
)

// Policy converts one factor vector into a target position weight.
// This is the single injection point for strategy logic: the simulator
// never inspects factors itself, so alternative combination schemes
// plug in without touching execution code.
//
// Weight must lie in [-1, 1] when defined. An undefined weight means
// the policy has no opinion for that date.
type Policy interface {
	Name() string
	Weight(v models.FactorVector) models.Value
}

package evaluation

import "errors"

var (
	ErrPeriodNotFound   = errors.New("evaluation period not found")
	ErrEmployeeNotFound = errors.New("employee not found")

	ErrNegativeWeight = errors.New("wbs weight must not be negative")
	ErrInvalidWeight  = errors.New("wbs weight must be a finite number")
	ErrInvalidScore   = errors.New("evaluation score must be a finite number")
	ErrInvalidMaxRate = errors.New("period max rate must be a positive finite number")
)

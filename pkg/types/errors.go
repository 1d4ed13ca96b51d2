package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidBenefitID  = errors.New("invalid benefit ID")
	ErrInvalidSourceType = errors.New("source type must be VECTOR or RULES")
	ErrInvalidSimilarity = errors.New("similarity must be between -1 and 1")
)

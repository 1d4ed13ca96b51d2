package recommend

import "errors"

var (
	// ErrResolverUnavailable reports that the eligibility store could not
	// be queried. Because eligibility is a hard gate this empties the
	// result; callers should present it as a retryable failure, not as
	// "no eligible benefits".
	ErrResolverUnavailable = errors.New("eligibility resolver unavailable")

	// ErrDetailResolution reports that expanding the ranked identifiers
	// into full records failed. The call returns no results rather than
	// partially tagged ones.
	ErrDetailResolution = errors.New("detail resolution failed")
)

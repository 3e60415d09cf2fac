package service

import "time"

// resolveValidity computes an authorization code's lifetime from the
// configured default and an optional per-request override. A strictly
// positive override wins; zero or negative overrides are treated as
// unset. The final value must be positive.
func resolveValidity(def, override time.Duration) (time.Duration, error) {
	validity := def
	if override > 0 {
		validity = override
	}

	if validity <= 0 {
		return 0, wrapErr(ErrInvalidConfiguration, nil)
	}
	return validity, nil
}

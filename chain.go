package auth

// Check is a single validation step. It records at most one error on the
// outcome and reports whether the subject passed.
type Check func(o *Outcome) bool

// RunChain runs checks in order and stops at the first one that fails.
// Error precedence follows the order of checks.
func RunChain(o *Outcome, checks ...Check) bool {
	for _, check := range checks {
		if check == nil {
			continue
		}
		if !check(o) {
			return false
		}
	}
	return true
}

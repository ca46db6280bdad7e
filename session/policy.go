package session

// LogoutPolicy decides whether the driver should request a logout on its own
// after a given number of loop iterations. It is consulted once per
// iteration with the 1-based iteration count.
type LogoutPolicy interface {
	ShouldLogout(iteration int64) bool
}

// LogoutPolicyFunc adapts a function to LogoutPolicy.
type LogoutPolicyFunc func(iteration int64) bool

// ShouldLogout implements LogoutPolicy.
func (f LogoutPolicyFunc) ShouldLogout(iteration int64) bool {
	return f(iteration)
}

type neverLogout struct{}

func (neverLogout) ShouldLogout(int64) bool { return false }

// NeverLogout returns a policy that never requests a logout.
func NeverLogout() LogoutPolicy {
	return neverLogout{}
}

type logoutAfter struct{ n int64 }

func (p logoutAfter) ShouldLogout(iteration int64) bool {
	return iteration == p.n
}

// LogoutAfter returns a policy that requests a logout when the loop reaches
// iteration n. n <= 0 behaves like NeverLogout.
func LogoutAfter(n int) LogoutPolicy {
	if n <= 0 {
		return neverLogout{}
	}
	return logoutAfter{n: int64(n)}
}

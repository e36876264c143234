package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Action is the class of request a window is tracked for. The same client
// gets an independent window per action.
type Action string

const (
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
	ActionGeneral  Action = "general"
)

// Policy caps Requests per Window.
type Policy struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// Validate rejects policies that could never admit anything.
func (p Policy) Validate() error {
	if p.Requests <= 0 {
		return fmt.Errorf("ratelimit: requests must be positive, got %d", p.Requests)
	}
	if p.Window <= 0 {
		return fmt.Errorf("ratelimit: window must be positive, got %s", p.Window)
	}
	return nil
}

func (p Policy) String() string {
	return fmt.Sprintf("%d/%s", p.Requests, p.Window)
}

// Default policies per action.
var (
	// LoginPolicy slows password guessing from a single origin.
	LoginPolicy = Policy{Requests: 5, Window: 15 * time.Minute}

	// RegisterPolicy stops bulk account creation.
	RegisterPolicy = Policy{Requests: 3, Window: time.Hour}

	// GeneralPolicy covers every other protected action.
	GeneralPolicy = Policy{Requests: 100, Window: 15 * time.Minute}
)

// Policies maps each action to its policy.
type Policies map[Action]Policy

// DefaultPolicies returns a fresh copy of the default policy table.
func DefaultPolicies() Policies {
	return Policies{
		ActionLogin:    LoginPolicy,
		ActionRegister: RegisterPolicy,
		ActionGeneral:  GeneralPolicy,
	}
}

// Validate checks every policy and that a general policy exists to fall
// back on.
func (ps Policies) Validate() error {
	if _, ok := ps[ActionGeneral]; !ok {
		return fmt.Errorf("ratelimit: missing %q policy", ActionGeneral)
	}
	for action, p := range ps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", action, err)
		}
	}
	return nil
}

// ParsePolicyFromEnv reads overrides for one action from the environment.
// Variables follow the pattern RATELIMIT_{ACTION}_{FIELD}, for example
// RATELIMIT_LOGIN_REQUESTS=10 and RATELIMIT_LOGIN_WINDOW=5m. The window also
// accepts a bare number of seconds. Invalid values leave the default alone.
func ParsePolicyFromEnv(action Action, def Policy) Policy {
	p := def
	prefix := "RATELIMIT_" + strings.ToUpper(string(action))

	if val := os.Getenv(prefix + "_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			p.Requests = n
		}
	}

	if val := os.Getenv(prefix + "_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			p.Window = d
		} else if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
			p.Window = time.Duration(secs) * time.Second
		}
	}

	return p
}

// PoliciesFromEnv applies ParsePolicyFromEnv to every action in base.
func PoliciesFromEnv(base Policies) Policies {
	out := make(Policies, len(base))
	for action, p := range base {
		out[action] = ParsePolicyFromEnv(action, p)
	}
	return out
}

package auth

// Identity is a normalized assertion from an external provider that has
// already been cryptographically verified. It carries facts only; all
// account decisions happen in the auth service.
type Identity struct {
	Provider      string // e.g. "google"
	Subject       string // provider-scoped unique user identifier (sub claim)
	Email         string // verified email returned by the provider
	Name          string
	Image         string
	EmailVerified bool
}

package auth

import (
	"strings"
)

type IdentityState int

const (
	Anonymous IdentityState = iota
	Authenticated
	Rejected
)

func (s IdentityState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	default:
		return "anonymous"
	}
}

// Identity is the outcome of resolving a request credential. Rejected means a
// credential was presented but could not be verified.
type Identity struct {
	State     IdentityState
	Principal *Principal
	Err       error
}

// UserID returns the principal id for engagement recording. Rejected collapses
// to anonymous.
func (i Identity) UserID() *int64 {
	if i.State != Authenticated || i.Principal == nil {
		return nil
	}
	id := i.Principal.ID
	return &id
}

type Verifier interface {
	Verify(raw string) (*Principal, error)
}

// Resolve turns an Authorization header value into an Identity. An empty header
// is anonymous.
func Resolve(verifier Verifier, header string) Identity {
	token := BearerToken(header)
	if token == "" {
		return Identity{State: Anonymous}
	}

	principal, err := verifier.Verify(token)
	if err != nil {
		return Identity{State: Rejected, Err: err}
	}

	return Identity{State: Authenticated, Principal: principal}
}

func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

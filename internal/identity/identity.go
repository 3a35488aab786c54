// Package identity supplies the opaque owner identifier that scopes remote
// records. Sign-in is anonymous: no credentials, no profile, just a stable
// ID minted on first use and reused for the lifetime of the local data
// directory. Any failure here means the session runs local-only.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitflow/project/internal/persist"
)

var ErrSignInFailed = errors.New("anonymous sign-in failed")

const ownerKey = "identity:owner"

// Session is the result of a successful anonymous sign-in.
type Session struct {
	OwnerID string `json:"owner_id"`
}

// Registrar records an owner ID server-side so remote documents can be
// scoped to it.
type Registrar interface {
	EnsureOwner(ctx context.Context, ownerID string, seenAt time.Time) error
}

type Service struct {
	Registrar Registrar
	KV        persist.KV

	NewID func() string
	Now   func() time.Time
}

func NewService(registrar Registrar, kv persist.KV) *Service {
	return &Service{
		Registrar: registrar,
		KV:        kv,
		NewID:     uuid.NewString,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// SignInAnonymously returns the session for this installation, minting and
// registering a fresh owner ID the first time. The ID sticks in the local
// store so the same anonymous identity survives restarts.
func (s *Service) SignInAnonymously(ctx context.Context) (Session, error) {
	ownerID, _ := s.KV.Get(ownerKey)
	ownerID = strings.TrimSpace(ownerID)
	minted := false
	if ownerID == "" {
		ownerID = s.NewID()
		minted = true
	}

	if err := s.Registrar.EnsureOwner(ctx, ownerID, s.Now()); err != nil {
		return Session{}, errors.Join(ErrSignInFailed, err)
	}

	if minted {
		if err := s.KV.Set(ownerKey, ownerID); err != nil {
			// The remote side already knows the owner; losing the local
			// pin only costs a new identity next start.
			return Session{OwnerID: ownerID}, nil
		}
	}
	return Session{OwnerID: ownerID}, nil
}

// Package profile holds the worker profile types shared between the auth
// bounded context's public API and its internal service. It exists as a leaf
// package so that internal/auth can wire its subpackages without an import
// cycle; other domains should import these types via package auth.
package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile represents worker information that can be shared with other domains.
type Profile struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	Email       string
	DisplayName string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkerProvider is an interface that other domains can use to resolve
// worker information without depending on auth internals.
type WorkerProvider interface {
	GetWorkerByID(ctx context.Context, workerID uuid.UUID) (Profile, error)
}

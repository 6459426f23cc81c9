// Package auth provides authentication for the mobile app workforce.
// This file defines the public API of the auth bounded context.
// Only types and interfaces defined here should be imported by other domains.
package auth

import (
	"genba_backend/internal/auth/profile"
)

// Profile represents worker information that can be shared with other domains.
type Profile = profile.Profile

// WorkerProvider is an interface that other domains can use to resolve
// worker information without depending on auth internals.
type WorkerProvider = profile.WorkerProvider

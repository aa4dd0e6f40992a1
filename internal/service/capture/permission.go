package capture

import "context"

// PermissionStatus reports whether microphone access is granted and
// whether the user can still be prompted.
type PermissionStatus struct {
	Granted     bool
	CanAskAgain bool
}

// Permission is the microphone permission provider contract. On mobile
// platforms this wraps the OS prompt; the daemon uses a statically
// configured provider.
type Permission interface {
	// Request asks for microphone access, prompting if allowed.
	Request(ctx context.Context) (PermissionStatus, error)

	// Status returns the current permission state without prompting.
	Status(ctx context.Context) (PermissionStatus, error)
}

// StaticPermission is a Permission with a fixed answer, configured from
// the environment at startup.
type StaticPermission struct {
	Granted bool
}

func (p StaticPermission) Request(ctx context.Context) (PermissionStatus, error) {
	return PermissionStatus{Granted: p.Granted, CanAskAgain: false}, nil
}

func (p StaticPermission) Status(ctx context.Context) (PermissionStatus, error) {
	return PermissionStatus{Granted: p.Granted, CanAskAgain: false}, nil
}

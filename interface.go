package yalealarm

import "context"

// AlarmClient defines the interface for panel and device operations.
// Client implements this interface, enabling mocking for tests.
type AlarmClient interface {
	// Session
	Authenticate(ctx context.Context) (TokenPair, error)
	Tokens() TokenPair
	SetTokens(pair TokenPair) error
	BaseURL() string

	// Panel operations
	GetArmedStatus(ctx context.Context) (ArmState, error)
	SetArmedStatus(ctx context.Context, mode ArmState) (bool, error)
	ArmFull(ctx context.Context) (bool, error)
	ArmPartial(ctx context.Context) (bool, error)
	Disarm(ctx context.Context) (bool, error)
	IsArmed(ctx context.Context) (bool, error)
	TriggerPanic(ctx context.Context) (bool, error)
	GetStatus(ctx context.Context) (string, error)
	GetOnline(ctx context.Context) (map[string]any, error)
	GetCycle(ctx context.Context) (map[string]any, error)
	GetPanelInfo(ctx context.Context) (map[string]any, error)
	GetHistory(ctx context.Context) ([]map[string]any, error)
	GetAuthCheck(ctx context.Context) (map[string]any, error)
	GetAll(ctx context.Context) (*AlarmData, error)

	// Device operations
	GetAllDevices(ctx context.Context) ([]Device, error)
	GetLocksStatus(ctx context.Context) (map[string]LockState, error)
	GetDoorsStatus(ctx context.Context) (map[string]DoorState, error)

	// Lock operations
	LockAPI() *DoorManAPI
}

// Compile-time interface check.
var _ AlarmClient = (*Client)(nil)

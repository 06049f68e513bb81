package yalealarm

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
)

const (
	endpointDeviceControl = "/api/panel/device_control/"
	endpointUnlock        = "/api/minigw/unlock/"
	endpointLockConfig    = "/api/minigw/lock/config/"
	endpointDeviceUpdate  = "/api/panel/device/"

	// Config register indexes used by the vendor app.
	configIdxVolume   = "01"
	configIdxAutolock = "02"

	autolockOn  = "FF"
	autolockOff = "00"

	// Lock status bitmask: bit 4 is the door-closed contact, bit 0 the
	// latch-locked flag.
	lockStatusBitClosed = 16
	lockStatusBitLocked = 1
)

// LockState derives the lock state from a door lock device record.
//
// When the mini gateway reports a hex bitmask, bit 4 means the door is
// closed and bit 0 means the latch is locked: closed and locked is LOCKED,
// closed and unlocked is UNLOCKED, and an open door is DOOR_OPEN no matter
// what the latch bit says. Without a bitmask the status1 text decides.
// The function is pure; same record, same answer.
func (d Device) LockState() LockState {
	if d.MinigwLockStatus != "" {
		status, err := strconv.ParseInt(d.MinigwLockStatus, 16, 64)
		if err != nil {
			return LockStateUnknown
		}
		closed := status&lockStatusBitClosed == lockStatusBitClosed
		locked := status&lockStatusBitLocked == lockStatusBitLocked
		switch {
		case closed && locked:
			return LockStateLocked
		case closed:
			return LockStateUnlocked
		default:
			return LockStateDoorOpen
		}
	}

	switch {
	case strings.Contains(d.Status1, "device_status.lock"):
		return LockStateLocked
	case strings.Contains(d.Status1, "device_status.unlock"):
		return LockStateUnlocked
	default:
		return LockStateUnknown
	}
}

// LockVolume is a lock speaker volume register value.
type LockVolume string

// Lock volume values as written by the vendor app.
const (
	LockVolumeHigh LockVolume = "03"
	LockVolumeLow  LockVolume = "02"
	LockVolumeOff  LockVolume = "01"
)

// LockConfig is the decoded lock configuration. Each field is a two
// character register value from the fixed-width configuration string.
type LockConfig struct {
	Volume      string
	Autolock    string
	Language    string
	ArmHoldTime string
}

// ParseLockConfig decodes the fixed-width configuration string reported in
// minigw_configuration_data. Returns ErrConfigTooShort when the string is
// shorter than the 32 characters the known registers occupy.
func ParseLockConfig(data string) (LockConfig, error) {
	if len(data) < 32 {
		return LockConfig{}, fmt.Errorf("%w: got %d characters", ErrConfigTooShort, len(data))
	}
	return LockConfig{
		Volume:      data[0:2],
		Autolock:    data[2:4],
		Language:    data[8:10],
		ArmHoldTime: data[30:32],
	}, nil
}

// Encode renders the configuration back to its fixed-width string form.
// Unknown registers are zero-filled. Encode and ParseLockConfig round
// trip over the known fields.
func (lc LockConfig) Encode() string {
	buf := []byte(strings.Repeat("0", 32))
	copy(buf[0:2], lc.Volume)
	copy(buf[2:4], lc.Autolock)
	copy(buf[8:10], lc.Language)
	copy(buf[30:32], lc.ArmHoldTime)
	return string(buf)
}

// String implements fmt.Stringer.
func (lc LockConfig) String() string {
	return fmt.Sprintf("volume: %s, autolock: %s, language: %s, armHoldTime: %s",
		lc.Volume, lc.Autolock, lc.Language, lc.ArmHoldTime)
}

// Lock mirrors a remote Doorman lock. It reflects the last observed
// remote state and can issue lock/unlock and configuration commands.
// Locks are usually obtained from DoorManAPI.Locks or DoorManAPI.Get.
type Lock struct {
	api    *DoorManAPI
	device Device
	name   string
	state  LockState
	config LockConfig
}

// newLock builds a Lock from a device record.
func newLock(device Device, api *DoorManAPI) *Lock {
	l := &Lock{api: api}
	l.Update(device)
	return l
}

// Update replaces the underlying device record and re-derives the state
// and configuration.
func (l *Lock) Update(device Device) {
	l.device = device
	l.name = device.Name
	l.state = device.LockState()
	if config, err := ParseLockConfig(device.MinigwConfigurationData); err == nil {
		l.config = config
	}
}

// Name returns the lock name.
func (l *Lock) Name() string { return l.name }

// State returns the last observed lock state.
func (l *Lock) State() LockState { return l.state }

// SetState overrides the locally tracked state. Command operations call
// this after an acknowledged state change.
func (l *Lock) SetState(state LockState) { l.state = state }

// Config returns the last observed lock configuration.
func (l *Lock) Config() LockConfig { return l.config }

// Area returns the panel area the lock belongs to.
func (l *Lock) Area() string { return l.device.Area }

// Zone returns the lock zone number.
func (l *Lock) Zone() string { return l.device.No }

// SID returns the lock device address.
func (l *Lock) SID() string { return l.device.Address }

// DeviceType returns the raw device type string.
func (l *Lock) DeviceType() DeviceType { return l.device.Type }

// String implements fmt.Stringer.
func (l *Lock) String() string {
	return fmt.Sprintf("%s [%s]", l.name, l.state)
}

// Close attempts to close (lock) the remote lock.
func (l *Lock) Close(ctx context.Context) (bool, error) {
	return l.api.CloseLock(ctx, l)
}

// Open attempts to open (unlock) the remote lock with the given pin code.
func (l *Lock) Open(ctx context.Context, pinCode string) (bool, error) {
	return l.api.OpenLock(ctx, l, pinCode)
}

// SetVolume sets the speaker volume of the lock.
func (l *Lock) SetVolume(ctx context.Context, volume LockVolume) (bool, error) {
	return l.api.SetVolume(ctx, l, volume)
}

// SetAutolock enables or disables auto lock.
func (l *Lock) SetAutolock(ctx context.Context, autolock bool) (bool, error) {
	return l.api.SetAutolock(ctx, l, autolock)
}

// DoorManAPI issues Doorman lock operations through a client session.
type DoorManAPI struct {
	client *Client
}

// Locks returns an iterator over the door locks available to this account.
// Stops iteration early if fetching the device list fails.
//
// Example:
//
//	for lock, err := range client.LockAPI().Locks(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(lock)
//	}
func (a *DoorManAPI) Locks(ctx context.Context) iter.Seq2[*Lock, error] {
	return func(yield func(*Lock, error) bool) {
		devices, err := a.client.GetAllDevices(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, device := range devices {
			if device.Type != DeviceTypeDoorLock {
				continue
			}
			if !yield(newLock(device, a), nil) {
				return
			}
		}
	}
}

// Get returns the lock with the given name.
// Returns ErrLockNotFound when no lock matches.
func (a *DoorManAPI) Get(ctx context.Context, name string) (*Lock, error) {
	for lock, err := range a.Locks(ctx) {
		if err != nil {
			return nil, err
		}
		if lock.Name() == name {
			return lock, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrLockNotFound, name)
}

// postCommand posts a command form and reports whether the API
// acknowledged it.
func (a *DoorManAPI) postCommand(ctx context.Context, endpoint string, form url.Values) (bool, error) {
	body, err := a.client.post(ctx, endpoint, form)
	if err != nil {
		return false, err
	}
	var resp codeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("failed to parse command response: %w (body: %s)", err, truncatePreview(body))
	}
	return resp.Code == codeSuccess, nil
}

// CloseLock closes the given lock. On success the lock's tracked state is
// set to LOCKED.
func (a *DoorManAPI) CloseLock(ctx context.Context, lock *Lock) (bool, error) {
	form := url.Values{}
	form.Set("area", lock.Area())
	form.Set("zone", lock.Zone())
	form.Set("device_sid", lock.SID())
	form.Set("device_type", string(lock.DeviceType()))
	form.Set("request_value", "1")

	ok, err := a.postCommand(ctx, endpointDeviceControl, form)
	if err != nil {
		return false, err
	}
	if ok {
		lock.SetState(LockStateLocked)
	}
	return ok, nil
}

// OpenLock opens the given lock with a pin code. On success the lock's
// tracked state is set to UNLOCKED.
func (a *DoorManAPI) OpenLock(ctx context.Context, lock *Lock, pinCode string) (bool, error) {
	if pinCode == "" {
		return false, ErrEmptyPIN
	}

	form := url.Values{}
	form.Set("area", lock.Area())
	form.Set("zone", lock.Zone())
	form.Set("pincode", pinCode)

	ok, err := a.postCommand(ctx, endpointUnlock, form)
	if err != nil {
		return false, err
	}
	if ok {
		lock.SetState(LockStateUnlocked)
	}
	return ok, nil
}

// putLockUpdate issues the device update call the vendor app sends after
// every configuration write.
func (a *DoorManAPI) putLockUpdate(ctx context.Context) (bool, error) {
	body, err := a.client.put(ctx, endpointDeviceUpdate)
	if err != nil {
		return false, err
	}
	var resp codeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("failed to parse device update response: %w (body: %s)", err, truncatePreview(body))
	}
	return resp.Code == codeSuccess, nil
}

// SetVolume writes the volume register of the given lock.
func (a *DoorManAPI) SetVolume(ctx context.Context, lock *Lock, volume LockVolume) (bool, error) {
	form := url.Values{}
	form.Set("area", lock.Area())
	form.Set("zone", lock.Zone())
	form.Set("val", string(volume))
	form.Set("idx", configIdxVolume)

	ok, err := a.postCommand(ctx, endpointLockConfig, form)
	if err != nil || !ok {
		return false, err
	}
	lock.config.Volume = string(volume)
	return a.putLockUpdate(ctx)
}

// SetAutolock writes the auto lock register of the given lock.
func (a *DoorManAPI) SetAutolock(ctx context.Context, lock *Lock, autolock bool) (bool, error) {
	val := autolockOff
	if autolock {
		val = autolockOn
	}

	form := url.Values{}
	form.Set("area", lock.Area())
	form.Set("zone", lock.Zone())
	form.Set("val", val)
	form.Set("idx", configIdxAutolock)

	ok, err := a.postCommand(ctx, endpointLockConfig, form)
	if err != nil || !ok {
		return false, err
	}
	lock.config.Autolock = val
	return a.putLockUpdate(ctx)
}

package yalealarm

import (
	"context"
	"strings"
)

// GetAllDevices returns every device record known to the panel.
func (c *Client) GetAllDevices(ctx context.Context) ([]Device, error) {
	body, err := c.get(ctx, endpointDevicesStatus)
	if err != nil {
		return nil, err
	}
	return decodeData[[]Device](body, "device list")
}

// GetLocksStatus returns the decoded state of every door lock, keyed by
// device name.
func (c *Client) GetLocksStatus(ctx context.Context) (map[string]LockState, error) {
	devices, err := c.GetAllDevices(ctx)
	if err != nil {
		return nil, err
	}

	locks := make(map[string]LockState)
	for _, device := range devices {
		if device.Type == DeviceTypeDoorLock {
			locks[device.Name] = device.LockState()
		}
	}
	return locks, nil
}

// GetDoorsStatus returns the state of every door contact sensor, keyed by
// device name.
func (c *Client) GetDoorsStatus(ctx context.Context) (map[string]DoorState, error) {
	devices, err := c.GetAllDevices(ctx)
	if err != nil {
		return nil, err
	}

	doors := make(map[string]DoorState)
	for _, device := range devices {
		if device.Type == DeviceTypeDoorContact {
			doors[device.Name] = doorContactState(device.Status1)
		}
	}
	return doors, nil
}

// doorContactState maps the status1 text of a door contact to its state.
func doorContactState(status1 string) DoorState {
	switch {
	case strings.Contains(status1, "device_status.dc_close"):
		return DoorStateClosed
	case strings.Contains(status1, "device_status.dc_open"):
		return DoorStateOpen
	default:
		return DoorStateUnknown
	}
}

package yalealarm

import "encoding/json"

// DeviceType identifies the kind of device attached to the panel.
type DeviceType string

// Device type constants as reported by the device_status endpoint.
const (
	DeviceTypeDoorLock    DeviceType = "device_type.door_lock"
	DeviceTypeDoorContact DeviceType = "device_type.door_contact"
	DeviceTypePIR         DeviceType = "device_type.pir"
	DeviceTypeKeypad      DeviceType = "device_type.keypad"
	DeviceTypeSiren       DeviceType = "device_type.bx"
)

// ArmState is a panel arm mode as accepted by the mode endpoint.
type ArmState string

// Panel arm modes.
const (
	ArmStateFull    ArmState = "arm"
	ArmStatePartial ArmState = "home"
	ArmStateDisarm  ArmState = "disarm"
)

// LockState is the derived state of a door lock. It is computed client-side
// from the lock status bitmask or the status1 text, never stored server-side.
type LockState string

// Lock states.
const (
	LockStateLocked   LockState = "locked"
	LockStateUnlocked LockState = "unlocked"
	LockStateDoorOpen LockState = "door_open"
	LockStateUnknown  LockState = "unknown"
)

// DoorState is the derived state of a door contact sensor.
type DoorState string

// Door contact states.
const (
	DoorStateClosed  DoorState = "closed"
	DoorStateOpen    DoorState = "open"
	DoorStateUnknown DoorState = "unknown"
)

// Device is a single record from the device_status endpoint. Fields the
// client does not interpret are left out; the raw record is available
// through GetAll for debugging.
type Device struct {
	Address string     `json:"address"`
	Area    string     `json:"area"`
	Name    string     `json:"name"`
	No      string     `json:"no"`
	Status1 string     `json:"status1"`
	Type    DeviceType `json:"type"`

	// MinigwLockStatus is a hex bitmask string, present on door locks
	// paired through a mini gateway. Empty when the gateway does not
	// report it.
	MinigwLockStatus string `json:"minigw_lock_status"`

	// MinigwConfigurationData is the fixed-width encoded lock
	// configuration string. See ParseLockConfig.
	MinigwConfigurationData string `json:"minigw_configuration_data"`
}

// dataEnvelope is the common {"data": ...} wrapper on read endpoints.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// codeResponse is the common command acknowledgement body.
type codeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AlarmData is a full snapshot of every read endpoint, for debugging and
// local inspection. Each field is the raw "data" payload of its endpoint.
type AlarmData struct {
	Devices   json.RawMessage
	Mode      json.RawMessage
	Status    json.RawMessage
	Cycle     json.RawMessage
	Online    json.RawMessage
	History   json.RawMessage
	PanelInfo json.RawMessage
	AuthCheck json.RawMessage
}

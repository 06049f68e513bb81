package yalealarm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigData = "03FF0000en000000000000000000000005"

func TestDevice_LockState(t *testing.T) {
	tests := []struct {
		name       string
		lockStatus string
		status1    string
		want       LockState
	}{
		{"bitmask closed and locked", "11", "", LockStateLocked},
		{"bitmask closed and unlocked", "10", "", LockStateUnlocked},
		{"bitmask open and unlocked", "00", "", LockStateDoorOpen},
		{"bitmask open and locked", "01", "", LockStateDoorOpen},
		{"bitmask with extra bits", "7F", "", LockStateLocked},
		{"bitmask overrides status text", "10", "device_status.lock", LockStateUnlocked},
		{"malformed bitmask", "zz", "device_status.lock", LockStateUnknown},
		{"fallback locked", "", "device_status.lock", LockStateLocked},
		{"fallback unlocked", "", "device_status.unlock", LockStateUnlocked},
		{"fallback unknown", "", "device_status.dc_close", LockStateUnknown},
		{"empty record", "", "", LockStateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := Device{
				Type:             DeviceTypeDoorLock,
				Status1:          tt.status1,
				MinigwLockStatus: tt.lockStatus,
			}
			assert.Equal(t, tt.want, device.LockState())
		})
	}

	t.Run("deterministic", func(t *testing.T) {
		device := Device{MinigwLockStatus: "11"}
		first := device.LockState()
		for range 10 {
			assert.Equal(t, first, device.LockState())
		}
	})
}

func TestLockConfig(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		config, err := ParseLockConfig(testConfigData)
		require.NoError(t, err)
		assert.Equal(t, "03", config.Volume)
		assert.Equal(t, "FF", config.Autolock)
		assert.Equal(t, "en", config.Language)
		assert.Equal(t, "00", config.ArmHoldTime)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ParseLockConfig("03FF")
		assert.ErrorIs(t, err, ErrConfigTooShort)
	})

	t.Run("round trip", func(t *testing.T) {
		config, err := ParseLockConfig(testConfigData)
		require.NoError(t, err)

		reparsed, err := ParseLockConfig(config.Encode())
		require.NoError(t, err)
		assert.Equal(t, config, reparsed)
	})

	t.Run("encode zero-fills unknown registers", func(t *testing.T) {
		config := LockConfig{Volume: "02", Autolock: "00", Language: "sv", ArmHoldTime: "1E"}
		assert.Equal(t, "02000000sv000000000000000000001E", config.Encode())
		assert.Len(t, config.Encode(), 32)
	})

	t.Run("string", func(t *testing.T) {
		config := LockConfig{Volume: "03", Autolock: "FF", Language: "en", ArmHoldTime: "00"}
		assert.Equal(t, "volume: 03, autolock: FF, language: en, armHoldTime: 00", config.String())
	})
}

// lockTestServer serves a device list with one lock and one door contact,
// and records command posts.
func lockTestServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var commands []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/panel/device_status/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{
					"address":                   "RF:00:11:22",
					"area":                      "1",
					"name":                      "frontdoor",
					"no":                        "3",
					"status1":                   "device_status.lock",
					"type":                      "device_type.door_lock",
					"minigw_lock_status":        "11",
					"minigw_configuration_data": testConfigData,
				},
				{
					"address": "RF:00:11:23",
					"area":    "1",
					"name":    "backdoor-contact",
					"no":      "4",
					"status1": "device_status.dc_close",
					"type":    "device_type.door_contact",
				},
			},
		})
	})
	handleCommand := func(endpoint string) {
		mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			commands = append(commands, endpoint+"?"+r.PostForm.Encode())
			json.NewEncoder(w).Encode(map[string]string{"code": "000"})
		})
	}
	handleCommand("/api/panel/device_control/")
	handleCommand("/api/minigw/unlock/")
	handleCommand("/api/minigw/lock/config/")
	mux.HandleFunc("/api/panel/device/", func(w http.ResponseWriter, r *http.Request) {
		commands = append(commands, "/api/panel/device/")
		json.NewEncoder(w).Encode(map[string]string{"code": "000"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &commands
}

func TestDoorManAPI_Locks(t *testing.T) {
	server, _ := lockTestServer(t)
	client, _ := NewClient("user", "password", WithBaseURL(server.URL))
	seedTokens(t, client)

	var locks []*Lock
	for lock, err := range client.LockAPI().Locks(context.Background()) {
		require.NoError(t, err)
		locks = append(locks, lock)
	}

	require.Len(t, locks, 1)
	lock := locks[0]
	assert.Equal(t, "frontdoor", lock.Name())
	assert.Equal(t, LockStateLocked, lock.State())
	assert.Equal(t, "1", lock.Area())
	assert.Equal(t, "3", lock.Zone())
	assert.Equal(t, "RF:00:11:22", lock.SID())
	assert.Equal(t, DeviceTypeDoorLock, lock.DeviceType())
	assert.Equal(t, "03", lock.Config().Volume)
	assert.Equal(t, "frontdoor [locked]", lock.String())
}

func TestDoorManAPI_Get(t *testing.T) {
	server, _ := lockTestServer(t)
	client, _ := NewClient("user", "password", WithBaseURL(server.URL))
	seedTokens(t, client)

	t.Run("found", func(t *testing.T) {
		lock, err := client.LockAPI().Get(context.Background(), "frontdoor")
		require.NoError(t, err)
		assert.Equal(t, "frontdoor", lock.Name())
	})

	t.Run("door contacts are not locks", func(t *testing.T) {
		_, err := client.LockAPI().Get(context.Background(), "backdoor-contact")
		assert.ErrorIs(t, err, ErrLockNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := client.LockAPI().Get(context.Background(), "nosuchdoor")
		assert.ErrorIs(t, err, ErrLockNotFound)
	})
}

func TestDoorManAPI_CloseLock(t *testing.T) {
	server, commands := lockTestServer(t)
	client, _ := NewClient("user", "password", WithBaseURL(server.URL))
	seedTokens(t, client)

	lock, err := client.LockAPI().Get(context.Background(), "frontdoor")
	require.NoError(t, err)
	lock.SetState(LockStateUnlocked)

	ok, err := lock.Close(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, LockStateLocked, lock.State())

	require.Len(t, *commands, 1)
	assert.Equal(t,
		"/api/panel/device_control/?area=1&device_sid=RF%3A00%3A11%3A22&device_type=device_type.door_lock&request_value=1&zone=3",
		(*commands)[0])
}

func TestDoorManAPI_OpenLock(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server, commands := lockTestServer(t)
		client, _ := NewClient("user", "password", WithBaseURL(server.URL))
		seedTokens(t, client)

		lock, err := client.LockAPI().Get(context.Background(), "frontdoor")
		require.NoError(t, err)

		ok, err := lock.Open(context.Background(), "123456")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, LockStateUnlocked, lock.State())

		require.Len(t, *commands, 1)
		assert.Equal(t, "/api/minigw/unlock/?area=1&pincode=123456&zone=3", (*commands)[0])
	})

	t.Run("empty pin", func(t *testing.T) {
		server, _ := lockTestServer(t)
		client, _ := NewClient("user", "password", WithBaseURL(server.URL))
		seedTokens(t, client)

		lock, err := client.LockAPI().Get(context.Background(), "frontdoor")
		require.NoError(t, err)

		_, err = lock.Open(context.Background(), "")
		assert.ErrorIs(t, err, ErrEmptyPIN)
	})

	t.Run("rejected command leaves state untouched", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/minigw/unlock/", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"code": "999"})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client, _ := NewClient("user", "password", WithBaseURL(server.URL))
		seedTokens(t, client)

		lock := newLock(Device{
			Name:             "frontdoor",
			Area:             "1",
			No:               "3",
			Type:             DeviceTypeDoorLock,
			MinigwLockStatus: "11",
		}, client.LockAPI())

		ok, err := lock.Open(context.Background(), "123456")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, LockStateLocked, lock.State())
	})
}

func TestDoorManAPI_SetVolume(t *testing.T) {
	server, commands := lockTestServer(t)
	client, _ := NewClient("user", "password", WithBaseURL(server.URL))
	seedTokens(t, client)

	lock, err := client.LockAPI().Get(context.Background(), "frontdoor")
	require.NoError(t, err)

	ok, err := lock.SetVolume(context.Background(), LockVolumeLow)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "02", lock.Config().Volume)

	// The config write is followed by the device update call.
	require.Len(t, *commands, 2)
	assert.Equal(t, "/api/minigw/lock/config/?area=1&idx=01&val=02&zone=3", (*commands)[0])
	assert.Equal(t, "/api/panel/device/", (*commands)[1])
}

func TestDoorManAPI_SetAutolock(t *testing.T) {
	server, commands := lockTestServer(t)
	client, _ := NewClient("user", "password", WithBaseURL(server.URL))
	seedTokens(t, client)

	lock, err := client.LockAPI().Get(context.Background(), "frontdoor")
	require.NoError(t, err)

	t.Run("enable", func(t *testing.T) {
		ok, err := lock.SetAutolock(context.Background(), true)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "FF", lock.Config().Autolock)
		assert.Equal(t, "/api/minigw/lock/config/?area=1&idx=02&val=FF&zone=3", (*commands)[0])
	})

	t.Run("disable", func(t *testing.T) {
		ok, err := lock.SetAutolock(context.Background(), false)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "00", lock.Config().Autolock)
		assert.Equal(t, "/api/minigw/lock/config/?area=1&idx=02&val=00&zone=3", (*commands)[2])
	})
}

func TestLock_Update(t *testing.T) {
	client, _ := NewClient("user", "password")
	lock := newLock(Device{
		Name:             "frontdoor",
		MinigwLockStatus: "11",
		Type:             DeviceTypeDoorLock,
	}, client.LockAPI())
	require.Equal(t, LockStateLocked, lock.State())

	lock.Update(Device{
		Name:                    "frontdoor",
		MinigwLockStatus:        "10",
		Type:                    DeviceTypeDoorLock,
		MinigwConfigurationData: testConfigData,
	})
	assert.Equal(t, LockStateUnlocked, lock.State())
	assert.Equal(t, "03", lock.Config().Volume)
}

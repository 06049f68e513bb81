package yalealarm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const (
	endpointGetMode       = "/api/panel/mode/"
	endpointSetMode       = "/api/panel/mode/"
	endpointDevicesStatus = "/api/panel/device_status/"
	endpointPanicButton   = "/api/panel/panic"
	endpointStatus        = "/yapi/api/panel/status/"
	endpointCycle         = "/yapi/api/panel/cycle/"
	endpointOnline        = "/yapi/api/panel/online/"
	endpointHistory       = "/yapi/api/event/report/?page_num=1&set_utc=1"
	endpointAuthCheck     = "/yapi/api/auth/check/"
	endpointPanelInfo     = "/yapi/api/panel/info/"

	paramArea = "area"
	paramMode = "mode"

	// statusNormal is the per-check value the panel status endpoint
	// reports when nothing is wrong.
	statusNormal = "main.normal"
)

// decodeData unwraps the {"data": ...} envelope and parses the payload.
func decodeData[T any](body []byte, resourceName string) (T, error) {
	var out T
	var env dataEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return out, fmt.Errorf("failed to parse %s: %w (body: %s)", resourceName, err, truncatePreview(body))
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s: %w (body: %s)", resourceName, err, truncatePreview(body))
	}
	return out, nil
}

// GetArmedStatus returns the current panel arm mode.
func (c *Client) GetArmedStatus(ctx context.Context) (ArmState, error) {
	body, err := c.get(ctx, endpointGetMode)
	if err != nil {
		return "", err
	}

	modes, err := decodeData[[]struct {
		Mode ArmState `json:"mode"`
	}](body, "armed status")
	if err != nil {
		return "", err
	}
	if len(modes) == 0 {
		return "", fmt.Errorf("failed to parse armed status: empty mode list")
	}
	return modes[0].Mode, nil
}

// SetArmedStatus sets the panel arm mode for the configured area.
// Returns true if the API acknowledged the command.
func (c *Client) SetArmedStatus(ctx context.Context, mode ArmState) (bool, error) {
	form := url.Values{}
	form.Set(paramArea, strconv.Itoa(c.areaID))
	form.Set(paramMode, string(mode))

	body, err := c.post(ctx, endpointSetMode, form)
	if err != nil {
		return false, err
	}

	var resp codeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("failed to parse mode response: %w (body: %s)", err, truncatePreview(body))
	}
	return resp.Code == codeSuccess, nil
}

// ArmFull arms the panel fully (away).
func (c *Client) ArmFull(ctx context.Context) (bool, error) {
	return c.SetArmedStatus(ctx, ArmStateFull)
}

// ArmPartial arms the panel partially (home).
func (c *Client) ArmPartial(ctx context.Context) (bool, error) {
	return c.SetArmedStatus(ctx, ArmStatePartial)
}

// Disarm disarms the panel.
func (c *Client) Disarm(ctx context.Context) (bool, error) {
	return c.SetArmedStatus(ctx, ArmStateDisarm)
}

// IsArmed returns true if the panel is armed fully or partially.
func (c *Client) IsArmed(ctx context.Context) (bool, error) {
	mode, err := c.GetArmedStatus(ctx)
	if err != nil {
		return false, err
	}
	return mode == ArmStateFull || mode == ArmStatePartial, nil
}

// TriggerPanic triggers the alarm via the panic function. The endpoint is
// served from the host root and answers with an empty body on some
// firmware versions, which also counts as success.
func (c *Client) TriggerPanic(ctx context.Context) (bool, error) {
	body, err := c.post(ctx, endpointPanicButton, nil)
	if err != nil {
		return false, err
	}
	if len(body) == 0 {
		return true, nil
	}

	var resp codeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("failed to parse panic response: %w (body: %s)", err, truncatePreview(body))
	}
	return resp.Code == codeSuccess, nil
}

// GetStatus summarizes panel health. It returns "ok" when the AC, battery,
// tamper, and jam checks all report normal, and "error" otherwise.
func (c *Client) GetStatus(ctx context.Context) (string, error) {
	body, err := c.get(ctx, endpointStatus)
	if err != nil {
		return "", err
	}

	health, err := decodeData[struct {
		ACFail  string `json:"acfail"`
		Battery string `json:"battery"`
		Tamper  string `json:"tamper"`
		Jam     string `json:"jam"`
	}](body, "panel status")
	if err != nil {
		return "", err
	}

	if health.ACFail == statusNormal && health.Battery == statusNormal &&
		health.Tamper == statusNormal && health.Jam == statusNormal {
		return "ok", nil
	}
	return "error", nil
}

// GetOnline returns the panel availability record.
func (c *Client) GetOnline(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, endpointOnline)
	if err != nil {
		return nil, err
	}
	return decodeData[map[string]any](body, "online status")
}

// GetCycle returns the panel cycle record.
func (c *Client) GetCycle(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, endpointCycle)
	if err != nil {
		return nil, err
	}
	return decodeData[map[string]any](body, "cycle")
}

// GetPanelInfo returns panel hardware and firmware information.
func (c *Client) GetPanelInfo(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, endpointPanelInfo)
	if err != nil {
		return nil, err
	}
	return decodeData[map[string]any](body, "panel info")
}

// GetHistory returns the panel event log, newest first.
func (c *Client) GetHistory(ctx context.Context) ([]map[string]any, error) {
	body, err := c.get(ctx, endpointHistory)
	if err != nil {
		return nil, err
	}
	return decodeData[[]map[string]any](body, "history")
}

// GetAuthCheck returns the authorization check record.
func (c *Client) GetAuthCheck(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, endpointAuthCheck)
	if err != nil {
		return nil, err
	}
	return decodeData[map[string]any](body, "auth check")
}

// GetAll fetches every read endpoint and returns the raw payloads.
// Intended for debugging and local inspection.
func (c *Client) GetAll(ctx context.Context) (*AlarmData, error) {
	data := &AlarmData{}
	fetch := []struct {
		endpoint string
		dest     *json.RawMessage
	}{
		{endpointDevicesStatus, &data.Devices},
		{endpointGetMode, &data.Mode},
		{endpointStatus, &data.Status},
		{endpointCycle, &data.Cycle},
		{endpointOnline, &data.Online},
		{endpointHistory, &data.History},
		{endpointPanelInfo, &data.PanelInfo},
		{endpointAuthCheck, &data.AuthCheck},
	}

	for _, f := range fetch {
		body, err := c.get(ctx, f.endpoint)
		if err != nil {
			return nil, err
		}
		var env dataEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w (body: %s)", f.endpoint, err, truncatePreview(body))
		}
		*f.dest = env.Data
	}

	return data, nil
}

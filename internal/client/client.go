package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SugarMill.twin/internal/controller"
	"SugarMill.twin/internal/models"
	"github.com/go-resty/resty/v2"
)

// Client talks to the twin's HTTP query surface.
type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// get decodes a successful response into out and an error envelope into an
// APIError.
func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	if resp.IsError() {
		var apiErr models.APIError
		if jsonErr := json.Unmarshal(resp.Body(), &apiErr); jsonErr != nil || apiErr.Code == "" {
			return fmt.Errorf("request %s: unexpected status %s", path, resp.Status())
		}
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) State(ctx context.Context) (models.TwinState, error) {
	var s models.TwinState
	if err := c.get(ctx, "/api/twin", nil, &s); err != nil {
		return s, err
	}
	return s, nil
}

func (c *Client) Summary(ctx context.Context) (models.Summary, error) {
	var s models.Summary
	if err := c.get(ctx, "/api/summary", nil, &s); err != nil {
		return s, err
	}
	return s, nil
}

// Readings fetches readings, optionally for one station and sensor type.
func (c *Client) Readings(ctx context.Context, stationID string, sensorType models.SensorType) ([]models.SensorReading, error) {
	query := map[string]string{}
	if stationID != "" {
		query["station_id"] = stationID
	}
	if sensorType != "" {
		query["sensor_type"] = string(sensorType)
	}
	var out []models.SensorReading
	if err := c.get(ctx, "/api/readings", query, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Client) Stations(ctx context.Context) ([]models.ProcessStation, error) {
	var out []models.ProcessStation
	if err := c.get(ctx, "/api/stations", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Client) Station(ctx context.Context, id string) (controller.StationDetail, error) {
	var out controller.StationDetail
	if err := c.get(ctx, "/api/stations/"+id, nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Client) Production(ctx context.Context) (models.ProductionSnapshot, error) {
	var out models.ProductionSnapshot
	if err := c.get(ctx, "/api/production", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Client) Boards(ctx context.Context) ([]models.BoardView, error) {
	var out []models.BoardView
	if err := c.get(ctx, "/api/boards", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (c *Client) Board(ctx context.Context, name string) (models.BoardView, error) {
	var out models.BoardView
	if err := c.get(ctx, "/api/boards/"+name, nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

package seap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"SeapMonitor/internal/domain"
	"SeapMonitor/internal/ports"
)

const listPath = "/api-pub/DirectAcquisitionCommon/GetDirectAcquisitionList/"

// listRequest is the catalog's filter object. Unset filters must be
// serialized as explicit nulls, hence the pointer fields.
type listRequest struct {
	PageSize                    int     `json:"pageSize"`
	ShowOngoingDa               bool    `json:"showOngoingDa"`
	PageIndex                   int     `json:"pageIndex"`
	SysDirectAcquisitionStateID *int    `json:"sysDirectAcquisitionStateId"`
	FinalizationDateStart       *string `json:"finalizationDateStart"`
	FinalizationDateEnd         *string `json:"finalizationDateEnd"`
	PublicationDateStart        *string `json:"publicationDateStart"`
	PublicationDateEnd          *string `json:"publicationDateEnd"`
	CpvCodeID                   *int    `json:"cpvCodeId"`
	ContractingAuthorityID      *int    `json:"contractingAuthorityId"`
	SupplierID                  *int    `json:"supplierId"`
	AssignedUserID              *int    `json:"assignedUserId"`
	IsCentralizedProcurement    *bool   `json:"isCentralizedProcurement"`
	DirectAcquisitionName       *string `json:"directAcquisitionName"`
	UniqueIdentificationCode    *string `json:"uniqueIdentificationCode"`
}

// Client talks to the public direct-acquisition list endpoint.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.AcquisitionSource = (*Client)(nil)

// NewClient wires an HTTP client against the catalog base URL.
func NewClient(baseURL string, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// FetchFinalized queries acquisitions whose outcome closed inside the
// given civil-day window (showOngoingDa=false).
func (c *Client) FetchFinalized(ctx context.Context, dateStart, dateEnd string, pageIndex, pageSize int) (*domain.AcquisitionPage, error) {
	start, end, err := c.window(dateStart, dateEnd)
	if err != nil {
		return nil, err
	}

	payload := listRequest{
		PageSize:              pageSize,
		ShowOngoingDa:         false,
		PageIndex:             pageIndex,
		FinalizationDateStart: &start,
		FinalizationDateEnd:   &end,
	}
	return c.post(ctx, payload)
}

// FetchOngoing queries acquisitions published inside the given window,
// regardless of completion (showOngoingDa=true).
func (c *Client) FetchOngoing(ctx context.Context, dateStart, dateEnd string, pageIndex, pageSize int) (*domain.AcquisitionPage, error) {
	start, end, err := c.window(dateStart, dateEnd)
	if err != nil {
		return nil, err
	}

	payload := listRequest{
		PageSize:             pageSize,
		ShowOngoingDa:        true,
		PageIndex:            pageIndex,
		PublicationDateStart: &start,
		PublicationDateEnd:   &end,
	}
	return c.post(ctx, payload)
}

func (c *Client) window(dateStart, dateEnd string) (string, string, error) {
	start, err := StartOfDay(dateStart)
	if err != nil {
		return "", "", err
	}
	end, err := EndOfDay(dateEnd)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

func (c *Client) post(ctx context.Context, payload listRequest) (*domain.AcquisitionPage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal list request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+listPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}

	var page domain.AcquisitionPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("fetched catalog page",
			"page_index", payload.PageIndex,
			"ongoing", payload.ShowOngoingDa,
			"items", len(page.Items),
			"total", page.Total)
	}

	return &page, nil
}

// The public API rejects requests that do not look like the web client.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "ro-RO,ro;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/pub/direct-acquisitions/list/1/0")
}

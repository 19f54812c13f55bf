package wbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avoronina/wb-finance-data/internal/report"
)

const reportDetailPath = "/api/v1/supplier/reportDetailByPeriod"

// fetchReportPage requests one page of the report detail, rate-limited.
// Dates are YYYY-MM-DD; rrdID is the pagination cursor (0 for the first
// page).
func (c *Client) fetchReportPage(ctx context.Context, dateFrom, dateTo string, rrdID int64, limit int) ([]report.RawRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("dateFrom", dateFrom)
	params.Set("dateTo", dateTo)
	params.Set("rrdid", strconv.FormatInt(rrdID, 10))
	params.Set("limit", strconv.Itoa(limit))

	u := c.baseURL + reportDetailPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", reportDetailPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(body, 200)}
	}

	// "null" and bare objects decode without error into the wrong shape,
	// so check the payload is an array before unmarshaling.
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &MalformedResponseError{Detail: "expected JSON array of report rows, got " + truncate(trimmed, 80)}
	}

	var rows []report.RawRow
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, &MalformedResponseError{Detail: err.Error()}
	}
	return rows, nil
}

// ForEachReportDetail streams every report row for [dateFrom, dateTo]
// through fn, in page order, paginating on rrd_id transparently.
//
// The cursor starts at 0 and advances to the last row's rrd_id after each
// page. Iteration ends on an empty page, or — even mid-data — when the
// last row carries no rrd_id or repeats the cursor just used, so an API
// that serves the same page forever cannot loop us. Rows already passed
// to fn stand either way.
//
// Any transport or malformed-response error, and any error returned by
// fn, aborts iteration immediately.
func (c *Client) ForEachReportDetail(ctx context.Context, dateFrom, dateTo string, limit int, fn func(report.RawRow) error) error {
	var cursor int64
	for {
		page, err := c.fetchReportPage(ctx, dateFrom, dateTo, cursor, limit)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			c.logger.Debug("report pagination finished", "cursor", cursor)
			return nil
		}

		for _, row := range page {
			if err := fn(row); err != nil {
				return err
			}
		}

		last := report.IntField(page[len(page)-1], "rrd_id")
		if last == nil || *last == cursor {
			c.logger.Debug("report pagination stopped on missing or unchanged rrd_id", "cursor", cursor)
			return nil
		}
		cursor = *last
	}
}

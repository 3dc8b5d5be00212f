package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kevin-Rudy/pingtrack/pkg/graph"
	"github.com/Kevin-Rudy/pingtrack/pkg/monitor"
)

// SessionStats 会话累计统计
type SessionStats struct {
	Count   uint32   `json:"count"`
	Min     *uint32  `json:"min,omitempty"`
	Max     *uint32  `json:"max,omitempty"`
	Average *float64 `json:"average,omitempty"`
}

// StatusResponse /api/status
type StatusResponse struct {
	Session           string       `json:"session"`
	Started           time.Time    `json:"started"`
	Samples           int          `json:"samples"`
	Status            string       `json:"status"`
	Destination       string       `json:"destination,omitempty"`
	RTTMillis         *uint64      `json:"rtt_ms,omitempty"`
	Disconnected      bool         `json:"disconnected"`
	DisconnectedSince *time.Time   `json:"disconnected_since,omitempty"`
	Stats             SessionStats `json:"stats"`
	LastSaved         time.Time    `json:"last_saved"`
}

// BarResponse 一根柱子，没有数据时只有时间窗口
type BarResponse struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Count   uint16    `json:"count"`
	Min     *uint16   `json:"min,omitempty"`
	Max     *uint16   `json:"max,omitempty"`
	Average *uint16   `json:"average,omitempty"`
	Timeout bool      `json:"timeout"`
}

// GraphResponse /api/graph
type GraphResponse struct {
	IntervalMillis int64         `json:"interval_ms"`
	DisplayMin     uint16        `json:"display_min"`
	DisplayMax     uint16        `json:"display_max"`
	Bars           []BarResponse `json:"bars"`
}

// OutageResponse 一段离线区间
type OutageResponse struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Seconds float64   `json:"seconds"`
}

// OutagesResponse /api/outages
type OutagesResponse struct {
	LastSaved time.Time        `json:"last_saved"`
	Outages   []OutageResponse `json:"outages"`
}

func (s *Server) snapshot() (*monitor.Snapshot, error) {
	snap := s.src.Snapshot()
	if snap == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "monitor not started")
	}
	return snap, nil
}

func (s *Server) getHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) getStatus(c echo.Context) error {
	snap, err := s.snapshot()
	if err != nil {
		return err
	}

	resp := StatusResponse{
		Session:      snap.SessionID,
		Started:      snap.Started,
		Samples:      snap.Samples,
		Status:       snap.Latest.Text,
		Destination:  snap.Latest.Destination,
		Disconnected: snap.Disconnected,
		Stats:        SessionStats{Count: snap.Session.Count},
		LastSaved:    snap.LastSaved,
	}
	if rtt, ok := snap.Latest.Outcome.RTT(); ok {
		ms := uint64(rtt / time.Millisecond)
		resp.RTTMillis = &ms
	}
	if snap.Disconnected {
		since := snap.DisconnectedSince
		resp.DisconnectedSince = &since
	}
	if !snap.Session.Empty() {
		min, max := snap.Session.Min, snap.Session.Max
		mean, _ := snap.Session.Mean()
		resp.Stats.Min, resp.Stats.Max, resp.Stats.Average = &min, &max, &mean
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getGraph(c echo.Context) error {
	snap, err := s.snapshot()
	if err != nil {
		return err
	}

	resp := GraphResponse{
		IntervalMillis: snap.Interval.Milliseconds(),
		DisplayMin:     snap.Min,
		DisplayMax:     snap.Max,
		Bars:           make([]BarResponse, len(snap.Bars)),
	}

	iv := int64(snap.Interval)
	end := graph.End(snap.GraphAt, snap.Interval)
	for i := len(snap.Bars) - 1; i >= 0; i-- {
		stats := snap.Bars[i]
		bar := BarResponse{
			Start:   time.Unix(0, end-iv),
			End:     time.Unix(0, end),
			Count:   stats.Count,
			Timeout: stats.Timeout,
		}
		if !stats.Empty() {
			min, max := stats.Min, stats.Max
			avg, _ := stats.Average()
			bar.Min, bar.Max, bar.Average = &min, &max, &avg
		}
		resp.Bars[i] = bar
		end -= iv
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) getOutages(c echo.Context) error {
	snap, err := s.snapshot()
	if err != nil {
		return err
	}

	resp := OutagesResponse{
		LastSaved: snap.LastSaved,
		Outages:   make([]OutageResponse, 0, len(snap.Outages)),
	}
	for _, iv := range snap.Outages {
		resp.Outages = append(resp.Outages, OutageResponse{
			Start:   iv.StartTime(),
			End:     iv.EndTime(),
			Seconds: iv.Seconds(),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

package runtime

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"
)

// TraceEventType names a trace event.
type TraceEventType string

const (
	TraceRunStart TraceEventType = "run_start"
	TraceRunEnd   TraceEventType = "run_end"
	TraceParse    TraceEventType = "parse"
)

// TraceEvent is one line of an NDJSON trace.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

func (rt *Runtime) emit(event TraceEventType, data map[string]any) {
	if rt.trace == nil {
		return
	}
	rt.trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     rt.runID,
		Event:     event,
		Data:      data,
	})
}

// NDJSONTrace returns a trace callback that writes one JSON object per line
// to w. It is safe for concurrent use.
func NDJSONTrace(w io.Writer) func(TraceEvent) {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(e TraceEvent) {
		mu.Lock()
		defer mu.Unlock()
		_ = enc.Encode(e)
	}
}

// TraceSummary aggregates an NDJSON trace.
type TraceSummary struct {
	RunID       string         `json:"runId"`
	TotalEvents int            `json:"totalEvents"`
	Parses      int            `json:"parses"`
	Failures    int            `json:"failures"`
	CacheHits   int            `json:"cacheHits"`
	ByTier      map[string]int `json:"byTier"`
	ByCode      map[string]int `json:"byCode"`
	StartTime   string         `json:"startTime,omitempty"`
	EndTime     string         `json:"endTime,omitempty"`
	DurationMs  float64        `json:"durationMs"`
}

// SummarizeTrace reads an NDJSON trace. Lines that are not valid events are
// skipped.
func SummarizeTrace(r io.Reader) (*TraceSummary, error) {
	summary := &TraceSummary{
		ByTier: make(map[string]int),
		ByCode: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case TraceRunEnd:
			summary.EndTime = event.Timestamp
		case TraceParse:
			summary.Parses++
			if tier, ok := event.Data["tier"].(string); ok {
				summary.ByTier[tier]++
			}
			if cached, ok := event.Data["cached"].(bool); ok && cached {
				summary.CacheHits++
			}
			if code, ok := event.Data["code"].(string); ok {
				summary.Failures++
				summary.ByCode[code]++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Milliseconds())
		}
	}
	return summary, nil
}

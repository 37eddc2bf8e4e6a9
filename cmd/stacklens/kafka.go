package main

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/stacklens/stacklens/internal/callnode"
	"github.com/stacklens/stacklens/internal/quantile"
	"github.com/stacklens/stacklens/internal/trace"
)

// CallNodesKafkaMessage is the summary row published for every ingested
// trace, feeding the cross-trace call-node warehouse.
type CallNodesKafkaMessage struct {
	TraceID       string  `json:"trace_id"`
	ThreadName    string  `json:"thread_name"`
	Received      int64   `json:"received"`
	SampleCount   int     `json:"sample_count"`
	CallNodeCount int     `json:"call_node_count"`
	RootTime      float64 `json:"root_time"`
	DurationP75   float64 `json:"duration_p75"`
	DurationP95   float64 `json:"duration_p95"`
	DurationP99   float64 `json:"duration_p99"`
}

func buildCallNodesKafkaMessage(traceID string, upload *TraceUpload, info *callnode.Info) CallNodesKafkaMessage {
	rootTime := 0.0
	durations := make([]float64, 0, upload.Thread.Samples.Length)
	for i := 0; i < upload.Thread.Samples.Length; i++ {
		if upload.Thread.Samples.Stack[i] == trace.None {
			continue
		}
		weight := upload.Thread.Samples.WeightAt(i)
		if weight < 0 {
			weight = -weight
		}
		rootTime += weight
		durations = append(durations, weight)
	}
	q := quantile.Quantile{Xs: durations}
	q.Sort()
	return CallNodesKafkaMessage{
		TraceID:       traceID,
		ThreadName:    upload.Thread.Name,
		Received:      upload.Received.Time().Unix(),
		SampleCount:   upload.Thread.Samples.Length,
		CallNodeCount: info.Table.Length,
		RootTime:      rootTime,
		DurationP75:   q.Percentile(0.75),
		DurationP95:   q.Percentile(0.95),
		DurationP99:   q.Percentile(0.99),
	}
}

func (e *environment) publishCallNodeSummary(ctx context.Context, traceID string, upload *TraceUpload) error {
	info := callnode.Build(&upload.Thread.Stacks, &upload.Thread.Frames, upload.Categories.DefaultCategory())
	message := buildCallNodesKafkaMessage(traceID, upload, &info)
	b, err := json.Marshal(message)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return e.callNodesWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(traceID),
		Value: b,
	})
}

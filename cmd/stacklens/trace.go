package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"github.com/stacklens/stacklens/internal/callnode"
	"github.com/stacklens/stacklens/internal/filter"
	"github.com/stacklens/stacklens/internal/httputil"
	"github.com/stacklens/stacklens/internal/invert"
	"github.com/stacklens/stacklens/internal/storageutil"
	"github.com/stacklens/stacklens/internal/timeutil"
	"github.com/stacklens/stacklens/internal/timings"
	"github.com/stacklens/stacklens/internal/trace"
)

type (
	// TraceUpload is the ingest envelope: one captured thread plus the
	// category list the sampler classified stacks with.
	TraceUpload struct {
		Name       string             `json:"name"`
		Received   timeutil.Time      `json:"received"`
		Categories trace.CategoryList `json:"categories"`
		Thread     trace.Thread       `json:"thread"`
	}

	PostTraceResponse struct {
		TraceID string `json:"trace_id"`
	}

	GetCallTreeResponse struct {
		CallNodes callnode.Info `json:"callNodes"`
	}
)

func (e *environment) postTrace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	s := sentry.StartSpan(ctx, "request.body")
	s.Description = "Read request body"
	body, err := io.ReadAll(r.Body)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s = sentry.StartSpan(ctx, "json.unmarshal")
	s.Description = "Unmarshal trace upload"
	var upload TraceUpload
	err = json.Unmarshal(body, &upload)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := upload.Thread.Validate(); err != nil {
		log.Err(err).Msg("trace rejected at the boundary")
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if len(upload.Categories) == 0 {
		upload.Categories = trace.DefaultCategories
	}
	upload.Thread.AttachURLResources()

	traceID := uuid.New().String()

	s = sentry.StartSpan(ctx, "storage.write")
	s.Description = "Write trace to storage"
	err = storageutil.CompressedWrite(ctx, e.store, traceID, upload)
	s.Finish()
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if e.callNodesWriter != nil {
		s = sentry.StartSpan(ctx, "processing")
		s.Description = "Publish call-node summary"
		err = e.publishCallNodeSummary(ctx, traceID, &upload)
		s.Finish()
		if err != nil {
			// Publication is best effort, ingestion already succeeded.
			hub.CaptureException(err)
		}
	}

	b, err := json.Marshal(PostTraceResponse{TraceID: traceID})
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func (e *environment) getCallTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	upload, ok := e.readTrace(w, r)
	if !ok {
		return
	}
	thread, ok := applyViewFilters(w, r, upload.Thread, upload.Categories)
	if !ok {
		return
	}

	s := sentry.StartSpan(ctx, "calltree")
	s.Description = "Build call nodes"
	info := callnode.Build(&thread.Stacks, &thread.Frames, upload.Categories.DefaultCategory())
	s.Finish()

	b, err := json.Marshal(GetCallTreeResponse{CallNodes: info})
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func (e *environment) getTimings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)

	params, logger, ok := httputil.GetRequiredQueryParameters(w, r, "path")
	if !ok {
		return
	}
	path, ok := parseCallNodePath(w, params["path"])
	if !ok {
		return
	}
	inverted := r.URL.Query().Get("inverted") == "true"

	upload, ok := e.readTrace(w, r)
	if !ok {
		return
	}
	unfilteredThread := upload.Thread
	thread, ok := applyViewFilters(w, r, upload.Thread, upload.Categories)
	if !ok {
		return
	}
	if inverted {
		thread = invert.CallTree(thread, upload.Categories.DefaultCategory())
	}

	s := sentry.StartSpan(ctx, "timings")
	s.Description = "Aggregate timings"
	info := callnode.Build(&thread.Stacks, &thread.Frames, upload.Categories.DefaultCategory())
	resolver := callnode.NewPathResolver(&info.Table)
	node, err := resolver.IndexForPath(path)
	if err != nil {
		s.Finish()
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if node == trace.None {
		s.Finish()
		logger.Info().Msg("no call node for path")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	result := timings.ForCallNode(
		node,
		&info,
		inverted,
		&unfilteredThread,
		sampleOffset(&unfilteredThread.Samples, &thread.Samples),
		upload.Categories,
		&thread.Samples,
		&unfilteredThread.Samples,
	)
	s.Finish()

	b, err := json.Marshal(result)
	if err != nil {
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

// readTrace loads a stored trace, turning a missing object into a 404.
func (e *environment) readTrace(w http.ResponseWriter, r *http.Request) (TraceUpload, bool) {
	ctx := r.Context()
	hub := sentry.GetHubFromContext(ctx)
	traceID := httprouter.ParamsFromContext(ctx).ByName("trace_id")

	var upload TraceUpload
	err := storageutil.UnmarshalCompressed(ctx, e.store, traceID, &upload)
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return TraceUpload{}, false
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return TraceUpload{}, false
	}
	if len(upload.Categories) == 0 {
		upload.Categories = trace.DefaultCategories
	}
	return upload, true
}

// applyViewFilters derives the requested view of a thread from the common
// query parameters: implementation, search, range_start/range_end.
func applyViewFilters(w http.ResponseWriter, r *http.Request, thread trace.Thread, categories trace.CategoryList) (trace.Thread, bool) {
	query := r.URL.Query()

	if rawStart, rawEnd := query.Get("range_start"), query.Get("range_end"); rawStart != "" || rawEnd != "" {
		start, err := strconv.ParseFloat(rawStart, 64)
		if err != nil {
			http.Error(w, "range_start must be a number", http.StatusBadRequest)
			return trace.Thread{}, false
		}
		end, err := strconv.ParseFloat(rawEnd, 64)
		if err != nil {
			http.Error(w, "range_end must be a number", http.StatusBadRequest)
			return trace.Thread{}, false
		}
		thread = filter.ByRange(thread, start, end)
	}
	if implementation := query.Get("implementation"); implementation != "" {
		if implementation != filter.ImplementationCpp && implementation != filter.ImplementationJS {
			http.Error(w, "implementation must be cpp or js", http.StatusBadRequest)
			return trace.Thread{}, false
		}
		thread = filter.ByImplementation(thread, implementation)
	}
	if search := query.Get("search"); search != "" {
		thread = filter.BySearchStrings(thread, strings.Fields(search))
	}
	return thread, true
}

// parseCallNodePath decodes a comma-separated list of function indices.
func parseCallNodePath(w http.ResponseWriter, raw string) (callnode.Path, bool) {
	if raw == "" {
		http.Error(w, "expected path query parameter", http.StatusBadRequest)
		return nil, false
	}
	parts := strings.Split(raw, ",")
	path := make(callnode.Path, 0, len(parts))
	for _, part := range parts {
		fn, err := strconv.Atoi(part)
		if err != nil {
			http.Error(w, "path must be a comma-separated list of function indices", http.StatusBadRequest)
			return nil, false
		}
		path = append(path, fn)
	}
	return path, true
}

// sampleOffset realigns the filtered samples into the unfiltered table: a
// range filter slices a contiguous window, so the offset is the position of
// the window's first sample time.
func sampleOffset(unfiltered, filtered *trace.SamplesTable) int {
	if filtered.Length == 0 || filtered.Length == unfiltered.Length {
		return 0
	}
	for i := 0; i < unfiltered.Length; i++ {
		if unfiltered.Time[i] == filtered.Time[0] {
			return i
		}
	}
	return 0
}

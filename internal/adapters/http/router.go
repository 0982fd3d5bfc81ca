package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/artifact-graph/internal/config"
	"github.com/kirillkom/artifact-graph/internal/core/domain"
	"github.com/kirillkom/artifact-graph/internal/core/ontology"
	"github.com/kirillkom/artifact-graph/internal/core/ports"
	"github.com/kirillkom/artifact-graph/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg      config.Config
	ingestor ports.ArtifactIngestor
	reader   ports.ArtifactReader
	explorer ports.GraphExplorer
	searcher ports.ArtifactSearcher
	store    ports.TripleStore
	registry *ontology.Registry
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingestor ports.ArtifactIngestor,
	reader ports.ArtifactReader,
	explorer ports.GraphExplorer,
	searcher ports.ArtifactSearcher,
	store ports.TripleStore,
	registry *ontology.Registry,
	m *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		ingestor: ingestor,
		reader:   reader,
		explorer: explorer,
		searcher: searcher,
		store:    store,
		registry: registry,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("/v1/artifacts", rt.uploadArtifact)
	mux.HandleFunc("/v1/artifacts/", rt.artifactByID)
	mux.HandleFunc("/v1/graph/query", rt.graphQuery)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/system/status", rt.systemStatus)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 100*time.Millisecond)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadArtifact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxBodyBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	meta := ports.UploadMeta{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Author:       r.FormValue("author"),
		Tags:         splitTags(r.FormValue("tags")),
		DeclaredKind: fileHeader.Header.Get("Content-Type"),
	}

	artifact, err := rt.ingestor.Upload(r.Context(), fileHeader.Filename, meta, file)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordUpload(serviceName, "error")
		}
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, "accepted")
	}
	writeJSON(w, http.StatusAccepted, artifact)
}

func (rt *Router) artifactByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/artifacts/")
	if id, ok := strings.CutSuffix(rest, "/reclassify"); ok {
		rt.reclassifyArtifact(w, r, id)
		return
	}
	rt.getArtifactByID(w, r, rest)
}

func (rt *Router) getArtifactByID(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artifact id is required"})
		return
	}

	artifact, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (rt *Router) reclassifyArtifact(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "artifact id is required"})
		return
	}

	if err := rt.ingestor.Reclassify(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reclassification scheduled", "artifact_id": id})
}

func (rt *Router) graphQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var query domain.GraphQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	result, err := rt.explorer.Explore(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordGraphQuery(serviceName, string(query.Type), len(result.Graph.Nodes), result.Truncated, time.Since(start))
	}
	writeJSON(w, http.StatusOK, graphQueryResponse{
		Status:    "success",
		Graph:     result.Graph,
		Analytics: result.Analytics,
		Truncated: result.Truncated,
	})
}

type graphQueryResponse struct {
	Status    string                `json:"status"`
	Graph     domain.Graph          `json:"graph"`
	Analytics domain.GraphAnalytics `json:"analytics"`
	Truncated bool                  `json:"truncated"`
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var query domain.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	results, err := rt.searcher.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordSearch(serviceName, string(query.Mode), len(results), time.Since(start))
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (rt *Router) systemStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	storeStatus := "ok"
	if err := rt.store.Ping(r.Context()); err != nil {
		storeStatus = "unavailable"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"store":  storeStatus,
		"ontology": map[string]any{
			"classes": rt.registry.Len(),
			"root":    ontology.RootClass,
		},
		"namespace": rt.cfg.InstanceNamespace,
		"limits": map[string]any{
			"graph_default_max_nodes": rt.cfg.GraphDefaultMaxNodes,
			"graph_max_nodes_cap":     rt.cfg.GraphMaxNodesCap,
			"graph_max_depth":         rt.cfg.GraphMaxDepth,
		},
	})
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

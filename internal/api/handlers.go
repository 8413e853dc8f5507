package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geolayer/internal/correlate"
	"github.com/sells-group/geolayer/internal/layers"
	"github.com/sells-group/geolayer/internal/ranking"
	"github.com/sells-group/geolayer/internal/region"
	"github.com/sells-group/geolayer/internal/store"
	"github.com/sells-group/geolayer/internal/weather"
)

var errBadRequest = errors.New("bad request")

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"centroids": h.svc.CentroidStats(),
	})
}

func (h *handler) listLayers(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.Layers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layers": infos})
}

func (h *handler) correlation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		h.writeError(w, eris.Wrap(errBadRequest, "api: parameters a and b are required"))
		return
	}
	res, err := h.svc.Correlate(r.Context(), a, b, q.Get("key"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) ranking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order, err := ranking.ParseOrder(q.Get("order"))
	if err != nil {
		h.writeError(w, eris.Wrap(errBadRequest, err.Error()))
		return
	}
	shown, err := intParam(q.Get("shown"), 0)
	if err != nil || shown < 0 {
		h.writeError(w, eris.Wrapf(errBadRequest, "api: invalid shown %q", q.Get("shown")))
		return
	}
	page, err := h.svc.Rank(r.Context(), chi.URLParam(r, "layer"), q.Get("key"), order, shown)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) colors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a, err := h.svc.Colors(r.Context(), chi.URLParam(r, "layer"), q.Get("key"), q.Get("scheme"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) colormaps(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string][]string)
	for _, name := range h.schemes.Names() {
		out[name] = h.schemes.Colors(name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemes": out})
}

func (h *handler) weather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	index, err := intParam(q.Get("index"), 0)
	if err != nil {
		h.writeError(w, eris.Wrapf(errBadRequest, "api: invalid index %q", q.Get("index")))
		return
	}
	resolution, err := floatParam(q.Get("resolution"), 0)
	if err != nil {
		h.writeError(w, eris.Wrapf(errBadRequest, "api: invalid resolution %q", q.Get("resolution")))
		return
	}
	g := region.Global
	if q.Get("granularity") == string(region.Province) {
		g = region.Province
	}

	view, err := h.svc.Weather(r.Context(), weather.Query{
		Variable:   q.Get("variable"),
		Index:      index,
		Daily:      q.Get("daily") == "true",
		Resolution: resolution,
	}, g)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) weatherVariables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":   weather.DefaultVariable,
		"variables": weather.Variables(),
	})
}

// Jakarta, used when a point request omits a coordinate.
const (
	defaultPointLat = -6.2
	defaultPointLon = 106.8
)

func (h *handler) weatherPoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := floatParam(q.Get("lat"), defaultPointLat)
	if err != nil {
		h.writeError(w, eris.Wrapf(errBadRequest, "api: invalid lat %q", q.Get("lat")))
		return
	}
	lon, err := floatParam(q.Get("lon"), defaultPointLon)
	if err != nil {
		h.writeError(w, eris.Wrapf(errBadRequest, "api: invalid lon %q", q.Get("lon")))
		return
	}
	pf, err := h.svc.WeatherPoint(r.Context(), lat, lon)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pf)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, weather.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, correlate.ErrInsufficientData), errors.Is(err, region.ErrIncompatibleGranularity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, layers.ErrWeatherUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

// Package serve exposes a trained ensemble over HTTP.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/sync/errgroup"

	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/httputil"
	"github.com/go-sod/boss/internal/logging"
	"github.com/go-sod/boss/internal/sfa"
)

const maxBodyBytes = 64 * 1024 * 1024

// Classifier is the part of the ensemble the handlers need.
type Classifier interface {
	ClassifyDistribution(series []float64) ([]float64, error)
	Members() []boss.Member
	TrainAccuracy() float64
}

var _ Classifier = (*boss.Ensemble)(nil)

type request struct {
	Data []struct {
		Series []float64   `json:"series"`
		Extra  interface{} `json:"extra"`
	} `json:"data"`
}

type item struct {
	Label        int         `json:"label"`
	Distribution []float64   `json:"distribution"`
	Extra        interface{} `json:"extra,omitempty"`
}

type response struct {
	Data []item `json:"data"`
}

func NewHandler(cfg *Config, classifier Classifier) (http.Handler, error) {
	if classifier == nil {
		return nil, fmt.Errorf("unable to create handler: nil classifier")
	}
	return &handler{
		cfg:        cfg,
		classifier: classifier,
	}, nil
}

type handler struct {
	classifier Classifier
	cfg        *Config
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	if r.Method != http.MethodPost {
		logger.Debugf("method %v is not allowed", r.Method)
		httputil.RespJSON(w, http.StatusMethodNotAllowed, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		logger.Debug("content-type is not application/json")
		httputil.RespJSON(w, http.StatusUnsupportedMediaType, `{"error": "%v"}`, "content-type is not application/json")
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if len(req.Data) > h.cfg.MaxDataItemsLen {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDataItemsLen)
		return
	}

	window := requiredLength(h.classifier.Members())
	for i := range req.Data {
		if n := len(req.Data[i].Series); n < window {
			recordSeries(ctx, statusRejected, len(req.Data))
			httputil.RespBadRequest(ctx, w, `{"error": "item %d: series length %d is shorter than the window %d"}`, i, n, window)
			return
		}
	}

	resp := response{Data: make([]item, len(req.Data))}
	errGrp, gctx := errgroup.WithContext(ctx)
	for i := range req.Data {
		i := i
		errGrp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dist, err := h.classifier.ClassifyDistribution(req.Data[i].Series)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			resp.Data[i] = item{Label: boss.Argmax(dist), Distribution: dist, Extra: req.Data[i].Extra}
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		switch {
		case errors.Is(err, sfa.ErrSeriesTooShort):
			recordSeries(ctx, statusRejected, len(req.Data))
			httputil.RespBadRequest(ctx, w, `{"error": "%v"}`, err)
		case errors.Is(err, boss.ErrEmptyEnsemble):
			recordSeries(ctx, statusFailed, len(req.Data))
			logger.Warn(err)
			httputil.RespJSON(w, http.StatusServiceUnavailable, `{"error": "%v"}`, err)
		default:
			recordSeries(ctx, statusFailed, len(req.Data))
			httputil.RespInternalError(ctx, w, `{"error": "classify processing error, %v"}`, err)
		}
		return
	}

	recordSeries(ctx, statusClassified, len(req.Data))
	httputil.WriteJSON(ctx, w, http.StatusOK, resp)
}

// requiredLength is the largest member window, the shortest series every
// member can classify. Empty series are never accepted.
func requiredLength(members []boss.Member) int {
	n := 1
	for _, m := range members {
		if m.WindowSize > n {
			n = m.WindowSize
		}
	}
	return n
}

func recordSeries(ctx context.Context, status string, n int) {
	ctx, err := tag.New(ctx, tag.Upsert(keyStatus, status))
	if err != nil {
		return
	}
	stats.Record(ctx, classifiedSeries.M(int64(n)))
}

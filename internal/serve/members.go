package serve

import (
	"net/http"

	"github.com/go-sod/boss/internal/classifier/boss"
	"github.com/go-sod/boss/internal/httputil"
)

type membersResponse struct {
	TrainAccuracy float64       `json:"trainAccuracy"`
	Members       []boss.Member `json:"members"`
}

// NewMembersHandler lists the parameters of the ensemble members.
func NewMembersHandler(classifier Classifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.RespJSON(w, http.StatusMethodNotAllowed, `{"error": "method %v is not allowed"}`, r.Method)
			return
		}
		httputil.WriteJSON(r.Context(), w, http.StatusOK, membersResponse{
			TrainAccuracy: classifier.TrainAccuracy(),
			Members:       classifier.Members(),
		})
	})
}

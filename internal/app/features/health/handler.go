// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/clinicdash/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler reports whether the dashboards can reach MongoDB.
type Handler struct {
	Client *mongo.Client
	Log    *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Log: logger}
}

type healthResponse struct {
	Service  string `json:"service"`
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health. It answers 200 with status "ok" when the
// primary responds to a ping, and 503 with status "error" otherwise.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Service: "clinicdash", Status: "ok", Database: "connected"}
	code := http.StatusOK

	if err := h.ping(r.Context()); err != nil {
		code = http.StatusServiceUnavailable
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		if !errors.Is(err, errNoClient) {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Error = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

var errNoClient = errors.New("no mongo client")

func (h *Handler) ping(ctx context.Context) error {
	if h.Client == nil {
		return errNoClient
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	return h.Client.Ping(ctx, readpref.Primary())
}

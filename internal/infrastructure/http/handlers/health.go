package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tradezone/marketplace/internal/infrastructure/http/response"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

type HealthHandler struct {
	db        *sql.DB
	mongo     *mongo.Collection
	redis     *redis.Client
	log       *logger.Logger
	startTime time.Time
}

func NewHealthHandler(db *sql.DB, mongoColl *mongo.Collection, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		mongo:     mongoColl,
		redis:     redisClient,
		log:       log,
		startTime: time.Now().UTC(),
	}
}

type servicesStatus struct {
	App      string `json:"app"`
	Database string `json:"database"`
	Mongo    string `json:"mongo"`
	Redis    string `json:"redis"`
}

type healthData struct {
	ServicesStatus servicesStatus `json:"services_status"`
	Uptime         string         `json:"uptime"`
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := servicesStatus{
		App:      "ok",
		Database: "ok",
		Mongo:    "ok",
		Redis:    "ok",
	}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		status.Database = "unavailable"
		healthy = false
	}
	if err := h.mongo.Database().Client().Ping(ctx, nil); err != nil {
		status.Mongo = "unavailable"
		healthy = false
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		status.Redis = "unavailable"
		healthy = false
	}

	data := healthData{
		ServicesStatus: status,
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	response.WriteJSON(w, code, response.DataResponse[healthData]{Data: data})
}

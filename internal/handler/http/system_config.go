package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sysconfig"
)

// SettingsRefresher reloads the cached system configuration.
type SettingsRefresher interface {
	sysconfig.Provider
	Refresh() error
}

type SystemConfigHandler interface {
	Refresh(w http.ResponseWriter, r *http.Request)
}

type systemConfigHandlerImpl struct {
	store SettingsRefresher
}

func NewSystemConfigHandler(store SettingsRefresher) SystemConfigHandler {
	return &systemConfigHandlerImpl{store: store}
}

func (h *systemConfigHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Refresh(); err != nil {
		// the previous settings stay active
		slog.Error("Failed to reload system config", "error", err)
		response.InternalServerError(w, "Failed to reload system configuration")
		return
	}

	response.SuccessWithMessage(w, "System configuration reloaded", h.store.Settings())
}

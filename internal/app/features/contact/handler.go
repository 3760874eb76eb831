// internal/app/features/contact/handler.go
package contact

import (
	"net/http"

	"github.com/dalemusser/arenahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Contact ArenaHub", "/"),
	}

	templates.Render(w, r, "contact", data)
}

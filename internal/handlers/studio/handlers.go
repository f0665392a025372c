package studio

import (
	"encoding/json"
	"net/http"

	"github.com/Amnmlk2025/dunetube/internal/handlers"
)

// Service — студия создателя: управление только своими курсами и уроками.
// Доступ сюда закрыт middleware.RequireRole(creator|admin), сами хендлеры
// дополнительно фильтруют все запросы по владельцу.
type Service struct {
	handlers.Handler
}

func jsonDetail(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"detail": message})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

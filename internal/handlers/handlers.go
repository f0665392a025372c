package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/Amnmlk2025/dunetube/internal/auth"
	"github.com/Amnmlk2025/dunetube/internal/roles"
)

// Handler держит все зависимости HTTP-слоя. Сессии используются только
// для state при входе через Google — аутентификация идет по JWT.
type Handler struct {
	DB        *gorm.DB
	Log       *zap.SugaredLogger
	Tokens    *auth.TokenManager
	Roles     *roles.Service
	Store     *sessions.CookieStore
	OAuth     *oauth2.Config
	MediaRoot string
}

func NewHandler(db *gorm.DB, log *zap.SugaredLogger, tokens *auth.TokenManager, roleSvc *roles.Service, store *sessions.CookieStore, oauthConfig *oauth2.Config, mediaRoot string) *Handler {
	return &Handler{
		DB:        db,
		Log:       log,
		Tokens:    tokens,
		Roles:     roleSvc,
		Store:     store,
		OAuth:     oauthConfig,
		MediaRoot: mediaRoot,
	}
}

// jsonDetail пишет ошибку в формате {"detail": "..."} — его ждет фронтенд.
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

// listParams — разобранные параметры списочных endpoint-ов.
type listParams struct {
	Search  string
	OrderBy string // уже провалидированное "колонка asc|desc"
	Page    int
	Limit   int
	Offset  int
}

// parseListParams разбирает search / ordering / page / limit.
// ordering принимает имя поля из allowList, "-" впереди — по убыванию.
// Всё, что не в allowList, молча заменяется дефолтом: мусор в query
// не повод для 500.
func parseListParams(r *http.Request, allowList map[string]string, defaultOrder string) listParams {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orderBy := defaultOrder
	if ordering := query.Get("ordering"); ordering != "" {
		direction := "asc"
		field := ordering
		if strings.HasPrefix(ordering, "-") {
			direction = "desc"
			field = ordering[1:]
		}
		if column, ok := allowList[field]; ok {
			orderBy = column + " " + direction
		}
	}

	return listParams{
		Search:  strings.TrimSpace(query.Get("search")),
		OrderBy: orderBy,
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
}

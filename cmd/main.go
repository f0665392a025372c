package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Amnmlk2025/dunetube/internal/auth"
	"github.com/Amnmlk2025/dunetube/internal/config"
	"github.com/Amnmlk2025/dunetube/internal/database"
	"github.com/Amnmlk2025/dunetube/internal/handlers"
	"github.com/Amnmlk2025/dunetube/internal/handlers/studio"
	"github.com/Amnmlk2025/dunetube/internal/middleware"
	"github.com/Amnmlk2025/dunetube/internal/models"
	"github.com/Amnmlk2025/dunetube/internal/roles"
)

func main() {
	// ---------------------------
	// 0. Загрузка переменных окружения
	// ---------------------------
	// .env не обязателен, переменные могут прийти из окружения
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dunetube-dev-secret"
		log.Warn("JWT_SECRET не задан, используется дефолтный (только для разработки!)")
	}
	if cfg.SessionKey == "" {
		cfg.SessionKey = "dunetube-dev-session-key"
		log.Warn("SESSION_KEY не задан, используется дефолтный (только для разработки!)")
	}

	// ---------------------------
	// 1. Подключаем GORM (База данных)
	// ---------------------------
	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalw("ошибка подключения к БД", "error", err)
	}

	// ---------------------------
	// 2. Делаем миграции
	// ---------------------------
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalw("ошибка миграции", "error", err)
	}

	// ---------------------------
	// 3. Роли и сиды
	// ---------------------------
	roleSvc := roles.NewService(db, cfg.DefaultActiveRole)
	if err := database.Seed(db, roleSvc); err != nil {
		log.Warnw("ошибка сидов (возможно, данные уже есть)", "error", err)
	}

	// ---------------------------
	// 4. Настраиваем Google OAuth
	// ---------------------------
	oauthConfig := auth.InitGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if cfg.GoogleClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID не задан, вход через Google работать не будет")
	}

	// ---------------------------
	// 5. Настройка сессий (state для OAuth)
	// ---------------------------
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   false, // Поставьте true, если используете HTTPS
	}

	// ---------------------------
	// 6. Инициализация хендлеров
	// ---------------------------
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	h := handlers.NewHandler(db, log, tokens, roleSvc, store, oauthConfig, cfg.MediaRoot)

	// Встраиваем основной Handler в Studio Service
	studioService := studio.Service{
		Handler: *h,
	}

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)
	requireCreator := middleware.RequireRole(roleSvc, models.RoleCreator, models.RoleAdmin)

	creator := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(requireCreator(next))
	}

	// ---------------------------
	// 7. Роутинг с Gorilla Mux
	// ---------------------------
	r := mux.NewRouter()
	r.StrictSlash(true)

	// --- Служебные ---
	r.HandleFunc("/healthz", h.HandleHealthz).Methods("GET")

	// --- Аутентификация ---
	r.HandleFunc("/api/token/", h.HandleToken).Methods("POST")
	r.HandleFunc("/api/token/refresh/", h.HandleTokenRefresh).Methods("POST")
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	r.HandleFunc("/api/me/", requireAuth(h.HandleMe)).Methods("GET")

	// --- Роли ---
	r.HandleFunc("/auth/roles/", requireAuth(h.HandleRoles)).Methods("GET")
	r.HandleFunc("/auth/roles/activate", requireAuth(h.HandleActivateRole)).Methods("POST")

	// --- Каталог курсов ---
	r.HandleFunc("/api/courses/", h.GetCourses).Methods("GET")
	r.HandleFunc("/api/courses/", creator(h.CreateCourse)).Methods("POST")
	r.HandleFunc("/api/courses/{id}", h.GetCourseByID).Methods("GET")
	r.HandleFunc("/api/courses/{id}", creator(h.UpdateCourse)).Methods("PUT", "PATCH")
	r.HandleFunc("/api/courses/{id}", creator(h.DeleteCourse)).Methods("DELETE")
	r.HandleFunc("/api/courses/{id}/lessons/", optionalAuth(h.GetCourseLessons)).Methods("GET")
	r.HandleFunc("/api/courses/{id}/reviews/", h.GetCourseReviews).Methods("GET")
	r.HandleFunc("/api/courses/{id}/reviews/", requireAuth(h.CreateCourseReview)).Methods("POST")

	// --- Уроки, прогресс, заметки ---
	r.HandleFunc("/api/lessons/", optionalAuth(h.GetLessons)).Methods("GET")
	r.HandleFunc("/api/lessons/{id}", optionalAuth(h.GetLessonByID)).Methods("GET")
	r.HandleFunc("/api/lessons/{id}/progress/", requireAuth(h.HandleLessonProgress)).Methods("GET", "PATCH")
	r.HandleFunc("/api/lessons/{id}/notes/", requireAuth(h.HandleLessonNotes)).Methods("GET", "POST")
	r.HandleFunc("/api/lessons/{id}/notes/{note_id}", requireAuth(h.HandleLessonNoteDetail)).Methods("PATCH", "DELETE")
	r.HandleFunc("/api/notes/", requireAuth(h.HandleNotes)).Methods("GET", "POST")
	r.HandleFunc("/api/notes/{id}", requireAuth(h.HandleNoteDetail)).Methods("GET", "PUT", "PATCH", "DELETE")

	// --- Студия (только creator/admin) ---
	r.HandleFunc("/api/studio/courses/", creator(studioService.GetCourses)).Methods("GET")
	r.HandleFunc("/api/studio/courses/", creator(studioService.CreateCourse)).Methods("POST")
	r.HandleFunc("/api/studio/courses/{id}", creator(studioService.HandleCourseByID)).Methods("GET", "PUT", "PATCH", "DELETE")
	r.HandleFunc("/api/studio/lessons/", creator(studioService.GetLessons)).Methods("GET")
	r.HandleFunc("/api/studio/lessons/", creator(studioService.CreateLesson)).Methods("POST")
	r.HandleFunc("/api/studio/lessons/{id}", creator(studioService.HandleLessonByID)).Methods("GET", "PUT", "PATCH", "DELETE")
	r.HandleFunc("/api/studio/lessons/{id}/upload", creator(studioService.UploadLessonVideo)).Methods("POST")

	// --- Кошелек (демо-данные) ---
	r.HandleFunc("/api/wallet/transactions/", requireAuth(h.HandleWalletTransactions)).Methods("GET")
	r.HandleFunc("/api/wallet/invoices/", requireAuth(h.HandleWalletInvoices)).Methods("GET")

	// --- Медиафайлы (загруженные видео) ---
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaRoot))))

	// ---------------------------
	// 8. Запуск сервера
	// ---------------------------
	corsHandler := corsMiddleware(r)
	log.Infow("сервер запущен", "addr", "http://localhost:"+cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// В продакшене лучше ставить конкретный домен
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

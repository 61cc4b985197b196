package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-transcript/config"
	"github.com/nijaru/yt-transcript/db"
	"github.com/nijaru/yt-transcript/formatters"
	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/utils"
	"github.com/nijaru/yt-transcript/validation"
)

// TranscriptService is the part of transcription.Client the API needs.
type TranscriptService interface {
	ListTranscripts(ctx context.Context, input string) (*models.Catalog, error)
	FetchTranscript(ctx context.Context, input string, languages []string) (*models.TranscriptResult, error)
	TranslateTranscript(ctx context.Context, input string, sourceLanguages []string, target string) (*models.TranscriptResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (*models.TranscriptResult, bool, error)
	Save(ctx context.Context, key string, result *models.TranscriptResult) error
}

type Archiver interface {
	Archive(ctx context.Context, result *models.TranscriptResult) error
}

type Options struct {
	Cache            Cache
	Archive          Archiver
	DefaultLanguages []string
	Timeout          time.Duration
	Logger           *logrus.Logger
}

type Handler struct {
	service          TranscriptService
	cache            Cache
	archive          Archiver
	defaultLanguages []string
	timeout          time.Duration
	logger           *logrus.Logger

	locksMu    sync.Mutex
	videoLocks map[string]*videoLock
}

type videoLock struct {
	mu   sync.Mutex
	refs int
}

func New(service TranscriptService, opts Options) *Handler {
	h := &Handler{
		service:          service,
		cache:            opts.Cache,
		archive:          opts.Archive,
		defaultLanguages: opts.DefaultLanguages,
		timeout:          opts.Timeout,
		logger:           opts.Logger,
		videoLocks:       make(map[string]*videoLock),
	}
	if len(h.defaultLanguages) == 0 {
		h.defaultLanguages = []string{"en"}
	}
	if h.timeout <= 0 {
		h.timeout = time.Minute
	}
	if h.logger == nil {
		h.logger = logrus.StandardLogger()
	}
	return h
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/api/transcripts", h.ListTranscripts)
	mux.HandleFunc("/api/transcript", h.Transcript)
	mux.HandleFunc("/api/translate", h.Translate)
	return mux
}

// lockVideo serialises upstream fetches for the same video so concurrent
// requests share one cache fill. The returned func releases the lock; the
// entry is dropped once no request holds or waits for it.
func (h *Handler) lockVideo(videoID string) func() {
	h.locksMu.Lock()
	lock, ok := h.videoLocks[videoID]
	if !ok {
		lock = &videoLock{}
		h.videoLocks[videoID] = lock
	}
	lock.refs++
	h.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		h.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(h.videoLocks, videoID)
		}
		h.locksMu.Unlock()
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogResponse struct {
	VideoID              string                       `json:"video_id"`
	Transcripts          []*models.Track              `json:"transcripts"`
	TranslationLanguages []models.TranslationLanguage `json:"translation_languages"`
}

func (h *Handler) ListTranscripts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.HandleError(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	videoID, ok := h.videoID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	catalog, err := h.service.ListTranscripts(ctx, videoID)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, catalogResponse{
		VideoID:              catalog.VideoID,
		Transcripts:          catalog.AllTranscripts(),
		TranslationLanguages: catalog.TranslationLanguages,
	})
}

func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.HandleError(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	videoID, ok := h.videoID(w, r)
	if !ok {
		return
	}
	formatter, err := formatters.ForName(r.URL.Query().Get("format"))
	if err != nil {
		utils.HandleError(w, err.Error(), http.StatusBadRequest)
		return
	}
	languages := h.languages(r)

	h.serveTranscript(w, r, formatter, videoID, languages, "", func(ctx context.Context) (*models.TranscriptResult, error) {
		return h.service.FetchTranscript(ctx, videoID, languages)
	})
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.HandleError(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	videoID, ok := h.videoID(w, r)
	if !ok {
		return
	}
	target := r.URL.Query().Get("to")
	if target == "" {
		utils.HandleError(w, "Target language (to) is required", http.StatusBadRequest)
		return
	}
	formatter, err := formatters.ForName(r.URL.Query().Get("format"))
	if err != nil {
		utils.HandleError(w, err.Error(), http.StatusBadRequest)
		return
	}
	languages := h.languages(r)

	h.serveTranscript(w, r, formatter, videoID, languages, target, func(ctx context.Context) (*models.TranscriptResult, error) {
		return h.service.TranslateTranscript(ctx, videoID, languages, target)
	})
}

func (h *Handler) serveTranscript(
	w http.ResponseWriter,
	r *http.Request,
	formatter formatters.Formatter,
	videoID string,
	languages []string,
	target string,
	fetch func(ctx context.Context) (*models.TranscriptResult, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	log := h.logger.WithFields(logrus.Fields{"video_id": videoID, "languages": languages, "target": target})

	result, err := h.loadTranscript(ctx, log, videoID, db.CacheKey(videoID, languages, target), fetch)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}

	if ctx.Err() != nil {
		utils.HandleError(w, "Request timed out", http.StatusGatewayTimeout)
		log.WithError(ctx.Err()).Error("Context cancelled before sending response")
		return
	}

	body, err := formatter.Format(result)
	if err != nil {
		utils.RespondWithError(w, err)
		return
	}
	utils.RespondWithText(w, http.StatusOK, formatter.ContentType(), body)
}

func (h *Handler) loadTranscript(
	ctx context.Context,
	log *logrus.Entry,
	videoID, key string,
	fetch func(ctx context.Context) (*models.TranscriptResult, error),
) (*models.TranscriptResult, error) {
	unlock := h.lockVideo(videoID)
	defer unlock()

	if h.cache != nil {
		cached, ok, err := h.cache.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warn("Cache lookup failed")
		} else if ok {
			log.Debug("Transcript served from cache")
			return cached, nil
		}
	}

	result, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Save(ctx, key, result); err != nil {
			log.WithError(err).Warn("Failed to cache transcript")
		}
	}
	if h.archive != nil {
		if err := h.archive.Archive(ctx, result); err != nil {
			log.WithError(err).Warn("Failed to archive transcript")
		}
	}

	log.WithField("items", len(result.Items)).Info("Transcript fetched")
	return result, nil
}

// videoID reads and resolves the v parameter, answering 400 itself on failure.
func (h *Handler) videoID(w http.ResponseWriter, r *http.Request) (string, bool) {
	input := r.URL.Query().Get("v")
	if input == "" {
		utils.HandleError(w, "Video id or URL (v) is required", http.StatusBadRequest)
		return "", false
	}
	videoID, err := validation.ResolveVideoID(input)
	if err != nil {
		utils.RespondWithError(w, err)
		return "", false
	}
	return videoID, true
}

func (h *Handler) languages(r *http.Request) []string {
	if langs := config.SplitList(r.URL.Query().Get("lang")); len(langs) > 0 {
		return langs
	}
	return h.defaultLanguages
}

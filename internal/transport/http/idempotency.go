package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour

	maxIdempotentBodySize = 1 << 20
)

// IdempotencyMiddleware кеширует ответы на повторные запросы с тем же
// Idempotency-Key. Заголовок опционален: без него запрос проходит насквозь.
type IdempotencyMiddleware struct {
	repo   domain.IdempotencyRepository
	logger *log.Entry
}

// NewIdempotencyMiddleware создаёт middleware поверх репозитория ключей.
func NewIdempotencyMiddleware(repo domain.IdempotencyRepository, logger *log.Entry) *IdempotencyMiddleware {
	if logger == nil {
		logger = log.New().WithField("component", "idempotency_middleware")
	}
	return &IdempotencyMiddleware{repo: repo, logger: logger}
}

func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
		if m.repo == nil || key == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBodySize))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		requestHash := buildRequestHash(r.Method, r.URL.Path, body)

		record, err := m.repo.CreateProcessing(key, requestHash, time.Now().UTC().Add(idempotencyTTL))
		if err != nil {
			m.replay(w, key, record, err)
			return
		}

		capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(capture, r)

		if capture.status < http.StatusBadRequest {
			err = m.repo.MarkDone(key, capture.body.Bytes(), capture.status)
		} else {
			err = m.repo.MarkFailed(key, capture.body.Bytes(), capture.status)
		}
		if err != nil {
			m.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, key string, record domain.IdempotencyRecord, createErr error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		respondError(w, http.StatusConflict, "idempotency_conflict",
			"idempotency key is already used with different request payload")
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			writeCachedResponse(w, record)
		case domain.IdempotencyStatusProcessing:
			respondError(w, http.StatusConflict, "idempotency_in_flight",
				"request with the same idempotency key is already processing")
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "unknown idempotency record status")
		}
	default:
		m.logger.WithError(createErr).WithField("idempotency_key", key).Warn("failed to create idempotency record")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to initialize idempotency request")
	}
}

func writeCachedResponse(w http.ResponseWriter, record domain.IdempotencyRecord) {
	status := record.HTTPStatus
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(record.ResponseBody)
}

func buildRequestHash(method, path string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(method))
	sum.Write([]byte{'\n'})
	sum.Write([]byte(path))
	sum.Write([]byte{'\n'})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

// captureWriter дублирует ответ в буфер для кеша идемпотентности.
type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.status = status
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

package practice

import (
	"context"

	"github.com/vytor/worddee/internal/errors"
	"github.com/vytor/worddee/internal/i18n"
	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
	"github.com/vytor/worddee/internal/models"
)

// Backend is the part of the backend API the practice page consumes.
type Backend interface {
	FetchWord(ctx context.Context) (models.Word, error)
	ValidateSentence(ctx context.Context, req models.ValidateRequest) (models.ValidationResult, error)
}

// Service drives the practice page flow on top of a Registry.
type Service struct {
	backend  Backend
	registry *Registry
	tr       i18n.Translator
	metrics  *metrics.Metrics
}

func NewService(backend Backend, registry *Registry, tr i18n.Translator, m *metrics.Metrics) *Service {
	return &Service{
		backend:  backend,
		registry: registry,
		tr:       tr,
		metrics:  m,
	}
}

// Registry returns the session registry the service works on.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Session looks up a mounted page instance.
func (s *Service) Session(id string) (*Session, error) {
	sess, ok := s.registry.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("practice session", id)
	}
	return sess, nil
}

// Mount starts a page instance and issues exactly one word request. A failed
// request leaves the page in the error state with a localized message; it is
// not retried.
func (s *Service) Mount(ctx context.Context, id string) (Snapshot, error) {
	log := logger.FromContext(ctx).WithField("session_id", id)
	sess := s.registry.Mount(id)
	if err := sess.BeginLoad(); err != nil {
		return sess.Snapshot(), err
	}

	word, err := s.backend.FetchWord(ctx)
	if err != nil {
		log.Warn("word of the day unavailable: %v", err)
		_ = sess.LoadFailed(s.tr.T(i18n.WordLoadFailed))
		return sess.Snapshot(), err
	}
	if err := sess.WordLoaded(word); err != nil {
		return sess.Snapshot(), err
	}
	log.Debug("word loaded: id=%d word=%s", word.ID, word.Word)
	return sess.Snapshot(), nil
}

// Submit runs the guard, sends the sentence and records the outcome. The
// returned snapshot is always renderable; err says why it carries an error.
func (s *Service) Submit(ctx context.Context, id, sentence string) (Snapshot, error) {
	log := logger.FromContext(ctx).WithField("session_id", id)
	sess, err := s.Session(id)
	if err != nil {
		return Snapshot{}, err
	}

	req, err := sess.BeginSubmit(sentence)
	if err != nil {
		s.metrics.ObserveSubmission("rejected")
		if msg, ok := s.rejectionMessage(err); ok {
			sess.SetError(msg)
		}
		log.Debug("submission rejected: %v", err)
		return sess.Snapshot(), err
	}

	log = log.WithFields(map[string]any{
		"word_id":          req.WordID,
		"duration_seconds": req.DurationSeconds,
	})
	log.Debug("submitting sentence")

	res, err := s.backend.ValidateSentence(ctx, req)
	if err != nil {
		s.metrics.ObserveSubmission("failed")
		log.Warn("sentence validation failed: %v", err)
		_ = sess.SubmitFailed(s.tr.T(i18n.SubmitFailed))
		return sess.Snapshot(), err
	}

	if err := sess.Complete(res); err != nil {
		return sess.Snapshot(), err
	}
	s.metrics.ObserveSubmission("scored")
	log.Info("sentence scored %.1f (%s)", res.Score, res.Level)
	return sess.Snapshot(), nil
}

// Retry resets the attempt of a mounted page instance.
func (s *Service) Retry(id string) (Snapshot, error) {
	sess, err := s.Session(id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := sess.Retry(); err != nil {
		if msg, ok := s.rejectionMessage(err); ok {
			sess.SetError(msg)
		}
		return sess.Snapshot(), err
	}
	return sess.Snapshot(), nil
}

// CloseResult hides the result overlay.
func (s *Service) CloseResult(id string) (Snapshot, error) {
	sess, err := s.Session(id)
	if err != nil {
		return Snapshot{}, err
	}
	err = sess.CloseOverlay()
	return sess.Snapshot(), err
}

// Unmount drops the page instance and stops its timer streams.
func (s *Service) Unmount(id string) {
	s.registry.Close(id)
}

func (s *Service) rejectionMessage(err error) (string, bool) {
	switch err {
	case ErrNoWord:
		return s.tr.T(i18n.WordRequired), true
	case ErrEmptySentence:
		return s.tr.T(i18n.SentenceRequired), true
	case ErrSubmitInFlight:
		return s.tr.T(i18n.SubmitInFlight), true
	case ErrSubmitLimited:
		return s.tr.T(i18n.TooManySubmissions), true
	}
	return "", false
}

package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"study-companion/internal/domain"
)

// SessionRepository abstracts where live study sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionSetRepository loads question sets (from cache/backing store).
type QuestionSetRepository interface {
	GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// StudyService contains the study session use cases.
type StudyService struct {
	sessions  SessionRepository
	sets      QuestionSetRepository
	newTicker TickerFactory
	newID     func() string
	now       func() time.Time
	logger    logrus.FieldLogger
}

// StudyOption customises a StudyService.
type StudyOption func(*StudyService)

// WithTickerFactory replaces the 1s wall-clock ticker, e.g. with a fake in tests.
func WithTickerFactory(f TickerFactory) StudyOption {
	return func(s *StudyService) { s.newTicker = f }
}

// WithIDGenerator replaces uuid session IDs.
func WithIDGenerator(f func() string) StudyOption {
	return func(s *StudyService) { s.newID = f }
}

// WithClock sets the clock used for session timestamps.
func WithClock(now func() time.Time) StudyOption {
	return func(s *StudyService) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l logrus.FieldLogger) StudyOption {
	return func(s *StudyService) { s.logger = l }
}

func NewStudyService(store SessionRepository, sets QuestionSetRepository, opts ...StudyOption) *StudyService {
	s := &StudyService{
		sessions:  store,
		sets:      sets,
		newTicker: NewRealTicker,
		newID:     uuid.NewString,
		now:       time.Now,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession loads a question set and starts a timed answering session over it.
func (s *StudyService) StartSession(ctx context.Context, setID string) (domain.SessionView, error) {
	set, err := s.sets.GetQuestionSet(ctx, setID)
	if err != nil {
		return domain.SessionView{}, err
	}

	session := newSessionWithClock(s.newID(), s.now)
	session.controller = NewController(set, NewTimer(s.newTicker, session.publishTick))
	session.controller.Start()
	s.sessions.Put(session)

	s.logger.WithFields(logrus.Fields{
		"sessionId": session.id,
		"setId":     setID,
		"questions": set.Len(),
	}).Info("study session started")
	return session.view(), nil
}

// StartReview opens a read-only session over a finished attempt.
// timeTaken is the m:ss string produced at submission.
func (s *StudyService) StartReview(ctx context.Context, setID string, selections []domain.Selection, timeTaken string) (domain.SessionView, error) {
	set, err := s.sets.GetQuestionSet(ctx, setID)
	if err != nil {
		return domain.SessionView{}, err
	}
	elapsed, err := domain.ParseElapsed(timeTaken)
	if err != nil {
		s.logger.WithError(err).WithField("setId", setID).Warn("review started without a valid time taken")
		elapsed = 0
	}

	session := newSessionWithClock(s.newID(), s.now)
	session.controller = NewReviewController(set, NewSelectionTrackerFrom(selections), elapsed)
	s.sessions.Put(session)

	s.logger.WithFields(logrus.Fields{
		"sessionId": session.id,
		"setId":     setID,
	}).Info("review session started")
	return session.view(), nil
}

// Navigate moves the session's current question. Moves past either end are ignored.
func (s *StudyService) Navigate(_ context.Context, sessionID string, move domain.Move) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	session.controller.Navigate(move)
	session.mu.Unlock()
	return session.view(), nil
}

// SelectOption records an answer for the current question. Review sessions ignore it.
func (s *StudyService) SelectOption(_ context.Context, sessionID, label string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	err := session.controller.SelectOption(label)
	session.mu.Unlock()
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.view(), nil
}

// Submit finishes the attempt and scores it. The session stays readable until End.
// ok is false when nothing was submitted, as in review sessions.
func (s *StudyService) Submit(_ context.Context, sessionID string) (result domain.Result, ok bool, err error) {
	session, found := s.sessions.Get(sessionID)
	if !found {
		return domain.Result{}, false, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	submission, submitted, err := session.controller.Submit()
	session.mu.Unlock()
	if err != nil || !submitted {
		return domain.Result{}, false, err
	}

	summary := ComputeSummary(submission.Questions, submission.Selections)
	log := s.logger.WithFields(logrus.Fields{
		"sessionId": sessionID,
		"setId":     submission.Questions.ID,
	})
	for _, w := range summary.Warnings {
		log.WithFields(logrus.Fields{
			"questionNumber": w.QuestionNumber,
			"cached":         w.Cached,
			"authoritative":  w.Authoritative,
		}).Warn("selection carries a stale correct answer")
	}
	log.WithFields(logrus.Fields{
		"correct":   summary.Correct,
		"total":     summary.Total,
		"timeTaken": submission.TimeTaken,
	}).Info("study session submitted")

	return domain.Result{Submission: submission, Summary: summary}, true, nil
}

// View returns the current snapshot of a session.
func (s *StudyService) View(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.view(), nil
}

// Subscribe returns a channel of timer ticks for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *StudyService) Subscribe(_ context.Context, sessionID string) (<-chan domain.TimerTick, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End stops the session timer and discards the session.
func (s *StudyService) End(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.close()
	s.sessions.Delete(sessionID)
	s.logger.WithField("sessionId", sessionID).Debug("study session ended")
}

// Score grades an arbitrary selection list against a stored question set.
func (s *StudyService) Score(ctx context.Context, setID string, selections []domain.Selection) (domain.ScoreSummary, error) {
	set, err := s.sets.GetQuestionSet(ctx, setID)
	if err != nil {
		return domain.ScoreSummary{}, err
	}
	return ComputeSummary(set, selections), nil
}

// QuestionSet returns a stored question set.
func (s *StudyService) QuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error) {
	return s.sets.GetQuestionSet(ctx, setID)
}

// Session is a live study session: one controller plus its tick subscribers.
type Session struct {
	id         string
	createdAt  time.Time
	now        func() time.Time
	mu         sync.Mutex
	controller *Controller

	subMu       sync.Mutex
	subscribers map[chan domain.TimerTick]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, controller *Controller) *Session {
	s := newSessionWithClock(id, time.Now)
	s.controller = controller
	return s
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id string, now func() time.Time) *Session {
	return &Session{
		id:          id,
		createdAt:   now(),
		now:         now,
		subscribers: make(map[chan domain.TimerTick]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) view() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.controller.View()
	v.SessionID = s.id
	return v
}

// close stops the timer and closes every subscriber channel.
func (s *Session) close() {
	s.mu.Lock()
	s.controller.Close()
	s.mu.Unlock()

	s.subMu.Lock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.subMu.Unlock()
}

func (s *Session) tick(elapsed int) domain.TimerTick {
	return domain.TimerTick{
		SessionID:      s.id,
		ElapsedSeconds: elapsed,
		Elapsed:        domain.FormatElapsed(elapsed),
	}
}

func (s *Session) subscribe() (<-chan domain.TimerTick, func()) {
	ch := make(chan domain.TimerTick, 8)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.tick(s.controller.ElapsedSeconds())
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

// publishTick runs on the timer goroutine; it must not take s.mu, which is held while stopping the timer.
func (s *Session) publishTick(elapsed int) {
	tick := s.tick(elapsed)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- tick:
		default:
			// drop the stale tick so slow readers never block the timer
			select {
			case <-ch:
			default:
			}
			ch <- tick
		}
	}
}

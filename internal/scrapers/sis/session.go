package sis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"sisassist-backend/internal/components/telemetry"
	"sisassist-backend/pkg/restyutil"
)

const (
	report_session_login       = "session.login"
	report_session_classes     = "session.classes"
	report_session_class       = "session.class"
	report_session_assignments = "session.assignments"
	report_session_schedule    = "session.schedule"
)

type sessionOptions struct {
	client  clientOptions
	cookies []Cookie
	tel     telemetry.API
}

type Option func(o *sessionOptions)

// WithCookies resumes a previously exported session instead of starting unauthenticated.
func WithCookies(cookies []Cookie) Option {
	return func(o *sessionOptions) {
		o.cookies = cookies
	}
}

// WithBaseURL overrides the url derived from the institution.
func WithBaseURL(baseUrl string) Option {
	return func(o *sessionOptions) {
		o.client.baseUrl = baseUrl
	}
}

func WithTelemetry(tel telemetry.API) Option {
	return func(o *sessionOptions) {
		o.tel = tel
	}
}

// WithRateLimit limits outgoing requests, requestsPerSecond <= 0 disables the limit.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(o *sessionOptions) {
		o.client.requestsPerSecond = requestsPerSecond
		o.client.burst = burst
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *sessionOptions) {
		o.client.timeout = timeout
	}
}

// WithCloudflareBypass wraps the transport so that its tls and header fingerprint looks
// like a browser's.
func WithCloudflareBypass() Option {
	return func(o *sessionOptions) {
		o.client.cloudflareBypass = true
	}
}

// WithHTTPDump writes every request and response the session makes to output.
func WithHTTPDump(output restyutil.Output) Option {
	return func(o *sessionOptions) {
		o.client.dump = output
	}
}

var sessionIds atomic.Uint64

// Session is a single logged in (or not yet logged in) SIS session.
//
// Every operation that touches the server's navigation state holds the session mutex for
// its whole duration, so concurrent calls on one Session are safe but run one at a time.
// Separate Sessions are independent.
type Session struct {
	Institution string

	id     uint64
	client *client
	tel    telemetry.API

	mutex sync.Mutex
	state AuthState
	nav   navigation
}

func NewSession(institution string, opts ...Option) (*Session, error) {
	options := sessionOptions{
		client: clientOptions{
			baseUrl:           fmt.Sprintf("https://%s.sisportal.net", institution),
			requestsPerSecond: 2,
			burst:             2,
			timeout:           30 * time.Second,
		},
		tel: telemetry.SlogAPI{},
	}
	for _, opt := range opts {
		opt(&options)
	}
	if institution == "" {
		return nil, fmt.Errorf("sis: institution must not be empty")
	}

	tel := telemetry.NewScopedAPI("sis", options.tel)
	c, err := newClient(options.client, tel)
	if err != nil {
		return nil, fmt.Errorf("sis: %w", err)
	}

	s := &Session{
		Institution: institution,
		id:          sessionIds.Add(1),
		client:      c,
		tel:         tel,
		state:       StateUnauthenticated,
	}
	if len(options.cookies) > 0 {
		c.importCookies(options.cookies)
		// whether the server still honors the cookies is only known on the next request
		s.state = StateAuthenticated
	}
	return s, nil
}

func (s *Session) State() AuthState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// ExportCookies returns every cookie the session currently holds with its path and other
// attributes, cookies sharing a name under different paths are all kept.
func (s *Session) ExportCookies() []Cookie {
	return s.client.exportCookies()
}

// fail reports err and moves an authenticated session to expired when the server
// no longer recognizes it.
func (s *Session) fail(id string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidSession):
		if s.state == StateAuthenticated {
			s.state = StateExpired
			s.nav.reset()
		}
		s.tel.ReportWarning(id, err)
	case errors.Is(err, ErrInvalidLogin), errors.Is(err, ErrUnknownClass):
		s.tel.ReportWarning(id, err)
	default:
		s.tel.ReportBroken(id, err)
	}
	return err
}

func (s *Session) requireAuth() error {
	switch s.state {
	case StateUnauthenticated:
		return fmt.Errorf("%w: not logged in", ErrInvalidSession)
	case StateExpired:
		return fmt.Errorf("%w: session expired, log in again", ErrInvalidSession)
	}
	return nil
}

// Login starts a fresh server session and authenticates it, any previous navigation state
// is discarded.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nav.reset()
	err := s.client.login(ctx, username, password)
	if err != nil {
		s.state = StateUnauthenticated
		return s.fail(report_session_login, err)
	}
	s.state = StateAuthenticated
	s.tel.ReportDebug(report_session_login, s.Institution, username)
	return nil
}

// Classes fetches the class list, the tokens of the returned classes are only valid for
// this Session.
func (s *Session) Classes(ctx context.Context) ([]ClassSummary, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.requireAuth()
	if err != nil {
		return nil, s.fail(report_session_classes, err)
	}
	doc, err := s.fetchClassList(ctx)
	if err != nil {
		return nil, s.fail(report_session_classes, err)
	}
	classes, err := decodeClasses(doc, s.id)
	if err != nil {
		return nil, s.fail(report_session_classes, err)
	}
	s.tel.ReportCount(report_session_classes, int64(len(classes)))
	return classes, nil
}

// Class fetches the attendance and grade breakdown of a class.
func (s *Session) Class(ctx context.Context, token ClassToken) (ClassDetail, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.requireAuth()
	if err != nil {
		return ClassDetail{}, s.fail(report_session_class, err)
	}
	p, err := s.ensureFocus(ctx, token)
	if err != nil {
		return ClassDetail{}, s.fail(report_session_class, err)
	}
	detail, err := decodeClassDetail(p.doc)
	if err != nil {
		return ClassDetail{}, s.fail(report_session_class, err)
	}
	return detail, nil
}

// Assignments fetches the assignments of a class.
func (s *Session) Assignments(ctx context.Context, token ClassToken) ([]Assignment, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.requireAuth()
	if err != nil {
		return nil, s.fail(report_session_assignments, err)
	}
	_, err = s.ensureFocus(ctx, token)
	if err != nil {
		return nil, s.fail(report_session_assignments, err)
	}
	assignments, err := s.fetchAssignments(ctx)
	if err != nil {
		return nil, s.fail(report_session_assignments, err)
	}
	return assignments, nil
}

// fetchAssignments reads the assignment page of whatever class is focused on the server.
func (s *Session) fetchAssignments(ctx context.Context) ([]Assignment, error) {
	p, err := s.client.fetch(ctx, http.MethodGet, endpoint_assignments, nil)
	if err != nil {
		return nil, err
	}
	err = p.check()
	if err != nil {
		return nil, err
	}
	return decodeAssignments(p.doc)
}

// Schedule fetches the weekly schedule, the matrix page only renders after the schedule
// page has been visited in the same session.
func (s *Session) Schedule(ctx context.Context) (Schedule, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.requireAuth()
	if err != nil {
		return Schedule{}, s.fail(report_session_schedule, err)
	}

	prime, err := s.client.fetch(ctx, http.MethodGet, endpoint_schedule, nil)
	if err != nil {
		return Schedule{}, s.fail(report_session_schedule, err)
	}
	err = prime.check()
	if err != nil {
		return Schedule{}, s.fail(report_session_schedule, err)
	}

	matrix, err := s.client.fetch(ctx, http.MethodGet, endpoint_schedule_matrix, nil)
	if err != nil {
		return Schedule{}, s.fail(report_session_schedule, err)
	}
	err = matrix.check()
	if err != nil {
		return Schedule{}, s.fail(report_session_schedule, err)
	}

	schedule, err := decodeSchedule(matrix.doc, s.tel)
	if err != nil {
		return Schedule{}, s.fail(report_session_schedule, err)
	}
	return schedule, nil
}

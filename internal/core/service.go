package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/JonMunkholm/rostercheck/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Recorder receives the outcome of each verification run.
// Implemented by the metrics package; a nil Recorder records nothing.
type Recorder interface {
	RunCompleted(duration time.Duration, summary DiscrepancySummary)
	RunFailed(reason string)
}

// Failure reasons passed to Recorder.RunFailed besides parse error kinds.
const (
	FailureBusy     = "busy"
	FailureCanceled = "canceled"
	FailureInternal = "internal"
)

// Service runs verifications: parse the three inputs, then reconcile them.
type Service struct {
	registrationCols RegistrationColumns
	studentCols      StudentColumns
	courseLabels     CourseLabels
	timeout          time.Duration
	limiter          *VerifyLimiter
	recorder         Recorder
}

// NewService creates a Service from configuration.
func NewService(cfg *config.Config, recorder Recorder) *Service {
	return &Service{
		registrationCols: RegistrationColumns{
			StudentID:     cfg.Sources.RegistrationStudentID,
			CourseID:      cfg.Sources.RegistrationCourseID,
			Deletion:      cfg.Sources.RegistrationDeletion,
			DeletedMarker: cfg.Sources.DeletedMarker,
		},
		studentCols: StudentColumns{
			ID:            cfg.Sources.StudentID,
			Name:          cfg.Sources.StudentName,
			SchoolEmail:   cfg.Sources.StudentSchoolEmail,
			PersonalEmail: cfg.Sources.StudentPersonalEmail,
		},
		courseLabels: CourseLabels{
			CourseID:   cfg.Sources.CourseIDLabel,
			CourseName: cfg.Sources.CourseNameLabel,
			StudentID:  cfg.Sources.CourseStudentIDLabel,
		},
		timeout:  cfg.Verify.Timeout,
		limiter:  NewVerifyLimiter(cfg.Verify.MaxConcurrent, cfg.Verify.MaxWaitTime),
		recorder: recorder,
	}
}

// VerifyInput holds the three files of one verification run.
type VerifyInput struct {
	Registrations io.Reader // Registration export (CSV)
	Students      io.Reader // Student directory export (CSV)
	Courses       io.Reader // Roster workbook (xlsx)
}

// InputCounts records how many entries each relation held.
type InputCounts struct {
	Registrations int `json:"registrations"`
	Students      int `json:"students"`
	Courses       int `json:"courses"`
}

// VerifyResult is the outcome of a successful verification run.
type VerifyResult struct {
	RunID       string                  `json:"runId"`
	Discrepancy RegistrationDiscrepancy `json:"discrepancy"`
	Summary     DiscrepancySummary      `json:"summary"`
	Inputs      InputCounts             `json:"inputs"`
	Duration    time.Duration           `json:"-"`
	Courses     *CourseIndex            `json:"-"`
}

// ByExpectedCourse groups the discrepancy per roster course.
func (r *VerifyResult) ByExpectedCourse() []CourseDiscrepancy {
	return r.Discrepancy.ByExpectedCourse(r.Courses)
}

// Verify parses the inputs and reconciles them. Any parse error ends the
// run before reconciliation; no partial relation is ever reconciled.
func (s *Service) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	runID := uuid.NewString()
	logger := logging.WithFields(ctx, "run_id", runID)
	start := time.Now()

	if err := s.limiter.Acquire(ctx); err != nil {
		s.recordFailure(err)
		logger.Warn("verification rejected", "error", err)
		return nil, fmt.Errorf("acquire verification slot: %w", err)
	}
	var running <-chan struct{}
	defer func() { s.release(running) }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger.Info("verification started")

	p, running, err := s.parse(ctx, in)
	if err != nil {
		s.recordFailure(err)
		if ctx.Err() != nil {
			logger.Warn("verification abandoned", "error", err)
			return nil, fmt.Errorf("verification: %w", err)
		}
		logger.Warn("verification input rejected",
			"error", err,
			"kind", ParseErrorKind(err),
		)
		return nil, err
	}
	registered, students, courses := p.registered, p.students, p.courses

	discrepancy := Reconcile(registered, students, courses)
	summary := discrepancy.Summary()
	duration := time.Since(start)

	if s.recorder != nil {
		s.recorder.RunCompleted(duration, summary)
	}

	logger.Info("verification completed",
		"courses", courses.Len(),
		"students", len(students),
		"registrations", len(registered),
		"wrong_course", summary.WrongCourse,
		"no_course", summary.NoCourse,
		"unknown_course", summary.UnknownCourse,
		"without_details", summary.WithoutDetails,
		"duration_ms", duration.Milliseconds(),
	)

	return &VerifyResult{
		RunID:       runID,
		Discrepancy: discrepancy,
		Summary:     summary,
		Inputs: InputCounts{
			Registrations: len(registered),
			Students:      len(students),
			Courses:       courses.Len(),
		},
		Duration: duration,
		Courses:  courses,
	}, nil
}

// relations holds the three parsed inputs of one run.
type relations struct {
	registered RegisteredCourseIndex
	students   StudentDirectory
	courses    *CourseIndex
}

// parse reads the three inputs concurrently. It returns as soon as ctx is
// done; parsers still running then stop at their next read, and the
// returned channel is closed once they have. A context error always wins
// over a parse error.
func (s *Service) parse(ctx context.Context, in VerifyInput) (relations, <-chan struct{}, error) {
	var p relations

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := ReadTable(SourceRegistrations, contextReader{gctx, in.Registrations})
		if err != nil {
			return err
		}
		p.registered, err = ParseRegistrations(t, s.registrationCols)
		return err
	})
	g.Go(func() error {
		t, err := ReadTable(SourceStudents, contextReader{gctx, in.Students})
		if err != nil {
			return err
		}
		p.students, err = ParseStudents(t, s.studentCols)
		return err
	})
	g.Go(func() error {
		var err error
		p.courses, err = ParseCourses(contextReader{gctx, in.Courses}, s.courseLabels)
		return err
	})

	var waitErr error
	done := make(chan struct{})
	go func() {
		waitErr = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return relations{}, done, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return relations{}, nil, err
	}
	if waitErr != nil {
		return relations{}, nil, waitErr
	}
	return p, nil, nil
}

// release frees the run's limiter slot. While abandoned parsers are still
// running the slot stays taken until they stop.
func (s *Service) release(running <-chan struct{}) {
	if running == nil {
		s.limiter.Release()
		return
	}
	go func() {
		<-running
		s.limiter.Release()
	}()
}

// contextReader fails every read once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(b []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(b)
}

func (s *Service) recordFailure(err error) {
	if s.recorder == nil {
		return
	}
	reason := ParseErrorKind(err)
	switch {
	case reason != "":
	case errors.Is(err, ErrTooManyVerifications):
		reason = FailureBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = FailureCanceled
	default:
		reason = FailureInternal
	}
	s.recorder.RunFailed(reason)
}

// LimiterStatus returns the current verification slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight verifications finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

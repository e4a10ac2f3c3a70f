package core

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu        sync.Mutex
	completed []DiscrepancySummary
	failed    []string
}

func (r *fakeRecorder) RunCompleted(_ time.Duration, summary DiscrepancySummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, summary)
}

func (r *fakeRecorder) RunFailed(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, reason)
}

const (
	serviceRegistrations = "学籍番号,科目番号,論理削除\nS1,C1,\nS2,C1,\nS3,C7,\n"
	serviceStudents      = "学籍番号,学生氏名,Ｅ－ＭＡＩＬ＿大学,Ｅ－ＭＡＩＬ\nS1,Alice,s1@u.ac.jp,\nS2,Bob,s2@u.ac.jp,\nS3,Carol,s3@u.ac.jp,\nS4,Dan,s4@u.ac.jp,\n"
)

func serviceInput(t *testing.T, registrations, students string) VerifyInput {
	return VerifyInput{
		Registrations: strings.NewReader(registrations),
		Students:      strings.NewReader(students),
		Courses: buildWorkbook(t,
			rosterSheet("Math", "C1", "Math", "S1", "S4"),
			rosterSheet("Physics", "C2", "Physics", "S2", "S3", "S5"),
		),
	}
}

func TestService_Verify(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(config.Defaults(), rec)

	result, err := svc.Verify(context.Background(), serviceInput(t, serviceRegistrations, serviceStudents))
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, InputCounts{Registrations: 3, Students: 4, Courses: 2}, result.Inputs)
	assert.Equal(t, DiscrepancySummary{WrongCourse: 1, NoCourse: 1, UnknownCourse: 1, WithoutDetails: 1, Total: 4}, result.Summary)
	assert.Equal(t, result.Discrepancy.Summary(), result.Summary)

	require.Len(t, result.Discrepancy.StudentsInWrongCourse, 1)
	wrong := result.Discrepancy.StudentsInWrongCourse[0]
	assert.Equal(t, StudentID("S2"), wrong.Student.ID)
	assert.Equal(t, "Math", wrong.RegisteredCourse.TargetName)
	assert.Equal(t, CourseID("C2"), wrong.ExpectedCourse.ID)

	groups := result.ByExpectedCourse()
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].Total(), "S4 has no registration")
	assert.Equal(t, 3, groups[1].Total())

	assert.Equal(t, []DiscrepancySummary{result.Summary}, rec.completed)
	assert.Empty(t, rec.failed)
	assert.Equal(t, 0, svc.LimiterStatus().Active)
}

func TestService_Verify_ParseErrorStopsRun(t *testing.T) {
	tests := []struct {
		name     string
		input    func(t *testing.T) VerifyInput
		wantKind string
	}{
		{
			name: "missing column",
			input: func(t *testing.T) VerifyInput {
				return serviceInput(t, "学籍番号,科目番号\nS1,C1\n", serviceStudents)
			},
			wantKind: KindMissingColumn,
		},
		{
			name: "bad deletion value",
			input: func(t *testing.T) VerifyInput {
				return serviceInput(t, "学籍番号,科目番号,論理削除\nS1,C1,x\n", serviceStudents)
			},
			wantKind: KindBadDeletionValue,
		},
		{
			name: "missing cell",
			input: func(t *testing.T) VerifyInput {
				in := serviceInput(t, serviceRegistrations, serviceStudents)
				in.Courses = buildWorkbook(t, testSheet{name: "empty"})
				return in
			},
			wantKind: KindMissingCell,
		},
		{
			name: "unreadable workbook",
			input: func(t *testing.T) VerifyInput {
				in := serviceInput(t, serviceRegistrations, serviceStudents)
				in.Courses = strings.NewReader("not a workbook")
				return in
			},
			wantKind: KindFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			svc := NewService(config.Defaults(), rec)

			result, err := svc.Verify(context.Background(), tt.input(t))
			require.Error(t, err)
			assert.Nil(t, result)

			var pe ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantKind, pe.Kind())
			assert.Equal(t, []string{tt.wantKind}, rec.failed)
			assert.Empty(t, rec.completed)
		})
	}
}

func TestService_Verify_Busy(t *testing.T) {
	cfg := config.Defaults()
	cfg.Verify.MaxConcurrent = 1
	cfg.Verify.MaxWaitTime = 20 * time.Millisecond

	rec := &fakeRecorder{}
	svc := NewService(cfg, rec)

	require.NoError(t, svc.limiter.Acquire(context.Background()))
	defer svc.limiter.Release()

	_, err := svc.Verify(context.Background(), serviceInput(t, serviceRegistrations, serviceStudents))
	require.ErrorIs(t, err, ErrTooManyVerifications)
	assert.Equal(t, "VER001", MapError(err).Code)
	assert.Equal(t, []string{FailureBusy}, rec.failed)
}

func TestService_Verify_ConfiguredColumns(t *testing.T) {
	cfg := config.Defaults()
	cfg.Sources.RegistrationStudentID = "student"
	cfg.Sources.RegistrationCourseID = "course"
	cfg.Sources.RegistrationDeletion = "deleted"
	cfg.Sources.DeletedMarker = "yes"

	svc := NewService(cfg, nil)

	registrations := "student,course,deleted\nS1,C1,\nS2,C1,yes\n"
	result, err := svc.Verify(context.Background(), serviceInput(t, registrations, serviceStudents))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Inputs.Registrations)
	assert.Equal(t, DiscrepancySummary{NoCourse: 3, WithoutDetails: 1, Total: 4}, result.Summary,
		"S2's only registration is deleted and S3 is not registered")
}

func TestService_WaitForRuns(t *testing.T) {
	svc := NewService(config.Defaults(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, svc.WaitForRuns(ctx))
}

// slowReader sleeps before every read.
type slowReader struct {
	delay time.Duration
	r     io.Reader
}

func (r *slowReader) Read(p []byte) (int, error) {
	time.Sleep(r.delay)
	return r.r.Read(p)
}

func TestService_Verify_TimeoutBoundsRun(t *testing.T) {
	tests := []struct {
		name          string
		registrations io.Reader
	}{
		{
			name:          "reader blocked in one read",
			registrations: &slowReader{delay: time.Second, r: strings.NewReader(serviceRegistrations)},
		},
		{
			name: "reader trickling bytes",
			registrations: &slowReader{
				delay: 10 * time.Millisecond,
				r:     iotest.OneByteReader(strings.NewReader(strings.Repeat(serviceRegistrations, 20))),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Verify.Timeout = 50 * time.Millisecond

			rec := &fakeRecorder{}
			svc := NewService(cfg, rec)

			in := serviceInput(t, serviceRegistrations, serviceStudents)
			in.Registrations = tt.registrations

			start := time.Now()
			result, err := svc.Verify(context.Background(), in)
			elapsed := time.Since(start)

			require.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Nil(t, result)
			assert.Less(t, elapsed, 500*time.Millisecond, "run outlived its deadline")
			assert.Equal(t, "VER003", MapError(err).Code)
			assert.Empty(t, ParseErrorKind(err), "deadline is not reported as a parse error")
			assert.Equal(t, []string{FailureCanceled}, rec.failed)

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			require.NoError(t, svc.WaitForRuns(ctx), "slot is released once the parsers stop")
			assert.Equal(t, 0, svc.LimiterStatus().Active)
		})
	}
}

func TestService_Verify_CanceledContext(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(config.Defaults(), rec)

	ctx, cancel := context.WithCancel(context.Background())
	in := serviceInput(t, serviceRegistrations, serviceStudents)
	in.Students = &slowReader{delay: time.Second, r: strings.NewReader(serviceStudents)}

	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := svc.Verify(ctx, in)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "VER002", MapError(err).Code)
	assert.Equal(t, []string{FailureCanceled}, rec.failed)
}

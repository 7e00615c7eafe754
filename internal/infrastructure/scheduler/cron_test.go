package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var moscow = time.FixedZone("MSK", 3*60*60)

func TestParseCronExpressionDaily(t *testing.T) {
	ce, err := ParseCronExpression("59 23 * * *")
	assert.NoError(t, err)
	assert.Equal(t, []int{59}, ce.minutes)
	assert.Equal(t, []int{23}, ce.hours)
	assert.Len(t, ce.days, 31)
	assert.Len(t, ce.weekdays, 7)
}

func TestParseCronExpressionSteps(t *testing.T) {
	ce, err := ParseCronExpression("*/15 * * * *")
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 15, 30, 45}, ce.minutes)
}

func TestParseCronExpressionRejectsGarbage(t *testing.T) {
	_, err := ParseCronExpression("61 * * * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("* * *")
	assert.Error(t, err)
}

func TestCronNextSameDay(t *testing.T) {
	ce := MustParseCronExpression("59 23 * * *")

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, moscow)
	next := ce.Next(at)

	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 0, 0, moscow), next)
}

func TestCronNextRollsToNextDay(t *testing.T) {
	ce := MustParseCronExpression("59 23 * * *")

	// 30 seconds past the daily fire time: next run is tomorrow.
	at := time.Date(2025, 3, 10, 23, 59, 30, 0, moscow)
	next := ce.Next(at)

	assert.Equal(t, time.Date(2025, 3, 11, 23, 59, 0, 0, moscow), next)
}

func TestDailySchedule(t *testing.T) {
	s, err := DailySchedule(23, 59)
	assert.NoError(t, err)
	assert.Equal(t, "59 23 * * *", s.String())

	at := time.Date(2025, 3, 10, 0, 0, 0, 0, moscow)
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 0, 0, moscow), s.Next(at))
}

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(60 * time.Second)

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, at.Add(time.Minute), s.Next(at))
	assert.Equal(t, "@every 1m0s", s.String())
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "test job" }
func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestSchedulerRegisterAndRunNow(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &countingJob{name: "match-sync"}

	err := s.Register(job, NewIntervalSchedule(time.Minute))
	assert.NoError(t, err)

	// Duplicate registration is rejected.
	err = s.Register(job, NewIntervalSchedule(time.Minute))
	assert.ErrorIs(t, err, ErrJobAlreadyExists)

	result, err := s.RunNow(context.Background(), "match-sync")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, job.runs)

	info, err := s.GetJobInfo("match-sync")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), info.FailCount)
	assert.NotNil(t, info.LastResult)
}

func TestSchedulerRunNowUnknownJob(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	_, err := s.RunNow(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSchedulerListJobs(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	_ = s.Register(&countingJob{name: "a"}, NewIntervalSchedule(time.Minute))
	daily, _ := DailySchedule(23, 59)
	_ = s.Register(&countingJob{name: "b"}, daily)

	jobs := s.ListJobs()
	assert.Len(t, jobs, 2)
}

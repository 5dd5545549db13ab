package jobs

import (
	"context"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestSubmitCompletes(t *testing.T) {
	m := NewManager()
	job := m.Submit("train", "fit knn", func(ctx context.Context, job *Job) (any, error) {
		job.SetProgress(0.5)
		log.New(job, "", 0).Printf("halfway")
		return 42, nil
	})

	if !strings.HasPrefix(job.ID, "train-") {
		t.Errorf("ID = %q", job.ID)
	}
	result, err := job.Wait()
	if err != nil {
		t.Fatal(err)
	}
	if result != 42 {
		t.Errorf("result = %v", result)
	}
	if job.Status() != JobCompleted || job.Progress() != 1 {
		t.Errorf("status %s, progress %v", job.Status(), job.Progress())
	}
	if job.EndTime().IsZero() {
		t.Error("EndTime not set")
	}
	logs := job.Logs()
	if len(logs) != 1 || !strings.HasSuffix(logs[0], "halfway") {
		t.Errorf("logs = %q", logs)
	}

	got, ok := m.GetJob(job.ID)
	if !ok || got != job {
		t.Error("GetJob lost the job")
	}
}

func TestSubmitFails(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	job := m.Submit("train", "broken", func(context.Context, *Job) (any, error) {
		return nil, boom
	})
	if _, err := job.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait error = %v", err)
	}
	if job.Status() != JobFailed || !errors.Is(job.Err(), boom) {
		t.Errorf("status %s, err %v", job.Status(), job.Err())
	}
	if err := m.CancelJob(job.ID); err == nil {
		t.Error("cancelled a finished job")
	}
}

func TestCancelJob(t *testing.T) {
	m := NewManager()
	started := make(chan struct{})
	job := m.Submit("experiment", "grid", func(ctx context.Context, _ *Job) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	<-started
	if err := m.CancelJob(job.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := job.Wait(); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait error = %v", err)
	}
	if job.Status() != JobCancelled {
		t.Errorf("status = %s, want cancelled", job.Status())
	}

	if err := m.CancelJob("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CancelJob(missing) = %v, want ErrNotFound", err)
	}
}

func TestListJobs(t *testing.T) {
	m := NewManager()
	var jobs []*Job
	for i := 0; i < 3; i++ {
		jobs = append(jobs, m.Submit("train", "", func(context.Context, *Job) (any, error) { return nil, nil }))
	}
	for _, j := range jobs {
		j.Wait()
	}

	listed := m.ListJobs()
	if len(listed) != 3 {
		t.Fatalf("%d jobs listed", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i].StartTime.Before(listed[i-1].StartTime) {
			t.Error("jobs not ordered by start time")
		}
	}
}

package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"newton-gpt/internal/logbuf"
)

// Scheduler runs periodic maintenance. Currently one job: trimming the
// in-memory log buffer once a day so a long-running process does not grow
// without bound. The mirror file keeps the full history.
type Scheduler struct {
	cron *cron.Cron
	buf  *logbuf.Buffer
	keep int
}

func New(buf *logbuf.Buffer, keep int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		buf:  buf,
		keep: keep,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		before := s.buf.Len()
		s.buf.Trim(s.keep)
		s.buf.Infof("log buffer trimmed: %d -> %d lines", before, s.buf.Len())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

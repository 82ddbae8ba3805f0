package charset

// detect.go feeds a bounded byte sample into a statistical charset prober.
//
// Each call owns a fresh probeSession; the prober is never shared or reused,
// so no reset bookkeeping is needed. Prober failures, including panics raised
// by individual recognizers on pathological input, collapse into "no result"
// and the caller's fallback wins.

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gogs/chardet"
)

const (
	// chunkSize is the read granularity of the sample.
	chunkSize = 4096

	// confident is the prober score at which sampling stops early.
	confident = 100
)

// Detect returns the best-guess charset of r, reading at most limit bytes
// (limit <= 0 reads the whole stream). It never fails: empty input, an
// unknown or unsupported guess, or any prober failure returns fallback.
func Detect(r io.Reader, fallback Charset, limit int64) Charset {
	s := newProbeSession()

	buf := make([]byte, chunkSize)
	var total int64
	for !s.done && (limit <= 0 || total < limit) {
		want := int64(len(buf))
		if limit > 0 && limit-total < want {
			want = limit - total
		}

		n, err := r.Read(buf[:want])
		if n > 0 {
			s.feed(buf[:n])
			total += int64(n)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("charset sample read stopped", "error", err, "bytes", total)
			}
			break
		}
	}

	name, ok := s.finish()
	if !ok {
		return fallback
	}
	c, err := Lookup(name)
	if err != nil {
		slog.Debug("detected charset has no decoder", "charset", name)
		return fallback
	}
	return c
}

// prober is the subset of *chardet.Detector a session drives.
type prober interface {
	DetectBest(b []byte) (*chardet.Result, error)
}

// probeSession accumulates a sample and probes it at doubling sizes so large
// samples are not rescanned on every chunk.
type probeSession struct {
	detector  prober
	sample    []byte
	nextProbe int
	best      *chardet.Result
	failed    bool
	done      bool
}

func newProbeSession() *probeSession {
	return &probeSession{
		detector:  chardet.NewTextDetector(),
		nextProbe: chunkSize,
	}
}

func (s *probeSession) feed(p []byte) {
	s.sample = append(s.sample, p...)
	if len(s.sample) < s.nextProbe {
		return
	}
	s.nextProbe *= 2
	s.probe()
}

// finish runs the final probe over the whole sample.
func (s *probeSession) finish() (string, bool) {
	if !s.done {
		s.probe()
	}
	if s.failed || s.best == nil || s.best.Charset == "" {
		return "", false
	}
	return s.best.Charset, true
}

func (s *probeSession) probe() {
	if s.failed || len(s.sample) == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("charset prober panicked", "panic", r)
			s.failed = true
			s.best = nil
		}
	}()

	res, err := s.detector.DetectBest(s.sample)
	if err != nil || res == nil {
		s.best = nil
		return
	}
	s.best = res
	if res.Confidence >= confident {
		s.done = true
	}
}

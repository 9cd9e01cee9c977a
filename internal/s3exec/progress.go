package s3exec

import (
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// progressInterval is the minimum spacing of progress events per transfer.
const progressInterval = 250 * time.Millisecond

// progressReporter sums the bytes of the parts in flight and emits at most
// one progress event per progressInterval.
type progressReporter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	base    int64
	parts   map[int]int64
	total   int64
	emit    func(transferred, total int64)
}

func newProgressReporter(base, total int64, emit func(transferred, total int64)) *progressReporter {
	return &progressReporter{
		limiter: rate.NewLimiter(rate.Every(progressInterval), 1),
		base:    base,
		parts:   make(map[int]int64),
		total:   total,
		emit:    emit,
	}
}

// set records how many bytes of part have been moved so far.
func (p *progressReporter) set(part int, n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.parts[part] = n
	if p.limiter.Allow() {
		p.emit(p.sum(), p.total)
	}
}

// flush emits the current sum regardless of the rate limit.
func (p *progressReporter) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emit(p.sum(), p.total)
}

func (p *progressReporter) sum() int64 {
	n := p.base
	for _, v := range p.parts {
		n += v
	}
	return n
}

// ProgressReader reports how far a seekable body has been read. The SDK
// rewinds bodies on retries, so Seek resets the count.
type ProgressReader struct {
	reader   io.ReadSeeker
	read     int64
	callback func(processed int64)
}

func NewProgressReader(reader io.ReadSeeker, callback func(processed int64)) *ProgressReader {
	return &ProgressReader{reader: reader, callback: callback}
}

// Seek implements io.Seeker.
func (pr *ProgressReader) Seek(offset int64, whence int) (n int64, err error) {
	n, err = pr.reader.Seek(offset, whence)
	if err == nil {
		pr.read = n
		pr.invokeCallback()
	}
	return
}

// Read implements io.Reader.
func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	if n > 0 {
		pr.read += int64(n)
		pr.invokeCallback()
	}
	return
}

func (pr *ProgressReader) invokeCallback() {
	if pr.callback != nil {
		pr.callback(pr.read)
	}
}

// progressWriter counts bytes copied out of a response body.
type progressWriter struct {
	written  int64
	callback func(written int64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.written += int64(len(p))
	pw.callback(pw.written)
	return len(p), nil
}

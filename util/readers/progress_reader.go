package readers

import (
	"io"
	"sync"
)

// ProgressFunc receives a whole percentage, 0 through 100.
type ProgressFunc func(percent int)

// ProgressReader reports how much of a known-length stream has been consumed. Reports never go
// backwards and the same percentage is not reported twice. 100 is only reported once the
// upstream signals EOF, or when Complete is called.
type ProgressReader struct {
	r            io.Reader
	total        int64
	read         int64
	last         int
	onChange     ProgressFunc
	holdUntilAck bool
	lock         sync.Mutex
}

func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, last: -1, onChange: fn}
}

// NewUploadProgressReader is a ProgressReader for request bodies: the transport drains the body
// before the server answers, so 100 is only reported by Complete.
func NewUploadProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, last: -1, onChange: fn, holdUntilAck: true}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.lock.Lock()
	defer p.lock.Unlock()
	p.read += int64(n)
	if err == io.EOF && !p.holdUntilAck {
		p.report(100)
	} else if n > 0 {
		p.report(min(Percent(p.read, p.total), 99))
	}
	return n, err
}

// Complete forces the final 100 report once the stream is known to have been accepted.
func (p *ProgressReader) Complete() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.report(100)
}

func (p *ProgressReader) report(pct int) {
	if pct <= p.last || p.onChange == nil {
		return
	}
	p.last = pct
	p.onChange(pct)
}

// Percent is loaded/total as a whole percentage rounded down, capped to 0..100.
func Percent(loaded int64, total int64) int {
	if total <= 0 {
		return 100
	}
	pct := int(loaded * 100 / total)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

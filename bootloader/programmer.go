package bootloader

import (
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/flash"
	"github.com/moffa90/go-flxboot/image"
	"github.com/moffa90/go-flxboot/nvm"
)

// Programmer copies a validated image from external flash into the
// application space of internal flash, one page at a time.
type Programmer struct {
	flash  *flash.Transport
	nvm    *nvm.Controller
	config Config
}

// Result summarizes a programming pass.
type Result struct {
	// BytesCopied is the number of payload bytes written to internal flash
	BytesCopied int

	// PagesWritten is the number of page erase/write pairs issued
	PagesWritten int

	// BytesDropped is the trailing payload left unwritten when padding is disabled
	BytesDropped int
}

// NewProgrammer creates a Programmer reading from t and writing through ctrl.
func NewProgrammer(t *flash.Transport, ctrl *nvm.Controller, opts ...Option) *Programmer {
	if t == nil {
		panic("flash transport cannot be nil")
	}
	if ctrl == nil {
		panic("nvm controller cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Programmer{
		flash:  t,
		nvm:    ctrl,
		config: cfg,
	}
}

// Program streams length payload bytes starting at external offset
// image.PayloadOffset into internal flash starting at the application start.
//
// Each destination page is erased immediately before it is written. A
// trailing partial page is padded with PadByte unless padding is disabled.
// The pass is not transactional: an error leaves the pages written so far
// in place.
func (p *Programmer) Program(length uint32) (*Result, error) {
	region := p.nvm.Region()
	if length == 0 || !region.Contains(region.AppStart(), length) {
		return nil, &OutOfRangeError{
			Addr:     region.AppStart(),
			Length:   length,
			AppStart: region.AppStart(),
			AppEnd:   region.AppEnd(),
		}
	}

	pageSize := int(region.PageSize)
	buf, err := p.config.BufferAllocator(pageSize)
	if err != nil || len(buf) < pageSize {
		p.config.logError("page buffer allocation failed", "size", pageSize, "error", err)
		return nil, &AllocationError{Size: pageSize, Err: err}
	}
	buf = buf[:pageSize]

	startTime := time.Now()
	totalPages := int((length + region.PageSize - 1) / region.PageSize)
	res := &Result{}
	dest := region.AppStart()
	fill := 0

	for i := uint32(0); i < length; i++ {
		b, err := p.flash.ReadByteAt(image.PayloadOffset + i)
		if err != nil {
			return res, errors.Wrapf(err, "read payload byte %d", i)
		}
		buf[fill] = b
		fill++

		if fill == pageSize {
			if err := p.writePage(dest, buf); err != nil {
				return res, err
			}
			dest += region.PageSize
			fill = 0
			res.PagesWritten++
			res.BytesCopied += pageSize

			p.config.reportProgress(Progress{
				Phase:        PhaseProgramming,
				CurrentPage:  res.PagesWritten,
				TotalPages:   totalPages,
				Percentage:   float64(res.PagesWritten) / float64(totalPages) * 100,
				BytesWritten: res.BytesCopied,
				ElapsedTime:  time.Since(startTime),
			})
		}
	}

	if fill > 0 {
		if !p.config.PadTrailingPage {
			res.BytesDropped = fill
			p.config.logError("trailing partial page dropped", "addr", dest, "bytes", fill)
		} else {
			for j := fill; j < pageSize; j++ {
				buf[j] = PadByte
			}
			if err := p.writePage(dest, buf); err != nil {
				return res, err
			}
			res.PagesWritten++
			res.BytesCopied += fill

			p.config.reportProgress(Progress{
				Phase:        PhaseProgramming,
				CurrentPage:  res.PagesWritten,
				TotalPages:   totalPages,
				Percentage:   100,
				BytesWritten: res.BytesCopied,
				ElapsedTime:  time.Since(startTime),
			})
		}
	}

	p.config.logInfo("programming complete",
		"bytes", res.BytesCopied,
		"pages", res.PagesWritten,
		"elapsed", time.Since(startTime).String(),
	)

	return res, nil
}

// writePage erases the page at addr and writes buf to it.
func (p *Programmer) writePage(addr uint32, buf []byte) error {
	region := p.nvm.Region()
	if addr%region.PageSize != 0 || !region.Contains(addr, uint32(len(buf))) {
		return &OutOfRangeError{
			Addr:     addr,
			Length:   uint32(len(buf)),
			AppStart: region.AppStart(),
			AppEnd:   region.AppEnd(),
		}
	}

	if err := p.nvm.EraseRow(addr); err != nil {
		return errors.Wrapf(err, "erase page 0x%08X", addr)
	}
	if err := p.nvm.Write(addr, buf); err != nil {
		return errors.Wrapf(err, "write page 0x%08X", addr)
	}

	if p.config.VerifyAfterProgram {
		return p.verifyPage(addr, buf)
	}
	return nil
}

// verifyPage reads a page back and compares it with buf.
func (p *Programmer) verifyPage(addr uint32, buf []byte) error {
	got := make([]byte, len(buf))
	if err := p.nvm.Read(addr, got); err != nil {
		return errors.Wrapf(err, "verify page 0x%08X", addr)
	}
	for i := range buf {
		if got[i] != buf[i] {
			return &VerificationError{
				Addr:     addr + uint32(i),
				Expected: buf[i],
				Actual:   got[i],
			}
		}
	}
	return nil
}

// reportProgress calls the progress callback if configured.
func (c Config) reportProgress(progress Progress) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c Config) logDebug(msg string, keysAndValues ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c Config) logInfo(msg string, keysAndValues ...interface{}) {
	if c.Logger != nil {
		c.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c Config) logError(msg string, keysAndValues ...interface{}) {
	if c.Logger != nil {
		c.Logger.Error(msg, keysAndValues...)
	}
}

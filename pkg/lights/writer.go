package lights

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"syscall"
)

// nodeFile is the slice of *os.File the writer needs. Tests substitute fakes
// through the Module's openNode seam.
type nodeFile interface {
	Write(p []byte) (int, error)
	Close() error
}

// openNode opens a sysfs control node for writing. O_RDWR without O_CREATE:
// a missing node must fail, never be created as a regular file.
func openNode(path string) (nodeFile, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

// nodeWriter issues best-effort formatted writes to one fixed control node.
// Every write is a single attempt: open, write one newline-terminated line,
// close. The first failure is logged; repeats return the error silently so a
// persistently broken node cannot flood the log.
type nodeWriter struct {
	path string
	open func(path string) (nodeFile, error)
	log  *slog.Logger

	warnOnce sync.Once
}

// writeInt writes a decimal integer line to the node.
func (w *nodeWriter) writeInt(v int) error {
	return w.writeString(strconv.Itoa(v))
}

// writeString writes s plus a trailing newline to the node.
func (w *nodeWriter) writeString(s string) error {
	f, err := w.open(w.path)
	if err != nil {
		w.warn(err)
		return err
	}
	defer f.Close()

	buf := append([]byte(s), '\n')
	n, err := f.Write(buf)
	if err != nil {
		w.warn(err)
		return err
	}
	if n != len(buf) {
		// A short write leaves the driver with a truncated command; treat
		// it exactly like a hard I/O failure.
		err = io.ErrShortWrite
		w.warn(err)
		return err
	}
	return nil
}

func (w *nodeWriter) warn(err error) {
	w.warnOnce.Do(func() {
		w.log.Error("light control node write failed", "path", w.path, "error", err)
	})
}

// Errno converts an error returned by SetLight into the negative errno
// convention of C HAL hosts: 0 for nil, -errno when the underlying OS error
// is recoverable from the chain, and -EIO for anything else.
func Errno(err error) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return -int(errno)
	}
	return -int(syscall.EIO)
}

//go:build windows

package rootlock

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

type overlapped struct {
	Internal     uintptr
	InternalHigh uintptr
	Offset       uint32
	OffsetHigh   uint32
	HEvent       syscall.Handle
}

var (
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = kernel32.NewProc("LockFileEx")
	procUnlockFileEx = kernel32.NewProc("UnlockFileEx")
)

const lockfileExclusiveLock = 0x00000002

func (l *Lock) lock() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	var ov overlapped
	r1, _, e1 := procLockFileEx.Call(uintptr(syscall.Handle(f.Fd())), lockfileExclusiveLock, 0, 1, 0, uintptr(unsafe.Pointer(&ov)))
	if r1 == 0 {
		_ = f.Close()
		return winError("LockFileEx", e1)
	}

	l.f = f
	return nil
}

func (l *Lock) unlock() error {
	if l.f == nil {
		return nil
	}

	var ov overlapped
	r1, _, e1 := procUnlockFileEx.Call(uintptr(syscall.Handle(l.f.Fd())), 0, 1, 0, uintptr(unsafe.Pointer(&ov)))

	errClose := l.f.Close()
	l.f = nil

	if r1 == 0 {
		return winError("UnlockFileEx", e1)
	}
	return errClose
}

func winError(op string, e error) error {
	if e != nil && e != syscall.Errno(0) {
		return fmt.Errorf("%s: %w", op, e)
	}
	return fmt.Errorf("%s: failed", op)
}

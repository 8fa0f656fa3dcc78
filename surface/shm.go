// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: surface/shm.go
// Summary: memfd-backed shared memory mapping for one buffer slot.

package surface

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// shmFile is an anonymous memory file mapped read-write into this process.
type shmFile struct {
	fd   int
	data []byte
}

func newShmFile(size int) (*shmFile, error) {
	fd, err := unix.MemfdCreate("texelayer-shm", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("surface: memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("surface: ftruncate %d: %w", size, err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("surface: mmap %d: %w", size, err)
	}
	// The pool size is fixed for the slot's lifetime.
	_, _ = unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, unix.F_SEAL_SHRINK)
	return &shmFile{fd: fd, data: data}, nil
}

// closeFD drops our descriptor once the compositor holds its own copy.
func (f *shmFile) closeFD() {
	if f.fd >= 0 {
		unix.Close(f.fd)
		f.fd = -1
	}
}

func (f *shmFile) unmap() error {
	f.closeFD()
	if f.data == nil {
		return nil
	}
	err := unix.Munmap(f.data)
	f.data = nil
	return err
}

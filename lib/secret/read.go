// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// maxFileSize bounds a secret file. Passwords and tokens are short; a
// large file is a misconfigured path.
const maxFileSize = 64 << 10

// ReadFile loads a secret from path. The file must not be readable or
// writable by group or others. Surrounding whitespace, such as the
// trailing newline an editor adds, is trimmed and an empty result is an
// error. The bytes read are zeroed once copied into the Buffer.
func ReadFile(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("secret file %s is not a regular file", path)
	}
	if mode := stat.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("secret file %s has mode %04o, want no group or other access", path, mode)
	}
	if stat.Size() > maxFileSize {
		return nil, fmt.Errorf("secret file %s is %d bytes, limit is %d", path, stat.Size(), maxFileSize)
	}

	data := make([]byte, 0, stat.Size())
	data, err = readAll(file, data)
	defer clear(data)
	if err != nil {
		return nil, fmt.Errorf("reading secret file %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret file %s is empty", path)
	}
	return NewFromBytes(trimmed)
}

// readAll reads r into data without letting the slice grow past its
// capacity plus one read, so no reallocated copy of the secret is left
// behind on the heap.
func readAll(r io.Reader, data []byte) ([]byte, error) {
	if cap(data) == 0 {
		data = make([]byte, 0, 512)
	}
	for {
		n, err := r.Read(data[len(data):cap(data)])
		data = data[:len(data)+n]
		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return data, err
		}
		if len(data) == cap(data) {
			if len(data) >= maxFileSize {
				return data, fmt.Errorf("exceeds %d bytes", maxFileSize)
			}
			grown := make([]byte, len(data), 2*cap(data))
			copy(grown, data)
			clear(data)
			data = grown
		}
	}
}

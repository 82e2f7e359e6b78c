package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	tailChunkSize    = 4096
	tailPollInterval = 200 * time.Millisecond
)

// TailLog writes the last n lines of the file at path to w. n <= 0 writes
// the whole file. With follow set it keeps copying appended data until ctx
// is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := seekLastLines(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if _, err := io.Copy(w, file); err != nil {
		return err
	}
	if !follow {
		return nil
	}

	ticker := time.NewTicker(tailPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, file); err != nil {
				return err
			}
		}
	}
}

// seekLastLines positions file at the start of its last n lines. A trailing
// newline does not count as an empty last line.
func seekLastLines(file *os.File, n int) error {
	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	offset := size
	newlines := 0
	buf := make([]byte, tailChunkSize)
	for offset > 0 {
		readSize := int64(len(buf))
		if offset < readSize {
			readSize = offset
		}
		offset -= readSize
		chunk := buf[:readSize]
		if _, err := file.ReadAt(chunk, offset); err != nil && err != io.EOF {
			return err
		}
		for i := len(chunk) - 1; i >= 0; i-- {
			if chunk[i] != '\n' || offset+int64(i) == size-1 {
				continue
			}
			newlines++
			if newlines == n {
				_, err := file.Seek(offset+int64(i)+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// Package storage provides the append-only log that backs every persisted
// record: one JSON object per line, addressed by the byte offset at which
// the line starts.
//
// This package was designed to solve the fundamental challenge of storing
// a continuously growing stream of documents while keeping random access
// to any previously written one cheap: an offset is a complete address,
// requiring no index to resolve on its own. The secondary indexes built on
// top (see internal/index) exist purely to avoid scanning the whole log on
// every query; the log itself never needs them to answer "what's at offset
// N."
//
// Unlike a segmented write-ahead log, there is exactly one log file here.
// The record volumes this store targets don't call for segment rotation,
// and a single file keeps the vacuum/compaction story (internal/engine)
// simple: rewrite the one file into a sibling, then swap.
package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"os"

	json "github.com/goccy/go-json"

	"github.com/thestics/pynosql/pkg/errors"
)

const charNoField = "_char_no"

// New creates and initializes a new Storage instance, opening the log file
// at config.Path, creating it if it doesn't already exist.
func New(ctx context.Context, config *Config) (*Storage, error) {
	if config == nil || config.Path == "" || config.Logger == nil {
		return nil, fmt.Errorf("invalid configuration")
	}

	_, statErr := os.Stat(config.Path)
	isNew := os.IsNotExist(statErr)

	config.Logger.Infow("Opening data log", "path", config.Path, "isNew", isNew)

	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, config.Path, "pynosql.data")
	}

	if isNew {
		config.Logger.Infow("Data log did not exist, created empty file", "path", config.Path)
	}

	return &Storage{path: config.Path, file: file, log: config.Logger}, nil
}

// Append encodes record as JSON and writes it as a new line at the end of
// the log, returning the byte offset the line starts at. Single-writer
// discipline is the caller's responsibility (internal/engine holds the
// writer mutex spanning this call and the matching index update), so
// reading the file's current size immediately before the write is race-free.
func (s *Storage) Append(record Record) (int64, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return 0, errors.NewValidationError(err, errors.ErrorCodeInvalidInput, "record contains a value that cannot be JSON-encoded").
			WithRule("json_serializable")
	}

	info, err := s.file.Stat()
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat data log").
			WithPath(s.path).WithFileName("pynosql.data")
	}
	offset := info.Size()

	encoded = append(encoded, '\n')
	if _, err := s.file.Write(encoded); err != nil {
		return 0, errors.ClassifySyncError(err, "pynosql.data", s.path, int(offset))
	}

	return offset, nil
}

// ScanAll walks every line of the log from the beginning, in order,
// yielding one ScannedRecord per non-blank line. A blank line is skipped
// silently; a line that fails to decode yields a ScannedRecord carrying
// Err instead of panicking, so a range-over caller can choose to stop.
func (s *Storage) ScanAll(includeOffset bool) iter.Seq[*ScannedRecord] {
	return func(yield func(*ScannedRecord) bool) {
		f, err := os.Open(s.path)
		if err != nil {
			yield(&ScannedRecord{Err: errors.ClassifyFileOpenError(err, s.path, "pynosql.data")})
			return
		}
		defer f.Close()

		reader := bufio.NewReaderSize(f, 64*1024)
		var offset int64

		for {
			line, readErr := reader.ReadString('\n')
			lineLen := int64(len(line))
			trimmed := trimNewline(line)

			if len(trimmed) == 0 {
				offset += lineLen
				if readErr != nil {
					return
				}
				continue
			}

			rec, decodeErr := decodeLine(trimmed)
			if decodeErr != nil {
				if !yield(&ScannedRecord{
					Offset: offset,
					Err: errors.NewCorruptionError(decodeErr, errors.ErrorCodeLogCorrupted, "log line is not valid JSON").
						WithPath(s.path).WithComponent("storage").WithDetail("offset", offset),
				}) {
					return
				}
				offset += lineLen
				if readErr != nil {
					return
				}
				continue
			}

			if includeOffset {
				rec[charNoField] = offset
			}

			if !yield(&ScannedRecord{Record: rec, Offset: offset}) {
				return
			}

			offset += lineLen
			if readErr != nil {
				return
			}
		}
	}
}

// ByOffsets reads exactly the lines starting at each given offset, in the
// order the offsets are given, yielding one ScannedRecord per offset.
func (s *Storage) ByOffsets(offsets []int64, includeOffset bool) iter.Seq[*ScannedRecord] {
	return func(yield func(*ScannedRecord) bool) {
		if len(offsets) == 0 {
			return
		}

		f, err := os.Open(s.path)
		if err != nil {
			yield(&ScannedRecord{Err: errors.ClassifyFileOpenError(err, s.path, "pynosql.data")})
			return
		}
		defer f.Close()

		for _, offset := range offsets {
			if _, err := f.Seek(offset, io.SeekStart); err != nil {
				if !yield(&ScannedRecord{Offset: offset, Err: errors.NewStorageError(
					err, errors.ErrorCodeIO, "failed to seek to record offset",
				).WithPath(s.path).WithOffset(int(offset))}) {
					return
				}
				continue
			}

			reader := bufio.NewReader(f)
			line, readErr := reader.ReadString('\n')
			if readErr != nil && readErr != io.EOF {
				if !yield(&ScannedRecord{Offset: offset, Err: errors.NewStorageError(
					readErr, errors.ErrorCodeIO, "failed to read record at offset",
				).WithPath(s.path).WithOffset(int(offset))}) {
					return
				}
				continue
			}

			trimmed := trimNewline(line)
			rec, decodeErr := decodeLine(trimmed)
			if decodeErr != nil {
				if !yield(&ScannedRecord{
					Offset: offset,
					Err: errors.NewCorruptionError(decodeErr, errors.ErrorCodeLogCorrupted, "log line is not valid JSON").
						WithPath(s.path).WithComponent("storage").WithDetail("offset", offset),
				}) {
					return
				}
				continue
			}

			if includeOffset {
				rec[charNoField] = offset
			}

			if !yield(&ScannedRecord{Record: rec, Offset: offset}) {
				return
			}
		}
	}
}

// Size reports the current size of the log file in bytes.
func (s *Storage) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat data log").WithPath(s.path)
	}
	return info.Size(), nil
}

// Path returns the log file's path.
func (s *Storage) Path() string { return s.path }

// Reopen closes the current file handle and opens a fresh one at the same
// path. Used after a vacuum renames a freshly rewritten file over the log:
// the handle Storage opened at New time still refers to whatever inode was
// at s.path back then, which on most filesystems is the pre-vacuum
// contents even after the rename, so appends must be redirected to the new
// file before any further write.
func (s *Storage) Reopen() error {
	if err := s.file.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close data log before reopening").WithPath(s.path)
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return errors.ClassifyFileOpenError(err, s.path, "pynosql.data")
	}

	s.file = file
	return nil
}

// Close flushes and closes the underlying log file handle.
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.log.Infow("Closing data log", "path", s.path)
	return s.file.Close()
}

func trimNewline(line string) string {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	return line[:n]
}

func decodeLine(line string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

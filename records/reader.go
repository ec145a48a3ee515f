package records

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/graphload/core"
)

// Delimiter separates the columns of a data row.
const Delimiter = "\t"

// MaxLineSize is the longest data line, in bytes, that is read as a record.
const MaxLineSize = 16 * 1024 * 1024

// ErrLineTooLong is yielded for a line longer than MaxLineSize.
// It does not end the iteration: reading resumes at the next line.
var ErrLineTooLong = errors.New("line too long")

// Split splits a line into positional values.
func Split(line string) []string {
	return strings.Split(line, Delimiter)
}

// Files lists the regular files of an entity's data directory.
// Sub-directories are skipped. The order is not meaningful.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// ReadFile returns an iterator over the records of one data file.
// Blank lines are skipped and a trailing carriage return is dropped.
// A line longer than MaxLineSize is yielded as an ErrLineTooLong error with no
// values; any other non-nil error ends the iteration.
func ReadFile(entity, path string) iter.Seq2[core.Record, error] {
	return readFile(entity, path, MaxLineSize)
}

func readFile(entity, path string, limit int) iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(core.Record{Entity: entity, File: path}, fmt.Errorf("failed to open data file: %w", err))
			return
		}
		defer f.Close()

		r := bufio.NewReaderSize(f, 64*1024)
		lineNo := 0
		for {
			raw, tooLong, err := readLine(r, limit)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(core.Record{Entity: entity, File: path, Line: lineNo + 1}, fmt.Errorf("failed to read data file: %w", err))
				return
			}
			lineNo++

			if tooLong {
				record := core.Record{Entity: entity, File: path, Line: lineNo}
				if !yield(record, fmt.Errorf("%w: exceeds %d bytes", ErrLineTooLong, limit)) {
					return
				}
				continue
			}
			if len(raw) == 0 {
				continue
			}

			record := core.Record{
				Entity: entity,
				File:   path,
				Line:   lineNo,
				Values: Split(string(raw)),
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed up to its terminator and reported as tooLong with no content.
// io.EOF is returned only when no line remains.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	read := 0
	for {
		frag, err := r.ReadSlice('\n')
		read += len(frag)
		if !tooLong {
			if len(line)+len(frag) > limit+2 {
				tooLong = true
				line = nil
			} else {
				line = append(line, frag...)
			}
		}

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if read == 0 {
				return nil, false, io.EOF
			}
		case err != nil:
			return nil, false, err
		}

		if tooLong {
			return nil, true, nil
		}
		line = bytes.TrimSuffix(line, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(line) > limit {
			return nil, true, nil
		}
		return line, false, nil
	}
}

// Read returns an iterator over every record of an entity type, file by file.
// ErrLineTooLong is yielded without ending the iteration; any other non-nil
// error ends it.
func Read(entity *core.EntityDefinition) iter.Seq2[core.Record, error] {
	return func(yield func(core.Record, error) bool) {
		files, err := Files(entity.PathToData)
		if err != nil {
			yield(core.Record{Entity: entity.Name}, err)
			return
		}

		for _, path := range files {
			for record, err := range ReadFile(entity.Name, path) {
				if !yield(record, err) {
					return
				}
				if err != nil && !errors.Is(err, ErrLineTooLong) {
					return
				}
			}
		}
	}
}

package core

// streaming.go reads uploaded sheets into memory with a hard size cap and
// cleans up text encodings before CSV parsing.
//
// xlsx files are zip archives and must be fully buffered before excelize can
// open them, so both formats are read the same way:
//
//   - countingReader: tracks bytes read and fails past the size limit
//   - cleanTextPayload: drops a UTF-8 BOM and replaces invalid UTF-8
//     sequences with '?' (Windows-1252 exports are common)

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrFileTooLarge is returned when an uploaded sheet exceeds the size limit.
var ErrFileTooLarge = errors.New("file too large")

// countingReader wraps an io.Reader to track bytes read and enforce a limit.
type countingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64 // 0 means unlimited
}

func newCountingReader(r io.Reader, limit int64) *countingReader {
	return &countingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.Limit)
	}
	return n, err
}

// readPayload reads all of r, failing once more than maxSize bytes arrive.
func readPayload(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return nil, errors.New("no file provided")
	}
	payload, err := io.ReadAll(newCountingReader(r, maxSize))
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// cleanTextPayload strips a leading UTF-8 BOM and replaces each invalid
// UTF-8 byte with '?'.
func cleanTextPayload(payload []byte) []byte {
	payload = bytes.TrimPrefix(payload, utf8BOM)
	if utf8.Valid(payload) {
		return payload
	}

	out := make([]byte, 0, len(payload))
	for read := 0; read < len(payload); {
		r, size := utf8.DecodeRune(payload[read:])
		if r == utf8.RuneError && size == 1 {
			out = append(out, '?')
			read++
			continue
		}
		out = append(out, payload[read:read+size]...)
		read += size
	}
	return out
}

// sniffDelimiter picks ';' or ',' by counting both in the first non-blank line.
// Spreadsheet software in pt-BR locales exports CSV with semicolons.
func sniffDelimiter(payload []byte) rune {
	for _, line := range bytes.Split(payload, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
			return ';'
		}
		return ','
	}
	return ','
}

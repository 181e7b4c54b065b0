// Package transfer moves candidates and jobs in and out of the system as CSV.
package transfer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// csvStreamer writes RFC 4180 rows with CRLF line endings, flushing to the
// underlying writer every few hundred rows.
type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// column pairs a header with the accessor that renders it.
type column[T any] struct {
	header string
	value  func(T) string
}

func writeTable[T any](w io.Writer, cols []column[T], rows []T) error {
	s := newCSVStreamer(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := s.writeRow(header); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			record[i] = c.value(row)
		}
		if err := s.writeRow(record); err != nil {
			return err
		}
	}
	return s.Flush()
}

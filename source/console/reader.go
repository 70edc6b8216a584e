// Package console reads user input one line at a time. A terminal gets
// line editing and history; anything else is scanned plainly.
package console

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

// ErrInterrupted is returned when the user aborts a prompt with Ctrl-C.
var ErrInterrupted = errors.New("console: interrupted")

// LineReader prints prompt and returns the next line without its newline.
// io.EOF marks end of input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// New picks a liner-backed reader when in and out are both terminals.
func New(in *os.File, out *os.File) LineReader {
	if isatty.IsTerminal(in.Fd()) && isatty.IsTerminal(out.Fd()) {
		return NewTerminal()
	}
	return NewScanner(in, out)
}

/* ────────── terminal ────────── */

type Terminal struct {
	st *liner.State
}

func NewTerminal() *Terminal {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	return &Terminal{st: st}
}

func (t *Terminal) ReadLine(prompt string) (string, error) {
	line, err := t.st.Prompt(prompt)
	switch {
	case errors.Is(err, liner.ErrPromptAborted):
		return "", ErrInterrupted
	case err != nil:
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		t.st.AppendHistory(line)
	}
	return line, nil
}

func (t *Terminal) Close() error { return t.st.Close() }

/* ────────── scanner ────────── */

// MaxLine bounds a single piped input line. Longer lines are consumed
// up to their newline and reported as ErrLineTooLong.
const MaxLine = 64 * 1024

// ErrLineTooLong is returned for a line over MaxLine bytes; the next
// ReadLine continues with the following line.
var ErrLineTooLong = errors.New("console: input line too long")

type Scanner struct {
	r   *bufio.Reader
	out io.Writer
}

func NewScanner(in io.Reader, out io.Writer) *Scanner {
	return &Scanner{r: bufio.NewReader(in), out: out}
}

func (s *Scanner) ReadLine(prompt string) (string, error) {
	if s.out != nil && prompt != "" {
		if _, err := io.WriteString(s.out, prompt); err != nil {
			return "", err
		}
	}

	var (
		line    []byte
		tooLong bool
		started bool
	)
	for {
		chunk, more, err := s.r.ReadLine()
		if err != nil {
			switch {
			case tooLong:
				return "", ErrLineTooLong
			case started:
				return strings.TrimRight(string(line), "\r"), nil
			}
			return "", err
		}
		started = true
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > MaxLine {
				tooLong, line = true, nil
			}
		}
		if !more {
			break
		}
	}
	if tooLong {
		return "", ErrLineTooLong
	}
	return strings.TrimRight(string(line), "\r"), nil
}

func (s *Scanner) Close() error { return nil }

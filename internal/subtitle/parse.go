package subtitle

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zantac/OSN/internal/logging"
)

const timeSeparator = "-->"

// Parser turns raw subtitle bytes into a Track.
type Parser struct {
	// encoding retried on the same bytes when UTF-8 fails in auto mode
	Fallback Encoding

	logger *logging.Logger
}

func NewParser(fallback Encoding, logger *logging.Logger) *Parser {
	if strings.TrimSpace(string(fallback)) == "" {
		fallback = DefaultFallback
	}
	return &Parser{
		Fallback: fallback,
		logger:   logging.OrNop(logger),
	}
}

// Parse uses the default windows-1256 fallback and no logging.
func Parse(data []byte, enc Encoding) (*Track, error) {
	return NewParser(DefaultFallback, nil).Parse(data, enc)
}

// Parse decodes data with enc and extracts the cues. In auto mode UTF-8 is
// tried first and the fallback encoding second; the error then names both.
func (p *Parser) Parse(data []byte, enc Encoding) (*Track, error) {
	if !enc.IsAuto() {
		return p.parseWith(data, enc)
	}

	track, err := p.parseWith(data, EncodingUTF8)
	if err == nil {
		return track, nil
	}
	p.logger.Warnw("UTF-8 parsing failed, trying fallback encoding",
		"fallback", p.Fallback,
		"error", err,
	)

	track, fallbackErr := p.parseWith(data, p.Fallback)
	if fallbackErr == nil {
		p.logger.Debugw("Parsed subtitle with fallback encoding",
			"encoding", p.Fallback,
			"cues", track.Len(),
		)
		return track, nil
	}

	return nil, &DecodeError{Attempts: []Attempt{
		{Encoding: string(EncodingUTF8), Err: err},
		{Encoding: string(p.Fallback), Err: fallbackErr},
	}}
}

func (p *Parser) parseWith(data []byte, enc Encoding) (*Track, error) {
	text, err := decode(data, enc)
	if err != nil {
		return nil, err
	}

	cues := parseLines(splitLines(text))
	if len(cues) == 0 {
		return nil, fmt.Errorf("%w (encoding %s)", ErrNoEntries, enc)
	}

	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})
	return &Track{cues: cues}, nil
}

// splitLines accepts \n, \r\n and lone \r terminators and drops a leading BOM.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// cueBuilder accumulates the body of the cue opened by the last time line.
type cueBuilder struct {
	cues       []Cue
	start, end time.Duration
	textLines  []string
	inBody     bool
}

func parseLines(lines []string) []Cue {
	b := &cueBuilder{}
	for _, line := range lines {
		b.feed(line)
	}
	b.flush()
	return b.cues
}

func (b *cueBuilder) feed(line string) {
	if strings.Contains(line, timeSeparator) {
		start, end, err := parseTimeLine(line)
		if err == nil {
			b.flush()
			b.start, b.end = start, end
			b.inBody = true
			return
		}
		// a malformed time line falls through and is handled as text
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		b.flush()
		b.inBody = false
	case !b.inBody:
		// index counters and stray text outside a body are dropped
	case isDigits(trimmed):
		// index counter inside a body
	default:
		b.textLines = append(b.textLines, line)
	}
}

// flush emits the pending body with the times of the last time line.
func (b *cueBuilder) flush() {
	if len(b.textLines) == 0 {
		return
	}
	b.cues = append(b.cues, Cue{
		Start: b.start,
		End:   b.end,
		Text:  strings.TrimSpace(strings.Join(b.textLines, "\n")),
	})
	b.textLines = nil
}

func parseTimeLine(line string) (time.Duration, time.Duration, error) {
	left, right, ok := strings.Cut(line, timeSeparator)
	if !ok {
		return 0, 0, errors.New("missing time separator")
	}
	start, err := ParseTimestamp(left)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp: %w", err)
	}
	end, err := ParseTimestamp(right)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp: %w", err)
	}
	return start, end, nil
}

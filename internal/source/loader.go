package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/zantac/OSN/internal/logging"
	"github.com/zantac/OSN/internal/subtitle"
	"github.com/zantac/OSN/internal/video"
)

// Stdin names standard input as a source.
const Stdin = "-"

// maximum subtitle size accepted from any source
const maxSourceBytes = 32 << 20

// ErrSourceUnreadable wraps every failure to obtain the raw bytes.
var ErrSourceUnreadable = errors.New("subtitle source unreadable")

// Kind is the transport a source identifier resolves to.
type Kind int

const (
	KindFile Kind = iota
	KindURL
	KindStdin
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindStdin:
		return "stdin"
	case KindVideo:
		return "video"
	default:
		return "file"
	}
}

// Classify decides how id is read.
func Classify(id string) Kind {
	lower := strings.ToLower(id)
	switch {
	case id == Stdin:
		return KindStdin
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return KindURL
	case video.IsVideoFile(id):
		return KindVideo
	default:
		return KindFile
	}
}

// Result is the single value a Load delivers.
type Result struct {
	Source string
	Track  *subtitle.Track
	Err    error
}

// Extractor pulls an embedded subtitle stream out of a video container.
type Extractor interface {
	ExtractSubtitles(
		ctx context.Context,
		videoPath string,
		opts video.ExtractSubtitleOptions,
	) ([]byte, error)
}

type Options struct {
	Parser    *subtitle.Parser
	Client    *http.Client
	Extractor Extractor
	Stdin     io.Reader

	// subtitle stream used for video sources
	Stream int

	Logger *logging.Logger
}

// Loader reads a subtitle source and parses it. No timeout is applied;
// callers bound a load with the context.
type Loader struct {
	parser    *subtitle.Parser
	client    *http.Client
	extractor Extractor
	stdin     io.Reader
	stream    int
	logger    *logging.Logger
}

func NewLoader(opts Options) *Loader {
	logger := logging.OrNop(opts.Logger).Named("source")
	if opts.Parser == nil {
		opts.Parser = subtitle.NewParser(subtitle.DefaultFallback, logger)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Extractor == nil {
		opts.Extractor = video.NewProcessor()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	return &Loader{
		parser:    opts.Parser,
		client:    opts.Client,
		extractor: opts.Extractor,
		stdin:     opts.Stdin,
		stream:    opts.Stream,
		logger:    logger,
	}
}

// Load runs LoadSync on its own goroutine. The channel delivers exactly one
// Result and is then closed.
func (l *Loader) Load(ctx context.Context, id string, enc subtitle.Encoding) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		track, err := l.LoadSync(ctx, id, enc)
		out <- Result{Source: id, Track: track, Err: err}
	}()
	return out
}

// LoadSync reads id and parses it with enc.
func (l *Loader) LoadSync(ctx context.Context, id string, enc subtitle.Encoding) (*subtitle.Track, error) {
	data, err := l.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	track, err := l.parser.Parse(data, enc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", id, err)
	}
	return track, nil
}

// Read returns the raw bytes behind id.
func (l *Loader) Read(ctx context.Context, id string) ([]byte, error) {
	kind := Classify(id)
	l.logger.Debugw("Reading subtitle source", "source", id, "kind", kind)

	var (
		data []byte
		err  error
	)
	switch kind {
	case KindStdin:
		data, err = readLimited(l.stdin)
	case KindURL:
		data, err = l.fetch(ctx, id)
	case KindVideo:
		opts := video.DefaultExtractSubtitleOptions()
		opts.Stream = l.stream
		data, err = l.extractor.ExtractSubtitles(ctx, id, opts)
	default:
		data, err = readFile(id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, id, err)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "osn")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return readLimited(resp.Body)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSourceBytes {
		return nil, fmt.Errorf("source exceeds %d bytes", maxSourceBytes)
	}
	return data, nil
}

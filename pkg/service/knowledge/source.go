package knowledge

import (
	"context"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"github.com/unihelpdesk/helpdesk/pkg/utils/safe"
)

// Format is the encoding of a knowledge file
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

const gcsScheme = "gs://"

// Opener returns a reader over the raw knowledge file
type Opener func(ctx context.Context) (io.ReadCloser, error)

// Source reads question/answer pairs from a spreadsheet. Each Load reads the
// file afresh, so edits show up on the next reload.
type Source struct {
	location string
	format   Format
	open     Opener
}

var _ interfaces.KnowledgeSource = &Source{}

type Option func(*Source)

// WithFormat overrides the format detected from the file extension
func WithFormat(f Format) Option {
	return func(s *Source) {
		s.format = f
	}
}

// WithStorageClient reads gs:// locations through client
func WithStorageClient(client *storage.Client) Option {
	return func(s *Source) {
		if bucket, object, ok := splitGCS(s.location); ok {
			s.open = gcsOpener(client, bucket, object)
		}
	}
}

// WithOpener replaces how the file is read
func WithOpener(open Opener) Option {
	return func(s *Source) {
		s.open = open
	}
}

// New creates a source for location, a local path or gs://bucket/object
func New(location string, opts ...Option) (*Source, error) {
	if location == "" {
		return nil, goerr.New("knowledge source location is required")
	}

	s := &Source{
		location: location,
		format:   detectFormat(location),
	}
	if _, _, ok := splitGCS(location); ok {
		s.open = lazyGCSOpener(location)
	} else {
		s.open = fileOpener(location)
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.format != FormatXLSX && s.format != FormatCSV {
		return nil, goerr.New("unsupported knowledge file format", goerr.V(model.SourceKey, location))
	}
	return s, nil
}

func (s *Source) Name() string {
	return s.location
}

// Load reads every row, keeping only rows where both question and answer are
// non-empty after trimming.
func (s *Source) Load(ctx context.Context) ([]model.KnowledgePair, error) {
	r, err := s.open(ctx)
	if err != nil {
		return nil, goerr.Wrap(model.ErrDataSource, "failed to open knowledge source",
			goerr.V(model.SourceKey, s.location), goerr.V("cause", err.Error()))
	}
	defer safe.Close(ctx, r)

	var rows [][]string
	switch s.format {
	case FormatXLSX:
		rows, err = readXLSX(r)
	case FormatCSV:
		rows, err = readCSV(r)
	}
	if err != nil {
		return nil, goerr.Wrap(model.ErrDataSource, "failed to parse knowledge source",
			goerr.V(model.SourceKey, s.location), goerr.V("cause", err.Error()))
	}

	pairs, dropped := toPairs(rows)
	logging.From(ctx).Info("knowledge source loaded",
		"source", s.location,
		"entries", len(pairs),
		"dropped", dropped)

	return pairs, nil
}

func detectFormat(location string) Format {
	switch strings.ToLower(path.Ext(location)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return ""
	}
}

func splitGCS(location string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(location, gcsScheme)
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}

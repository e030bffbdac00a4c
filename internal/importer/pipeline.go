// Package importer turns an uploaded file into the session's working set.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/normalize"
	"github.com/Veraticus/vatflow/internal/sheet"
	"github.com/Veraticus/vatflow/internal/workset"
)

const (
	// progressEvery is the row interval between progress reports.
	progressEvery = 100
	// yieldEvery is the row interval between cooperative yields.
	yieldEvery = 1000
)

// ProgressFunc receives an integer percentage in [0, 100].
type ProgressFunc func(percent int)

// Result summarises a completed import.
type Result struct {
	Filename string
	Records  []model.Record
	Duration time.Duration
}

// Pipeline decodes files and normalizes their rows in order.
type Pipeline struct {
	holder   workset.Holder
	decoders *sheet.Registry
	newID    normalize.IDFunc
	progress ProgressFunc
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithIDFunc overrides record id generation.
func WithIDFunc(fn normalize.IDFunc) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// WithRegistry overrides the decoder registry.
func WithRegistry(r *sheet.Registry) Option {
	return func(p *Pipeline) { p.decoders = r }
}

// New creates a pipeline that installs its results into holder.
func New(holder workset.Holder, opts ...Option) *Pipeline {
	p := &Pipeline{
		holder:   holder,
		decoders: sheet.DefaultRegistry(),
		newID:    normalize.NewID,
		progress: func(int) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run decodes the named file and replaces the working set with its
// records. On failure the working set is left as it was.
func (p *Pipeline) Run(ctx context.Context, name string, r io.Reader) (*Result, error) {
	start := p.now()

	rows, err := p.decoders.Read(name, r)
	if err != nil {
		return nil, &common.ParseError{File: name, Err: err}
	}

	records, err := p.Normalize(ctx, rows)
	if err != nil {
		return nil, err
	}

	p.holder.Set(records, name)

	res := &Result{
		Filename: name,
		Records:  records,
		Duration: p.now().Sub(start),
	}
	slog.Info("Imported file",
		"file", name,
		"records", len(records),
		"duration", res.Duration)
	return res, nil
}

// Normalize converts rows in order, reporting progress and yielding
// between chunks. The context is checked at each yield.
func (p *Pipeline) Normalize(ctx context.Context, rows []model.RawRow) ([]model.Record, error) {
	total := len(rows)
	if total == 0 {
		p.progress(100)
		return []model.Record{}, nil
	}

	records := make([]model.Record, 0, total)
	for i, row := range rows {
		records = append(records, normalize.Normalize(row, p.newID))

		if i%progressEvery == 0 || i == total-1 {
			p.progress(Percent(i, total))
		}
		if (i+1)%yieldEvery == 0 {
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("import interrupted after %d rows: %w", i+1, err)
			}
		}
	}
	return records, nil
}

// Percent is the progress reported after row i of total.
func Percent(i, total int) int {
	return int(math.Round(float64(i+1) / float64(total) * 100))
}

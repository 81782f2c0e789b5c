package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"olexparser/internal/discovery"
	"olexparser/internal/protocol/diag"
	"olexparser/internal/protocol/ruter"
	"olexparser/internal/protocol/segment"
	"olexparser/internal/protocol/turdata"
)

// Options tune how a case folder is parsed. The zero value decodes with
// segment.DefaultLayout, compares coordinates exactly and uses one worker.
type Options struct {
	Location  *time.Location
	Layout    segment.Layout
	Tolerance float64
	Workers   int
}

// DefaultOptions uses UTC, the default record layout and Turdata tolerance
func DefaultOptions() Options {
	return Options{
		Location:  time.UTC,
		Layout:    segment.DefaultLayout,
		Tolerance: turdata.DefaultTolerance,
		Workers:   4,
	}
}

// Case is the cross-validated model of one Olex folder
type Case struct {
	root         string
	location     *time.Location
	tripFiles    []*turdata.File
	routeFiles   []*ruter.File
	unassociated []*segment.File
	other        []string

	diagnostics diag.Log
}

func (c *Case) Root() string                          { return c.root }
func (c *Case) Location() *time.Location              { return c.location }
func (c *Case) TripFiles() []*turdata.File            { return c.tripFiles }
func (c *Case) RouteFiles() []*ruter.File             { return c.routeFiles }
func (c *Case) UnassociatedSegments() []*segment.File { return c.unassociated }
func (c *Case) OtherFiles() []string                  { return c.other }

// Diagnostics flattens every anomaly: case level first, then each Turdata
// file (with its trips and their attached segments), each Ruter file (with
// its routes) and finally the segments no trip claimed.
func (c *Case) Diagnostics() []diag.Diagnostic {
	out := c.diagnostics.Items()
	for _, f := range c.tripFiles {
		out = append(out, f.Diagnostics()...)
	}
	for _, f := range c.routeFiles {
		out = append(out, f.Diagnostics()...)
	}
	for _, f := range c.unassociated {
		out = append(out, f.Diagnostics()...)
	}
	return out
}

// Assemble parses every file in res, attaches segment files to the trips
// that summarize them and validates each trip. Files are parsed in parallel;
// attachment is sequential so the first claiming trip keeps a segment.
// The only error is an invalid layout or a cancelled ctx.
func Assemble(ctx context.Context, res *discovery.Result, opts Options) (*Case, error) {
	if opts.Layout == (segment.Layout{}) {
		opts.Layout = segment.DefaultLayout
	}
	decoder, err := segment.NewDecoderWithLayout(opts.Layout)
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	c := &Case{
		root:     res.Root,
		location: opts.Location,
		other:    res.Other,
	}
	for _, d := range res.Diagnostics() {
		c.diagnostics.Add(d)
	}
	if n := len(res.TripFiles); n != 1 {
		c.diagnostics.Addf(diag.FileCount, res.Root, "expected exactly 1 %s file, found %d", discovery.TripFileName, n)
	}
	if n := len(res.RouteFiles); n != 1 {
		c.diagnostics.Addf(diag.FileCount, res.Root, "expected exactly 1 %s file, found %d", discovery.RouteFileName, n)
	}

	numbers := res.SegmentNumbers()
	segments := make([]*segment.File, len(numbers))
	c.tripFiles = make([]*turdata.File, len(res.TripFiles))
	c.routeFiles = make([]*ruter.File, len(res.RouteFiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, path := range res.TripFiles {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.tripFiles[i] = turdata.ParseFile(path)
			return nil
		})
	}
	for i, path := range res.RouteFiles {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.routeFiles[i] = ruter.ParseFile(path)
			return nil
		})
	}
	for i, n := range numbers {
		i := i
		path := res.Segments[n]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			segments[i] = segment.Parse(path, decoder)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byNumber := make(map[int]*segment.File, len(numbers))
	for i, n := range numbers {
		byNumber[n] = segments[i]
	}
	for _, tf := range c.tripFiles {
		tf.SetTolerance(opts.Tolerance)
		for _, trip := range tf.Trips() {
			for _, n := range trip.SegmentNumbers() {
				f, ok := byNumber[n]
				if !ok {
					continue
				}
				trip.AddSegment(n, f)
				delete(byNumber, n)
			}
			trip.Validate()
		}
	}

	for i, n := range numbers {
		if _, left := byNumber[n]; !left {
			continue
		}
		f := segments[i]
		c.diagnostics.Addf(diag.UnassociatedSegment, f.Path, "segment %d is not associated with any Tur Tur", n)
		c.unassociated = append(c.unassociated, f)
	}
	return c, nil
}

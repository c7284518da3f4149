package render

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"fairdash/internal/outcome"

	"golang.org/x/sync/errgroup"
)

// Report renders several panels into one page. Panels are rendered
// concurrently and keep their input order on the page.
func (r *Renderer) Report(ctx context.Context, w io.Writer, title, lang string, panels []outcome.Panel) error {
	sections := make([]sectionView, len(panels))
	assets := make([][]string, len(panels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range panels {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sec, js, err := r.section(panels[i])
			if err != nil {
				return fmt.Errorf("render panel #%d: %w", i+1, err)
			}
			sections[i] = sec
			assets[i] = js
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	scripts := newAssetSet()
	for _, js := range assets {
		scripts.add(js...)
	}
	return r.executePage(w, title, lang, sections, scripts.values)
}

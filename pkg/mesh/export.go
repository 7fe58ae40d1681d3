package mesh

import (
	"context"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Target names a mesh to export. Files are written as <Name><ext>.
type Target struct {
	Name string
	Data *Data
}

// Export writes every target once per codec into dir, running at most limit
// writes at a time (no limit when limit <= 0). Targets sharing a name are
// written once, from the last of them. It returns the written paths sorted.
//
// Export stops scheduling new writes when ctx is cancelled or a write
// fails. Files already written are left in place.
func Export(ctx context.Context, codecs []Codec, dir string, targets []Target, limit int) ([]string, error) {
	byName := make(map[string]*Data, len(targets))
	var names []string
	for _, t := range targets {
		if _, ok := byName[t.Name]; !ok {
			names = append(names, t.Name)
		}
		byName[t.Name] = t.Data
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var paths []string
	for _, name := range names {
		for _, c := range codecs {
			path := filepath.Join(dir, name+c.Ext())
			paths = append(paths, path)
			if gctx.Err() != nil {
				break
			}
			d := byName[name]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return c.Write(d, path)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

package patterns

import (
	"context"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// DefaultAssetPaths lists the bundled default patterns relative to the
// patterns directory.
var DefaultAssetPaths = []string{
	"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg",
	"6.jpg", "7.jpg", "8.jpg", "9.jpg", "10.jpg",
}

// decodeConcurrency bounds parallel default decodes.
const decodeConcurrency = 4

// LoadDefaults loads the bundled patterns when the library is empty.
//
// Assets are read and decoded concurrently, then registered one by one in
// path order as "Pattern N". A missing or undecodable asset is logged and
// skipped; its error is returned alongside the count of loaded patterns.
// Only context cancellation aborts the load.
func (l *Library) LoadDefaults(ctx context.Context, fsys fs.FS, paths []string) (int, []error) {
	if l.Len() > 0 {
		return 0, nil
	}

	assets := make([]Asset, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decodeConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			asset, err := readAsset(fsys, p, fmt.Sprintf("Pattern %d", i+1))
			if err != nil {
				failures[i] = err
				return nil
			}
			assets[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, []error{err}
	}

	var (
		loaded int
		errs   []error
	)
	for i, p := range paths {
		if failures[i] != nil {
			l.logger.Warn("failed to load default pattern", "path", p, "err", failures[i])
			errs = append(errs, failures[i])
			continue
		}
		if _, err := l.Register(assets[i], true); err != nil {
			l.logger.Warn("failed to register default pattern", "path", p, "err", err)
			errs = append(errs, err)
			continue
		}
		loaded++
	}
	l.logger.Info("default patterns loaded", "loaded", loaded, "skipped", len(errs))
	return loaded, errs
}

func readAsset(fsys fs.FS, path, name string) (Asset, error) {
	if err := errors.ValidatePath(path); err != nil {
		return Asset{}, err
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Asset{}, errors.Wrap(errors.ErrCodeAssetDecode, err, "cannot read %s", path)
	}
	return Decode(name, data)
}

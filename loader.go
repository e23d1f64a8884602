package areacodes

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

//go:embed data/*.json
var bundledData embed.FS

// bundledDir is the directory inside bundledData holding the sources.
const bundledDir = "data"

// sourceSuffix is the naming convention for per-country sources: "<ID>-codes.json".
const sourceSuffix = "-codes.json"

// Loader produces area code records from a backing dataset.
type Loader interface {
	// LoadAll returns every record from every source.
	LoadAll(ctx context.Context) ([]AreaCode, error)
	// LoadCountry returns the records of the per-country source for id.
	// It fails with ErrSourceNotFound when no such source exists.
	LoadCountry(ctx context.Context, id string) ([]AreaCode, error)
}

// FileLoader loads JSON sources from a directory of an afero filesystem.
// Each source is a JSON array of AreaCode objects. Safe for concurrent use.
type FileLoader struct {
	fs          afero.Fs
	dir         string
	parallelism int
	log         logrus.FieldLogger
}

// NewFileLoader creates a loader reading the sources in dir on fsys.
func NewFileLoader(fsys afero.Fs, dir string) *FileLoader {
	return &FileLoader{
		fs:          fsys,
		dir:         dir,
		parallelism: runtime.GOMAXPROCS(0),
		log:         discardLogger(),
	}
}

// BundledLoader returns a loader over the dataset embedded in the package.
func BundledLoader() *FileLoader {
	return NewFileLoader(afero.FromIOFS{FS: bundledData}, bundledDir)
}

// Sources lists the names of all .json sources in the loader's directory,
// in lexical order. A missing directory yields no sources.
func (l *FileLoader) Sources() ([]string, error) {
	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, invalidData(l.dir, fmt.Errorf("listing sources: %w", err))
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(path.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// LoadAll decodes every source concurrently and concatenates the results in
// source-name order. Any failing source fails the whole load.
func (l *FileLoader) LoadAll(ctx context.Context) ([]AreaCode, error) {
	start := time.Now()
	names, err := l.Sources()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, noSourcesFound(l.dir)
	}

	parts := make([][]AreaCode, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if l.parallelism > 0 {
		g.SetLimit(l.parallelism)
	}
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			codes, err := l.loadSource(name)
			if err != nil {
				return err
			}
			parts[i] = codes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	all := make([]AreaCode, 0, total)
	seen := make(map[string]string, total)
	for i, p := range parts {
		for _, ac := range p {
			if other, dup := seen[ac.E164]; dup {
				return nil, invalidData(names[i], fmt.Errorf("duplicate e164 %q (also in %s)", ac.E164, other))
			}
			seen[ac.E164] = names[i]
			all = append(all, ac)
		}
	}

	l.log.WithFields(logrus.Fields{
		"sources":  len(names),
		"records":  len(all),
		"duration": time.Since(start),
	}).Debug("loaded all area code sources")
	return all, nil
}

// LoadCountry loads "<ID>-codes.json" for the normalized id.
func (l *FileLoader) LoadCountry(ctx context.Context, id string) ([]AreaCode, error) {
	id = normalizeCountry(id)
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return nil, sourceNotFound(id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := id + sourceSuffix
	ok, err := afero.Exists(l.fs, path.Join(l.dir, name))
	if err != nil {
		return nil, invalidData(name, err)
	}
	if !ok {
		return nil, sourceNotFound(id)
	}
	return l.loadSource(name)
}

// loadSource reads and decodes a single source file.
func (l *FileLoader) loadSource(name string) ([]AreaCode, error) {
	data, err := afero.ReadFile(l.fs, path.Join(l.dir, name))
	if err != nil {
		return nil, invalidData(name, err)
	}

	var codes []AreaCode
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, decodingFailed(name, err)
	}
	for i, ac := range codes {
		if err := checkRecord(ac); err != nil {
			return nil, invalidData(name, fmt.Errorf("record %d: %w", i, err))
		}
	}
	if codes == nil {
		codes = []AreaCode{}
	}

	l.log.WithFields(logrus.Fields{
		"source":  name,
		"records": len(codes),
	}).Debug("decoded area code source")
	return codes, nil
}

// checkRecord rejects records missing a required field.
func checkRecord(ac AreaCode) error {
	switch {
	case ac.Code == "":
		return errors.New("missing code")
	case ac.Country == "":
		return errors.New("missing country")
	case ac.Region == "":
		return errors.New("missing region")
	case ac.E164 == "":
		return errors.New("missing e164")
	}
	return nil
}

// Package library loads the owned collection and the wanted hierarchy from a
// library directory:
//
//	<dir>/owned.yaml          owned boxes
//	<dir>/decks/*.ydk         deck files, named after the file
//	<dir>/collections/*.yaml  themed collections linking decks by name
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/collection"
	"github.com/ramonehamilton/TCG-Collection-Manager/internal/deckio"
)

const (
	// DefaultOwnedFile is the owned collection file name inside the library.
	DefaultOwnedFile = "owned.yaml"

	decksDir       = "decks"
	collectionsDir = "collections"
	deckExt        = ".ydk"
)

// Options configure a Loader.
type Options struct {
	Dir       string
	OwnedFile string // Relative to Dir unless absolute; DefaultOwnedFile when empty

	// Resolve turns card codes into cards. It is called from several
	// goroutines. Nil builds cards from the codes alone.
	Resolve collection.Resolver

	Logger *zap.Logger
}

// Loader reads a library directory.
type Loader struct {
	dir       string
	ownedFile string
	resolve   collection.Resolver
	logger    *zap.Logger
}

// NewLoader creates a loader for the library described by opts.
func NewLoader(opts Options) *Loader {
	owned := opts.OwnedFile
	if owned == "" {
		owned = DefaultOwnedFile
	}
	if !filepath.IsAbs(owned) {
		owned = filepath.Join(opts.Dir, owned)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		dir:       opts.Dir,
		ownedFile: owned,
		resolve:   opts.Resolve,
		logger:    logger,
	}
}

// Dir returns the library directory.
func (l *Loader) Dir() string {
	return l.dir
}

// Paths returns the directories whose changes affect what the loader reads.
func (l *Loader) Paths() []string {
	paths := []string{
		l.dir,
		filepath.Join(l.dir, decksDir),
		filepath.Join(l.dir, collectionsDir),
	}
	if ownedDir := filepath.Dir(l.ownedFile); ownedDir != filepath.Clean(l.dir) {
		paths = append(paths, ownedDir)
	}
	return paths
}

// LoadOwned reads the owned collection file.
func (l *Loader) LoadOwned(ctx context.Context) (*collection.Owned, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.ownedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read owned collection: %w", err)
	}

	var file ownedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", l.ownedFile, err)
	}

	owned, err := file.build(l.resolve)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.ownedFile, err)
	}

	l.logger.Debug("owned collection loaded",
		zap.String("path", l.ownedFile),
		zap.Int("boxes", len(owned.Boxes)),
		zap.Int("cards", owned.Count()),
	)
	return owned, nil
}

// LoadRegistry reads every deck and collection file. Files are parsed
// concurrently; the result is ordered by file name.
func (l *Loader) LoadRegistry(ctx context.Context) (*collection.Registry, error) {
	deckPaths, err := listFiles(filepath.Join(l.dir, decksDir), deckExt)
	if err != nil {
		return nil, err
	}
	collectionPaths, err := listFiles(filepath.Join(l.dir, collectionsDir), ".yaml", ".yml")
	if err != nil {
		return nil, err
	}

	decks := make([]*collection.Deck, len(deckPaths))
	files := make([]*collectionFile, len(collectionPaths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range deckPaths {
		i, path := i, path
		g.Go(func() error {
			deck, err := l.readDeck(gctx, path)
			if err != nil {
				return err
			}
			decks[i] = deck
			return nil
		})
	}
	for i, path := range collectionPaths {
		i, path := i, path
		g.Go(func() error {
			f, err := readCollectionFile(gctx, path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]*collection.Deck, len(decks))
	for _, d := range decks {
		byName[d.Name] = d
	}

	collections := make([]*collection.ThemeCollection, 0, len(files))
	for _, f := range files {
		c, err := f.build(byName, l.resolve)
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}

	reg := collection.NewRegistry(decks, collections)
	l.logger.Debug("library loaded",
		zap.String("dir", l.dir),
		zap.Int("decks", len(decks)),
		zap.Int("collections", len(collections)),
		zap.Int("top_level_decks", len(reg.Decks)),
	)
	return reg, nil
}

// LoadThirdParty reads a third party's card list. Deck files are flattened;
// anything else is read as an element list.
func (l *Loader) LoadThirdParty(ctx context.Context, path string) ([]*collection.Element, error) {
	if strings.EqualFold(filepath.Ext(path), deckExt) {
		deck, err := l.readDeck(ctx, path)
		if err != nil {
			return nil, err
		}
		return deck.Flatten(), nil
	}

	list, err := readFile(ctx, path, func(r io.Reader) ([]*collection.Element, error) {
		return deckio.ReadElements(r, l.resolve)
	})
	if err != nil {
		return nil, err
	}
	l.logger.Debug("third-party list loaded", zap.String("path", path), zap.Int("cards", len(list)))
	return list, nil
}

func (l *Loader) readDeck(ctx context.Context, path string) (*collection.Deck, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return readFile(ctx, path, func(r io.Reader) (*collection.Deck, error) {
		return deckio.ReadDeck(name, r, l.resolve)
	})
}

func readCollectionFile(ctx context.Context, path string) (*collectionFile, error) {
	return readFile(ctx, path, func(r io.Reader) (*collectionFile, error) {
		var f collectionFile
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if f.Name == "" {
			f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		return &f, nil
	})
}

func readFile[T any](ctx context.Context, path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// listFiles returns the files of dir with one of exts, sorted. A missing
// directory holds no files.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		for _, want := range exts {
			if strings.EqualFold(ext, want) {
				out = append(out, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

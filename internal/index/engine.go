// Package index maintains the music file cache backing search and browsing.
//
// The engine walks the media base directory and mirrors known audio files
// into the tracks table. Updates are long-running and independently failable;
// they are normally driven from the background refresher, never from request
// handlers.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cadenza/internal/dbschema"
	"cadenza/internal/logging"
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".ogg":  {},
	".oga":  {},
	".opus": {},
	".flac": {},
	".m4a":  {},
	".aac":  {},
	".wav":  {},
	".wma":  {},
}

// Engine indexes audio files under the media base directory.
type Engine struct {
	db      *sql.DB
	baseDir string
	logger  *slog.Logger
}

// New constructs an engine over the schema store's database.
func New(store *dbschema.Store, baseDir string, logger *slog.Logger) *Engine {
	return &Engine{
		db:      store.DB(),
		baseDir: baseDir,
		logger:  logging.NewComponentLogger(logger, "index"),
	}
}

// FullUpdate rebuilds the index for the entire media base directory: known
// audio files are upserted and rows whose files vanished are pruned.
func (e *Engine) FullUpdate(ctx context.Context) error {
	return e.update(ctx, e.baseDir)
}

// PartialUpdate refreshes only the named targets, each an absolute path or a
// path relative to the media base directory. Targets escaping the base
// directory are rejected.
func (e *Engine) PartialUpdate(ctx context.Context, targets ...string) error {
	if len(targets) == 0 {
		return nil
	}
	for _, target := range targets {
		root, err := e.resolveTarget(target)
		if err != nil {
			return err
		}
		if err := e.update(ctx, root); err != nil {
			return fmt.Errorf("update %s: %w", root, err)
		}
	}
	return nil
}

func (e *Engine) resolveTarget(target string) (string, error) {
	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(e.baseDir, resolved)
	}
	resolved = filepath.Clean(resolved)
	rel, err := filepath.Rel(e.baseDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target %q is outside the media directory", target)
	}
	return resolved, nil
}

// update walks root, upserts every audio file found, and prunes rows under
// root that were not seen during the walk.
func (e *Engine) update(ctx context.Context, root string) error {
	start := time.Now()
	seen := map[string]struct{}{}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable root aborts the update; otherwise pruning
			// would treat every indexed file under it as vanished.
			if path == root {
				return err
			}
			e.logger.Warn("skip unreadable entry", logging.String("path", path), logging.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, ok := audioExtensions[ext]; !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			e.logger.Warn("stat file", logging.String("path", path), logging.Error(err))
			return nil
		}
		seen[path] = struct{}{}
		return e.upsert(ctx, path, ext, info)
	})
	if walkErr != nil {
		if os.IsNotExist(walkErr) {
			return fmt.Errorf("media path %s does not exist", root)
		}
		return walkErr
	}

	pruned, err := e.prune(ctx, root, seen)
	if err != nil {
		return err
	}

	e.logger.Info("index update finished",
		logging.String("root", root),
		logging.Int("files", len(seen)),
		logging.Int64("pruned", pruned),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (e *Engine) upsert(ctx context.Context, path, ext string, info fs.FileInfo) error {
	title := deriveTitle(path)
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO tracks (path, parent, title, ext, size, mtime, search_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   parent = excluded.parent,
		   title = excluded.title,
		   ext = excluded.ext,
		   size = excluded.size,
		   mtime = excluded.mtime,
		   search_text = excluded.search_text`,
		path,
		filepath.Dir(path),
		title,
		ext,
		info.Size(),
		info.ModTime().Unix(),
		searchText(title),
	)
	if err != nil {
		return fmt.Errorf("upsert track %s: %w", path, err)
	}
	return nil
}

// likeEscaper neutralizes LIKE metacharacters so media paths containing
// "_" or "%" only match themselves.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (e *Engine) prune(ctx context.Context, root string, seen map[string]struct{}) (int64, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT id, path FROM tracks WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		root, likeEscaper.Replace(root)+string(filepath.Separator)+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("list indexed tracks: %w", err)
	}
	defer rows.Close()

	var stale []int64
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			return 0, fmt.Errorf("scan track row: %w", err)
		}
		if _, ok := seen[path]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate track rows: %w", err)
	}

	for _, id := range stale {
		if _, err := e.db.ExecContext(ctx, "DELETE FROM tracks WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("delete track %d: %w", id, err)
		}
	}
	return int64(len(stale)), nil
}

// Count returns the number of indexed tracks.
func (e *Engine) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM tracks").Scan(&count); err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return count, nil
}

// Track is a search result row.
type Track struct {
	ID    int64
	Path  string
	Title string
}

// Search returns up to limit tracks whose normalized title contains term.
func (e *Engine) Search(ctx context.Context, term string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + searchText(term) + "%"
	rows, err := e.db.QueryContext(ctx,
		"SELECT id, path, title FROM tracks WHERE search_text LIKE ? ORDER BY title LIMIT ?",
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.ID, &t.Path, &t.Title); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

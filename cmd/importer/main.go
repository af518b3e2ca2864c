package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mapleroot/pressroom/internal/blogservice"
	"github.com/mapleroot/pressroom/internal/common"
)

// The importer is a one-shot migration of the legacy file-based content
// tree into the blogs table. Each post lives in its own directory under
// the content root as an index.md or index.mdx file with a front matter
// header. Posts whose slug already exists are skipped so the importer
// can be re-run safely.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	var (
		envFile    = flag.String("env", ".env", "path to the environment file")
		contentDir = flag.String("dir", filepath.Join("content", "blogs"), "path to the legacy content tree")
	)
	flag.Parse()

	cfg, err := loadConfig(*envFile)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	// Import failures are reported in the summary, not the exit code.
	// Only an unreachable store is fatal.
	service := blogservice.NewBlogService(db, nil)

	imported, skipped, errored := importContent(logger, service, *contentDir)

	logger.Info("migration summary",
		slog.Int("imported", imported),
		slog.Int("skipped", skipped),
		slog.Int("errored", errored))
}

func importContent(logger *slog.Logger, service *blogservice.BlogService, root string) (imported, skipped, errored int) {
	entries, err := os.ReadDir(root)
	if err != nil {
		logger.Error("failed to read content directory", slog.String("dir", root), slog.String("error", err.Error()))
		return 0, 0, 0
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path, err := indexFile(filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}

		switch importPost(logger, service, path, entry.Name()) {
		case importOK:
			imported++
		case importSkipped:
			skipped++
		case importErrored:
			errored++
		}
	}

	return imported, skipped, errored
}

// indexFile locates the canonical content file of a post directory.
func indexFile(dir string) (string, error) {
	for _, name := range []string{"index.md", "index.mdx"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", os.ErrNotExist
}

type importResult int

const (
	importOK importResult = iota
	importSkipped
	importErrored
)

func importPost(logger *slog.Logger, service *blogservice.BlogService, path, dirSlug string) importResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read post", slog.String("path", path), slog.String("error", err.Error()))
		return importErrored
	}

	req, err := parsePost(raw, dirSlug)
	if err != nil {
		logger.Error("failed to parse post", slog.String("path", path), slog.String("error", err.Error()))
		return importErrored
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	blog, err := service.CreateBlog(ctx, req)
	if err != nil {
		if errors.Is(err, blogservice.ErrDuplicateSlug) {
			logger.Warn("post already exists", slog.String("slug", req.Slug))
			return importSkipped
		}

		logger.Error("failed to import post", slog.String("slug", req.Slug), slog.String("error", err.Error()))
		return importErrored
	}

	logger.Info("imported post", slog.String("slug", blog.Slug), slog.String("title", blog.Title))
	return importOK
}

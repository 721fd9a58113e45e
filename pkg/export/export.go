// Package export writes scraped posts as CSV, XLSX and a JSON sidecar.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/models"
)

// mediaSeparator joins stored locations inside one cell
const mediaSeparator = ", "

// Options selects the output files
type Options struct {
	Dir         string
	BaseName    string
	StorageMode string
	CSV         bool
	XLSX        bool
	JSON        bool
}

// OptionsFromConfig derives Options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dir:         cfg.Export.OutputDir,
		BaseName:    cfg.OutputBaseName(),
		StorageMode: cfg.Storage.Mode,
		CSV:         cfg.Export.CSV,
		XLSX:        cfg.Export.XLSX,
		JSON:        cfg.Export.JSON,
	}
}

// Header returns the column names. The media column is image_paths for local
// storage and image_urls otherwise.
func Header(storageMode string) []string {
	media := "image_urls"
	if storageMode == config.StorageLocal {
		media = "image_paths"
	}
	return []string{"source_url", "text", media, "num_images", "scraped_at"}
}

// Row flattens one record in Header order
func Row(rec models.PostRecord) []string {
	return []string{
		rec.SourceURL,
		rec.Caption,
		strings.Join(rec.Locations(), mediaSeparator),
		strconv.Itoa(rec.MediaCount),
		rec.ScrapedAt.UTC().Format(time.RFC3339),
	}
}

// Write produces every enabled file in discovery order and returns their
// paths. Any write failure is fatal for the run.
func Write(records []models.PostRecord, opts Options, run RunInfo) ([]string, error) {
	if opts.BaseName == "" {
		return nil, apperrors.Fatal("export", "output base name is empty", nil)
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.Fatal("export", "failed to create output directory", err)
	}

	base := filepath.Join(dir, opts.BaseName)
	header := Header(opts.StorageMode)
	var files []string

	if opts.CSV {
		path := base + ".csv"
		if err := WriteCSV(path, header, records); err != nil {
			return files, apperrors.Fatal("export.csv", "failed to write "+path, err)
		}
		files = append(files, path)
	}
	if opts.XLSX {
		path := base + ".xlsx"
		if err := WriteXLSX(path, header, records); err != nil {
			return files, apperrors.Fatal("export.xlsx", "failed to write "+path, err)
		}
		files = append(files, path)
	}
	if opts.JSON {
		path := base + ".json"
		if err := WriteJSON(path, records, run); err != nil {
			return files, apperrors.Fatal("export.json", "failed to write "+path, err)
		}
		files = append(files, path)
	}

	if len(files) == 0 {
		return nil, apperrors.Fatal("export", "no output format enabled", fmt.Errorf("csv, xlsx and json are all off"))
	}
	return files, nil
}

// replaceFile writes via a temp file in the same directory and renames it over path
func replaceFile(path string, write func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

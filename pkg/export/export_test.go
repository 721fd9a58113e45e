package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/models"
)

var scrapedAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("CET", 3600))

func sampleRecords() []models.PostRecord {
	return []models.PostRecord{
		models.NewPostRecord(1, "https://www.threads.com/@alice/post/1", "Trail, \"summit\" day\nsecond line", []models.MediaAsset{
			{OriginalURL: "https://cdn.example.com/a.jpg", StoredLocation: "https://res.cloudinary.com/demo/a.jpg"},
			{OriginalURL: "https://cdn.example.com/b.jpg", StoredLocation: "https://res.cloudinary.com/demo/b.jpg"},
		}, scrapedAt),
		models.NewPostRecord(3, "https://www.threads.com/@bob/post/3", "Café ☕", nil, scrapedAt),
	}
}

func TestHeaderAndRow(t *testing.T) {
	assert.Equal(t, []string{"source_url", "text", "image_urls", "num_images", "scraped_at"}, Header(config.StorageRemote))
	assert.Equal(t, "image_paths", Header(config.StorageLocal)[2])

	row := Row(sampleRecords()[0])
	assert.Equal(t, "https://res.cloudinary.com/demo/a.jpg, https://res.cloudinary.com/demo/b.jpg", row[2])
	assert.Equal(t, "2", row[3])
	assert.Equal(t, "2025-03-14T08:26:53Z", row[4], "timestamps are UTC")

	empty := Row(sampleRecords()[1])
	assert.Equal(t, "", empty[2])
	assert.Equal(t, "0", empty[3])
}

func TestWriteAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	run := RunInfo{TargetURL: "https://www.threads.com/saved", StorageMode: config.StorageRemote, PostsFound: 3, ImagesStored: 2}

	files, err := Write(sampleRecords(), Options{
		Dir: dir, BaseName: "saved_posts_cloudinary", StorageMode: config.StorageRemote,
		CSV: true, XLSX: true, JSON: true,
	}, run)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "saved_posts_cloudinary.csv"),
		filepath.Join(dir, "saved_posts_cloudinary.xlsx"),
		filepath.Join(dir, "saved_posts_cloudinary.json"),
	}, files)

	t.Run("csv", func(t *testing.T) {
		raw, err := os.ReadFile(files[0])
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(raw, utf8BOM), "CSV starts with a BOM")

		rows, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "source_url", rows[0][0])
		assert.Equal(t, "Trail, \"summit\" day\nsecond line", rows[1][1], "quoting round-trips")
		assert.Equal(t, "Café ☕", rows[2][1])
	})

	t.Run("xlsx", func(t *testing.T) {
		f, err := excelize.OpenFile(files[1])
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{SheetName}, f.GetSheetList())
		rows, err := f.GetRows(SheetName)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "image_urls", rows[0][2])
		assert.Equal(t, "https://www.threads.com/@bob/post/3", rows[2][0])
		assert.Equal(t, "2", rows[1][3])
	})

	t.Run("json", func(t *testing.T) {
		s, err := LoadJSON(files[2])
		require.NoError(t, err)
		assert.Equal(t, run.TargetURL, s.Run.TargetURL)
		require.Len(t, s.Posts, 2)
		assert.Equal(t, 3, s.Posts[1].Index, "discovery index survives dropped posts")
		assert.Equal(t, 2, s.Posts[0].MediaCount)
		assert.NotNil(t, s.Posts[1].Media)
	})
}

func TestWriteEmptyStillHasHeader(t *testing.T) {
	dir := t.TempDir()
	files, err := Write(nil, Options{Dir: dir, BaseName: "saved_posts_local", StorageMode: config.StorageLocal, CSV: true}, RunInfo{})
	require.NoError(t, err)
	require.Len(t, files, 1)

	raw, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "\ufeffsource_url,text,image_paths,num_images,scraped_at\n", string(raw))
}

func TestWriteFailuresAreFatal(t *testing.T) {
	_, err := Write(sampleRecords(), Options{Dir: t.TempDir(), CSV: true}, RunInfo{})
	assert.True(t, apperrors.IsFatal(err), "empty base name")

	_, err = Write(sampleRecords(), Options{Dir: t.TempDir(), BaseName: "x"}, RunInfo{})
	assert.True(t, apperrors.IsFatal(err), "no format enabled")

	// a regular file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	_, err = Write(sampleRecords(), Options{Dir: blocker, BaseName: "x", CSV: true}, RunInfo{})
	if !apperrors.IsFatal(err) {
		t.Errorf("expected fatal error for unwritable directory, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Mode = config.StorageLocal

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "saved_posts_local", opts.BaseName)
	assert.True(t, opts.CSV)
	assert.True(t, opts.XLSX)
}

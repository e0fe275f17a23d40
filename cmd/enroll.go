package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/luckymoturi/AttendanceProject/internal/database"
	"github.com/luckymoturi/AttendanceProject/internal/faceid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <directory>",
	Short: "Bulk enroll identities from a directory of photos",
	Long: `Bulk enroll identities from a directory of photos.
Each photo file becomes one identity named after the file (without
extension), so "photos/Jane Doe.jpg" enrolls "Jane Doe". All embeddings
are stored in a single transaction; if any photo fails, nothing is written.

Examples:
  # Enroll everyone in the team photos folder
  attendance enroll ./team-photos

  # Compute embeddings with higher concurrency
  attendance enroll ./team-photos --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("concurrency", 4, "Number of photos to embed in parallel")
}

// photoExtensions lists the image formats accepted for enrollment.
var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// listPhotoFiles returns the photo files directly inside dir, sorted by name.
func listPhotoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if photoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			photos = append(photos, filepath.Join(dir, entry.Name()))
		}
	}
	return photos, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	photos, err := listPhotoFiles(args[0])
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return fmt.Errorf("no photo files found in %s", args[0])
	}

	cfg, pool, err := connectDatabase()
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, _, faces := buildService(cfg, pool)
	ctx := context.Background()

	fmt.Printf("Photos to enroll: %d\n\n", len(photos))

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Computing embeddings"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var mu sync.Mutex
	var identities []database.StoredIdentity
	var noFace, failed []string

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, photo := range photos {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer bar.Add(1)

			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

			data, err := os.ReadFile(path) //nolint:gosec // operator-supplied directory
			if err != nil {
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
				return
			}

			embedding, err := faces.FirstFaceEmbedding(ctx, data)
			if err != nil {
				mu.Lock()
				if errors.Is(err, faceid.ErrNoFace) {
					noFace = append(noFace, path)
				} else {
					failed = append(failed, fmt.Sprintf("%s: %v", path, err))
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			identities = append(identities, database.StoredIdentity{Name: name, Embedding: embedding})
			mu.Unlock()
		}(photo)
	}
	wg.Wait()
	fmt.Println()

	for _, path := range noFace {
		fmt.Printf("Skipped (no face detected): %s\n", path)
	}
	if len(failed) > 0 {
		for _, msg := range failed {
			fmt.Printf("Failed: %s\n", msg)
		}
		return fmt.Errorf("%d photo(s) failed, nothing was enrolled", len(failed))
	}
	if len(identities) == 0 {
		return errors.New("no faces detected in any photo, nothing to enroll")
	}

	if err := svc.EnrollBatch(ctx, identities); err != nil {
		return fmt.Errorf("enrolling identities: %w", err)
	}

	fmt.Printf("Enrolled %d identities", len(identities))
	if len(noFace) > 0 {
		fmt.Printf(" (%d skipped)", len(noFace))
	}
	fmt.Println()
	return nil
}

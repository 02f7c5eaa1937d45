// ABOUTME: Seed-file loader that fills the vector index with tours and
// ABOUTME: training phrases at startup.

package vector

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML shape of a catalogue seed.
type SeedFile struct {
	Tours           []Tour `yaml:"tours"`
	TrainingPhrases []struct {
		Phrase string `yaml:"phrase"`
		City   string `yaml:"city"`
	} `yaml:"training_phrases"`
}

// LoadSeed reads a seed file and indexes its contents. Documents with stable
// IDs are upserted, so reloading the same file is harmless. Individual
// document failures are logged and skipped rather than aborting the load;
// one bad embedding should not keep the gateway down.
func (ix *Index) LoadSeed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	indexed, skipped := 0, 0
	for _, tour := range seed.Tours {
		if tour.ID == "" || tour.Title == "" {
			skipped++
			continue
		}
		if err := ix.AddTour(ctx, tour); err != nil {
			ix.logger.Warn("failed to index seed tour", "tour_id", tour.ID, "error", err)
			skipped++
			continue
		}
		indexed++
	}

	for _, tp := range seed.TrainingPhrases {
		if tp.Phrase == "" {
			skipped++
			continue
		}
		if err := ix.AddTrainingPhrase(ctx, tp.Phrase, tp.City); err != nil {
			ix.logger.Warn("failed to index training phrase", "phrase", tp.Phrase, "error", err)
			skipped++
			continue
		}
		indexed++
	}

	ix.logger.Info("seed load complete", "path", path, "indexed", indexed, "skipped", skipped)
	return nil
}

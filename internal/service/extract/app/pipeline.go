package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/adapters/queue"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/adapters/storage"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/fhir"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/tabular"
	"github.com/Cleo-Systems/elevate-extract/internal/service/metrics"
)

const outputContentType = "text/csv"

// Pipeline runs one work item end to end: notification decode, object fetch,
// bundle extraction, CSV serialization, publish, scratch cleanup.
type Pipeline struct {
	store        storage.ObjectStore
	extractor    *fhir.Extractor
	writer       *tabular.Writer
	inputBucket  string
	outputBucket string
	workDir      string
	log          zerolog.Logger
}

func NewPipeline(
	store storage.ObjectStore,
	extractor *fhir.Extractor,
	writer *tabular.Writer,
	inputBucket, outputBucket, workDir string,
	log zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		store:        store,
		extractor:    extractor,
		writer:       writer,
		inputBucket:  inputBucket,
		outputBucket: outputBucket,
		workDir:      workDir,
		log:          log,
	}
}

// Process handles a single item, strictly sequentially, with no externally
// visible partial result. A nil return means the item may be acknowledged;
// any error carries a Kind and means the item should be released for
// redelivery. Panics are recovered into KindUnknown so one poisonous item can
// never take the loop down.
func (p *Pipeline) Process(ctx context.Context, item queue.WorkItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failure(KindUnknown, fmt.Errorf("panic: %v", r))
		}
	}()

	key, kerr := objectKey(item.Body())
	if kerr != nil {
		return failure(KindBadNotification, kerr)
	}
	log := p.log.With().Str("key", key).Logger()

	data, ferr := p.store.Fetch(ctx, p.inputBucket, key)
	if ferr != nil {
		return failure(KindFetchError, ferr)
	}

	// Stage input and output through the work dir; both files are transient
	// per-item state and are removed once the item is resolved.
	inputPath := filepath.Join(p.workDir, path.Base(key))
	if werr := os.WriteFile(inputPath, data, 0o644); werr != nil {
		return failure(KindUnknown, fmt.Errorf("stage input: %w", werr))
	}
	defer os.Remove(inputPath)

	bundle, berr := fhir.ParseBundle(data)
	if berr != nil {
		return failure(KindMalformedBundle, berr)
	}

	rows, xerr := p.extractor.Extract(bundle)
	if xerr != nil {
		return failure(extractionKind(xerr), xerr)
	}
	metrics.RowsExtracted.Add(float64(len(rows)))

	outName := outputName(key)
	outputPath := filepath.Join(p.workDir, outName)
	if werr := p.writeOutput(outputPath, rows); werr != nil {
		return failure(KindUnknown, fmt.Errorf("stage output: %w", werr))
	}
	defer os.Remove(outputPath)

	out, rerr := os.ReadFile(outputPath)
	if rerr != nil {
		return failure(KindUnknown, fmt.Errorf("read output: %w", rerr))
	}
	if perr := p.store.Publish(ctx, p.outputBucket, outName, out, outputContentType); perr != nil {
		return failure(KindUnknown, fmt.Errorf("publish output: %w", perr))
	}

	log.Info().Int("rows", len(rows)).Str("output", outName).Msg("bundle extracted")
	return nil
}

func (p *Pipeline) writeOutput(outputPath string, rows []fhir.Row) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := p.writer.Write(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// outputName derives the published object name: same base name as the input
// key with the tabular extension.
func outputName(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base)) + ".csv"
}

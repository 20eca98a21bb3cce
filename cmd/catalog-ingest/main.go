package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/nevtar/ordercore/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	batchSize     = 500
)

// productLine is one record of a gzipped JSON-lines catalog feed.
type productLine struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Active      *bool  `json:"active"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing catalog*.jsonl.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "catalog*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no catalog*.jsonl.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Overlapping feeds repeat product ids; the first occurrence wins. The
	// bloom filter is advisory only: a hit downgrades the write to
	// insert-if-absent, it never skips the line, so a false positive costs
	// one redundant statement instead of a lost product.
	dedup := &dedupFilter{filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR)}
	products := make(chan feedRecord, batchSize)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return writeProducts(ctx, pool, products)
	})

	g.Go(func() error {
		defer close(products)
		scanners, ctx := errgroup.WithContext(ctx)
		for i, f := range files {
			scanners.Go(scanFeedFile(ctx, i, f, dedup, products))
		}
		return scanners.Wait()
	})

	return g.Wait()
}

// dedupFilter wraps a bloom filter with a mutex; the filter itself is not
// safe for concurrent writers.
type dedupFilter struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

// seen reports whether id was already recorded, recording it if not.
func (d *dedupFilter) seen(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter.TestAndAddString(id)
}

// feedRecord is one valid feed line plus the dedup filter's verdict on its
// id. The filter can report false positives, so a hit must never drop the
// line; it only switches the write to insert-if-absent.
type feedRecord struct {
	productLine
	maybeDup bool
}

func scanFeedFile(ctx context.Context, idx int, path string, dedup *dedupFilter, out chan<- feedRecord) func() error {
	return func() error {
		var total, fresh, dups uint64

		if err := streamGzFile(ctx, path, func(line []byte) error {
			var p productLine
			if err := json.Unmarshal(line, &p); err != nil {
				return errors.Wrap(err, "parse feed line")
			}
			total++
			if total%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("file", idx+1),
					slog.Uint64("lines", total),
				)
			}
			if p.ID == "" || p.Name == "" || p.PriceCents < 0 {
				return nil
			}
			rec := feedRecord{productLine: p, maybeDup: dedup.seen(p.ID)}
			if rec.maybeDup {
				dups++
			} else {
				fresh++
			}
			select {
			case out <- rec:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}); err != nil {
			return errors.Wrapf(err, "scan feed %s", path)
		}

		slog.Info("feed complete",
			slog.Int("file", idx+1),
			slog.Uint64("lines", total),
			slog.Uint64("fresh", fresh),
			slog.Uint64("repeats", dups),
		)
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// writeProducts drains the channel and writes each record. A record the
// filter never saw before refreshes the stored row; a possible repeat is
// written insert-if-absent so the first occurrence keeps winning and a
// filter false positive still lands the product.
func writeProducts(ctx context.Context, pool *pgxpool.Pool, products <-chan feedRecord) error {
	const upsert = `
INSERT INTO products (id, name, description, price_cents, currency, active)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    active = EXCLUDED.active,
    updated_at = now()`

	const insertIfAbsent = `
INSERT INTO products (id, name, description, price_cents, currency, active)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

	var count uint64
	for rec := range products {
		currency := rec.Currency
		if currency == "" {
			currency = "USD"
		}
		active := true
		if rec.Active != nil {
			active = *rec.Active
		}
		q := upsert
		if rec.maybeDup {
			q = insertIfAbsent
		}
		if _, err := pool.Exec(ctx, q, rec.ID, rec.Name, rec.Description, rec.PriceCents, currency, active); err != nil {
			return errors.Wrapf(err, "write product %s", rec.ID)
		}
		count++
	}

	slog.Info("products written", slog.Uint64("count", count))
	return nil
}

/*
Package workers sizes the metadata extraction pool.

GOMAXPROCS already reflects container CPU limits (Go 1.19+), so Count uses it
instead of runtime.NumCPU:

	// 2 workers per available CPU, at most 16
	n := workers.Count(2.0, 16)

Extraction resolves the configured pool size. The default is
DefaultExtraction (4); Auto (0) sizes the pool with ForIO; values above
MaxExtraction are capped:

	pool := workers.Extraction(cfg.Workers)
	logging.Info("Starting %d extraction workers (GOMAXPROCS=%d)", pool, runtime.GOMAXPROCS(0))

Reading EXIF blocks is dominated by file I/O, which is why Auto uses the I/O
multiplier.
*/
package workers

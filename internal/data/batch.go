package data

// BatchProcessor walks index ranges of a fixed size.
type BatchProcessor struct {
	batchSize int
}

func NewBatchProcessor(batchSize int) *BatchProcessor {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &BatchProcessor{batchSize: batchSize}
}

// ProcessBatches calls processFn with consecutive [start, end) ranges
// covering total items and stops at the first error.
func (bp *BatchProcessor) ProcessBatches(total int, processFn func(start, end int) error) error {
	for start := 0; start < total; start += bp.batchSize {
		end := start + bp.batchSize
		if end > total {
			end = total
		}

		if err := processFn(start, end); err != nil {
			return err
		}
	}

	return nil
}

func (bp *BatchProcessor) SetBatchSize(size int) {
	if size > 0 {
		bp.batchSize = size
	}
}

package service

import "time"

// StartSnapshotJob publishes a fresh book snapshot through the reclaim
// Guardian on a fixed interval and truncates WALs that are now covered by
// the durably-stored snapshot. It returns a stop function that halts the
// job; the caller is responsible for calling it during shutdown.
func (s *OrderService) StartSnapshotJob(interval time.Duration) (stop func()) {
	done := make(chan struct{})

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-done:
				return
			case <-t.C:
				// Read before publishing: the snapshot frozen next covers
				// at least every sequence number up to seq.
				seq := s.seqGen.Current()
				s.PublishSnapshot()

				_ = s.entryWAL.TruncateBefore(seq)
				_ = s.exitWAL.DeleteAcked()
			}
		}
	}()

	return func() { close(done) }
}

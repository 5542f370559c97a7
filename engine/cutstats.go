package engine

// CutStatistics collects counts for each cutoff mechanism.
type CutStatistics struct {
	TTCutoffs        uint64
	BetaCutoffs      uint64
	QStandPatCutoffs uint64
	QBetaCutoffs     uint64
}

// CutStats returns the counts of the last search.
func (s *Searcher) CutStats() CutStatistics { return s.cutStats }

func (s *Searcher) resetCutStats() {
	s.cutStats = CutStatistics{}
}

func (s *Searcher) dumpCutStats() {
	if !s.settings.PrintCutStats || s.logger == nil {
		return
	}
	s.logger.Println("info string Cut statistics:")
	s.logger.Printf("info string   TT cutoffs: %d\n", s.cutStats.TTCutoffs)
	s.logger.Printf("info string   Beta cutoffs: %d\n", s.cutStats.BetaCutoffs)
	s.logger.Printf("info string   QStandPat cutoffs: %d\n", s.cutStats.QStandPatCutoffs)
	s.logger.Printf("info string   QBeta cutoffs: %d\n", s.cutStats.QBetaCutoffs)
}

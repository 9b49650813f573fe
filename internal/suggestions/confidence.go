package suggestions

// calculateRealisticConfidence degrades a rule's base confidence by how
// thin the underlying sample is. Rules with hard-coded confidence
// constants bypass this entirely.
func calculateRealisticConfidence(base float64, in *Input) float64 {
	confidence := base

	if in.HomeStats == nil || in.AwayStats == nil {
		confidence -= 8
	}
	if in.HomeForm.Played < 5 || in.AwayForm.Played < 5 {
		confidence -= 6
	}
	if in.HomeForm.NoRecentMatches || in.AwayForm.NoRecentMatches {
		confidence -= 10
	}
	if len(in.H2H) < 2 {
		confidence -= 5
	}

	if confidence < 35 {
		return 35
	}
	if confidence > 85 {
		return 85
	}
	return confidence
}

package orchestrator

import cfg "github.com/maastricht-university/dialog-coordination/config"

// Matcher detects configured label pairs spoken in order by two different
// participants. The anchor label is always tested against the oldest
// utterance in the window, and the follow label against every newer one.
type Matcher struct {
	pairs []cfg.LabelPair
}

func NewMatcher(pairs []cfg.LabelPair) *Matcher {
	return &Matcher{pairs: append([]cfg.LabelPair(nil), pairs...)}
}

// Match scans a window snapshot (oldest first) and returns one Match per
// satisfied pair and follower, in pair order then window order.
// It does not modify utts.
func (m *Matcher) Match(utts []Utterance) []Match {
	if len(utts) < 2 {
		return nil
	}
	anchor := utts[0]

	var out []Match
	for _, p := range m.pairs {
		if !anchor.HasLabel(p.Anchor) {
			continue
		}
		for _, cand := range utts[1:] {
			if cand.ParticipantID == anchor.ParticipantID {
				continue
			}
			if cand.HasLabel(p.Follow) {
				out = append(out, Match{Pair: p, Anchor: anchor, Follower: cand})
			}
		}
	}
	return out
}

package arpa

// DopplerState is the per-target Doppler classification spec.md §4.6
// names; it both gates which history pixels a refresh search considers
// and is itself updated by what that search finds.
type DopplerState int

const (
	DopplerStateAny DopplerState = iota
	DopplerStateNoDoppler
	DopplerStateApproaching
	DopplerStateReceding
	DopplerStateAnyDoppler
	DopplerStateNotReceding
	DopplerStateNotApproaching
	DopplerStateAnyPlus
)

// PixelMatch is the fixed truth table spec.md §4.6 describes over
// (is_target, is_backup, is_approaching, is_receding), reproduced from
// the bit-table in the source domain comments.
func PixelMatch(state DopplerState, p HistoryPixel) bool {
	target := p.IsTarget()
	backup := p.IsBackup()
	approaching := p.IsApproaching()
	receding := p.IsReceding()

	switch state {
	case DopplerStateAny:
		return target
	case DopplerStateNoDoppler:
		return target && !approaching && !receding
	case DopplerStateApproaching:
		return target && approaching
	case DopplerStateReceding:
		return target && receding
	case DopplerStateAnyDoppler:
		return target && (approaching || receding)
	case DopplerStateNotReceding:
		return target && !receding
	case DopplerStateNotApproaching:
		return target && !approaching
	case DopplerStateAnyPlus:
		return target || backup
	default:
		return false
	}
}

// ContourPixelCounts summarizes one contour's interior pixel
// classification, the input to DopplerState transitions (spec.md §4.6).
type ContourPixelCounts struct {
	Total       int
	Approaching int
	Receding    int
}

// enterFraction/exitFraction are the exact fractions spec.md
// §4.6 and §8 scenarios 5-6 fix: entering a directional state requires
// >85% of the contour; leaving requires falling under 80% of the
// non-opposing remainder.
const (
	enterFraction = 0.85
	exitFraction  = 0.80
)

// NextDopplerState applies one refresh's transition rule (spec.md §4.6):
//
//   - From {Any, AnyDoppler}: if approaching > receding and >
//     enterFraction*total -> Approaching; symmetric for Receding;
//     otherwise AnyDoppler falls back to Any, Any stays Any.
//   - From Approaching: if approaching < exitFraction*(total-receding)
//     -> Any; else stay.
//   - From Receding: symmetric.
//   - Other states do not transition automatically.
func NextDopplerState(current DopplerState, c ContourPixelCounts) DopplerState {
	switch current {
	case DopplerStateAny, DopplerStateAnyDoppler:
		if c.Total > 0 && c.Approaching > c.Receding && float64(c.Approaching) > enterFraction*float64(c.Total) {
			return DopplerStateApproaching
		}
		if c.Total > 0 && c.Receding > c.Approaching && float64(c.Receding) > enterFraction*float64(c.Total) {
			return DopplerStateReceding
		}
		if current == DopplerStateAnyDoppler {
			return DopplerStateAny
		}
		return DopplerStateAny
	case DopplerStateApproaching:
		remainder := float64(c.Total - c.Receding)
		if float64(c.Approaching) < exitFraction*remainder {
			return DopplerStateAny
		}
		return DopplerStateApproaching
	case DopplerStateReceding:
		remainder := float64(c.Total - c.Approaching)
		if float64(c.Receding) < exitFraction*remainder {
			return DopplerStateAny
		}
		return DopplerStateReceding
	default:
		return current
	}
}

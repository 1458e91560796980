package arpa

import "github.com/banshee-data/radar-core/internal/state"

// Contour length bounds (spec.md §4.6): "MIN_CONTOUR_LENGTH (6) <=
// length < MAX_CONTOUR_LENGTH (2000) - 2".
const (
	MinContourLength = 6
	MaxContourLength = 2000
)

// ContourErrorKind is the discriminated failure union spec.md §4.6 names
// for contour extraction.
type ContourErrorKind int

const (
	ErrRangeTooHigh ContourErrorKind = iota
	ErrRangeTooLow
	ErrNoEchoAtStart
	ErrStartPointNotOnContour
	ErrBrokenContour
	ErrNoContourFound
	ErrContourTooLong
	ErrWeightedContourLengthTooHigh
	ErrAlreadyFound
	ErrNotFound
	ErrLost
	ErrWaitForRefresh
)

func (k ContourErrorKind) String() string {
	switch k {
	case ErrRangeTooHigh:
		return "range too high"
	case ErrRangeTooLow:
		return "range too low"
	case ErrNoEchoAtStart:
		return "no echo at start"
	case ErrStartPointNotOnContour:
		return "start point not on contour"
	case ErrBrokenContour:
		return "broken contour"
	case ErrNoContourFound:
		return "no contour found"
	case ErrContourTooLong:
		return "contour too long"
	case ErrWeightedContourLengthTooHigh:
		return "weighted contour length too high"
	case ErrAlreadyFound:
		return "already found"
	case ErrNotFound:
		return "not found"
	case ErrLost:
		return "lost"
	case ErrWaitForRefresh:
		return "wait for refresh"
	default:
		return "unknown contour error"
	}
}

// ContourError wraps a ContourErrorKind as an error.
type ContourError struct{ Kind ContourErrorKind }

func (e *ContourError) Error() string { return "arpa: contour: " + e.Kind.String() }

// direction vectors for square-tracing, in (d-angle, d-radius) order,
// matching the four-neighbour rule spec.md §4.6 specifies.
var directions = [4]state.Polar{
	{Angle: 0, Radius: 1},  // outward
	{Angle: 1, Radius: 0},  // clockwise
	{Angle: 0, Radius: -1}, // inward
	{Angle: -1, Radius: 0}, // counter-clockwise
}

// traceMatch reports whether the pixel at p is part of the target region
// under the given DopplerState restriction.
func traceMatch(h *HistoryBuffer, ds DopplerState, p state.Polar) bool {
	sp, ok := h.At(p.Angle)
	if !ok || p.Radius < 0 || p.Radius >= len(sp.Pixels) {
		return false
	}
	return PixelMatch(ds, sp.Pixels[p.Radius])
}

// TraceContour performs square-tracing from start (spec.md §4.6): start
// must already be known to be a target pixel on the boundary of a
// connected region. It walks the boundary, always trying to turn left
// relative to its last heading, until it returns to start.
func TraceContour(h *HistoryBuffer, ds DopplerState, start state.Polar) ([]state.Polar, error) {
	if !traceMatch(h, ds, start) {
		return nil, &ContourError{Kind: ErrNoEchoAtStart}
	}

	contour := []state.Polar{start}
	cur := start
	// dir indexes `directions`; begin pointed "outward" and rotate to
	// find the first boundary-following step.
	dir := 0
	for step := 0; step < MaxContourLength+4; step++ {
		found := false
		// Try the four directions starting from one left of the last
		// heading (standard square-tracing turn rule).
		tryFrom := (dir + 3) % 4
		for i := 0; i < 4; i++ {
			tryDir := (tryFrom + i) % 4
			next := state.Polar{
				Angle:  state.NormalizeAngle(cur.Angle+directions[tryDir].Angle, h.SpokesPerRevolution()),
				Radius: cur.Radius + directions[tryDir].Radius,
			}
			if traceMatch(h, ds, next) {
				cur = next
				dir = tryDir
				found = true
				break
			}
		}
		if !found {
			return nil, &ContourError{Kind: ErrBrokenContour}
		}
		if cur == start {
			break
		}
		contour = append(contour, cur)
		if len(contour) >= MaxContourLength-2 {
			return nil, &ContourError{Kind: ErrContourTooLong}
		}
	}

	if len(contour) < MinContourLength {
		return nil, &ContourError{Kind: ErrNoContourFound}
	}
	if len(contour) >= MaxContourLength-2 {
		return nil, &ContourError{Kind: ErrContourTooLong}
	}
	return contour, nil
}

// Centroid computes the mean polar position of a contour's points,
// weighted equally (spec.md §4.6: "compute the contour centroid").
func Centroid(contour []state.Polar) state.Polar {
	if len(contour) == 0 {
		return state.Polar{}
	}
	var sumAngle, sumRadius int
	for _, p := range contour {
		sumAngle += p.Angle
		sumRadius += p.Radius
	}
	return state.Polar{Angle: sumAngle / len(contour), Radius: sumRadius / len(contour)}
}

// CountDopplerPixels tallies approaching/receding/total pixel counts
// over the contour's own points, the input to NextDopplerState (spec.md
// §4.6). Only the boundary pixels listed in contour are counted; pixels
// in the interior of the region are not.
func CountDopplerPixels(h *HistoryBuffer, contour []state.Polar) ContourPixelCounts {
	var c ContourPixelCounts
	for _, p := range contour {
		sp, ok := h.At(p.Angle)
		if !ok || p.Radius < 0 || p.Radius >= len(sp.Pixels) {
			continue
		}
		px := sp.Pixels[p.Radius]
		if !px.IsTarget() {
			continue
		}
		c.Total++
		if px.IsApproaching() {
			c.Approaching++
		}
		if px.IsReceding() {
			c.Receding++
		}
	}
	return c
}

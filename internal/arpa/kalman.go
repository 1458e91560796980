package arpa

import "gonum.org/v1/gonum/mat"

// Kalman is a 2-D constant-velocity filter with state (x, y, vx, vy)
// (spec.md §4.6: "Rationale for CV (not CA): radar targets are sampled
// at 0.25-2.5 Hz per scan; higher-order models over-fit at these
// rates."). Positions are in a local-tangent-plane metres frame centred
// on own-ship at the time of target acquisition.
type Kalman struct {
	x *mat.VecDense // [x y vx vy]
	p *mat.Dense    // 4x4 covariance

	processNoise     float64
	measurementNoise float64
}

// NewKalman seeds the filter at (x0, y0) with zero velocity and a wide
// initial covariance on velocity (spec.md §4.6: "Process noise and
// measurement noise are configurable scalars").
func NewKalman(x0, y0, processNoise, measurementNoise float64) *Kalman {
	x := mat.NewVecDense(4, []float64{x0, y0, 0, 0})
	p := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		p.Set(i, i, 100)
	}
	return &Kalman{x: x, p: p, processNoise: processNoise, measurementNoise: measurementNoise}
}

func stateTransition(dtSeconds float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, dtSeconds, 0,
		0, 1, 0, dtSeconds,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

func processNoiseMatrix(dtSeconds, q float64) *mat.Dense {
	dt2 := dtSeconds * dtSeconds
	dt3 := dt2 * dtSeconds / 2
	dt4 := dt2 * dt2 / 4
	return mat.NewDense(4, 4, []float64{
		dt4 * q, 0, dt3 * q, 0,
		0, dt4 * q, 0, dt3 * q,
		dt3 * q, 0, dt2 * q, 0,
		0, dt3 * q, 0, dt2 * q,
	})
}

// Predict advances the state and covariance by dtSeconds with no
// measurement (spec.md §4.6: "Predict each refresh tick").
func (k *Kalman) Predict(dtSeconds float64) {
	f := stateTransition(dtSeconds)

	var xNext mat.VecDense
	xNext.MulVec(f, k.x)
	k.x = &xNext

	var fp, fpft mat.Dense
	fp.Mul(f, k.p)
	fpft.Mul(&fp, f.T())

	q := processNoiseMatrix(dtSeconds, k.processNoise)
	var pNext mat.Dense
	pNext.Add(&fpft, q)
	k.p = &pNext
}

// Update folds in a measured (x, y) position — the contour centroid
// projected to the local-tangent plane (spec.md §4.6).
func (k *Kalman) Update(measuredX, measuredY float64) {
	h := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
	})
	r := mat.NewDense(2, 2, []float64{
		k.measurementNoise, 0,
		0, k.measurementNoise,
	})

	z := mat.NewVecDense(2, []float64{measuredX, measuredY})

	var hx mat.VecDense
	hx.MulVec(h, k.x)
	var y mat.VecDense
	y.SubVec(z, &hx)

	var hp, hpht, s mat.Dense
	hp.Mul(h, k.p)
	hpht.Mul(&hp, h.T())
	s.Add(&hpht, r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return // singular innovation covariance; skip this update rather than corrupt state
	}

	var pht mat.Dense
	pht.Mul(k.p, h.T())
	var gain mat.Dense
	gain.Mul(&pht, &sInv)

	var correction mat.VecDense
	correction.MulVec(&gain, &y)
	var xNext mat.VecDense
	xNext.AddVec(k.x, &correction)
	k.x = &xNext

	ident := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		ident.Set(i, i, 1)
	}
	var gh mat.Dense
	gh.Mul(&gain, h)
	var imgh mat.Dense
	imgh.Sub(ident, &gh)
	var pNext mat.Dense
	pNext.Mul(&imgh, k.p)
	k.p = &pNext
}

// Position returns the filter's current (x, y) estimate.
func (k *Kalman) Position() (x, y float64) { return k.x.AtVec(0), k.x.AtVec(1) }

// SetPosition overwrites the (x, y) state directly, leaving velocity and
// covariance untouched; used to seed a newly acquired target's starting
// position once its polar acquisition point has been projected to the
// local-tangent-plane frame.
func (k *Kalman) SetPosition(x, y float64) {
	k.x.SetVec(0, x)
	k.x.SetVec(1, y)
}

// Velocity returns the filter's current (vx, vy) estimate in m/s.
func (k *Kalman) Velocity() (vx, vy float64) { return k.x.AtVec(2), k.x.AtVec(3) }

// Package provider implements the single-object facade the external
// runtime holds (spec.md §4.9): it aggregates the locator, every
// per-radar controller, spoke receiver, ARPA processor, guard-zone
// processor and trail store behind one poll()-driven API, and is the
// only mutable state an external caller sees (spec.md §5).
package provider

import (
	"fmt"
	"math"

	"github.com/banshee-data/radar-core/internal/arpa"
	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/config"
	"github.com/banshee-data/radar-core/internal/controller"
	"github.com/banshee-data/radar-core/internal/discovery"
	"github.com/banshee-data/radar-core/internal/guardzone"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/ownship"
	"github.com/banshee-data/radar-core/internal/protocol/common"
	"github.com/banshee-data/radar-core/internal/protocol/garmin"
	"github.com/banshee-data/radar-core/internal/protocol/raymarine"
	"github.com/banshee-data/radar-core/internal/spoke"
	"github.com/banshee-data/radar-core/internal/state"
	"github.com/banshee-data/radar-core/internal/trail"
)

// Control error taxonomy (spec.md §7): these are the only errors
// SetControl and the other mutators surface to the caller; transport and
// protocol errors are always recovered locally first.
type (
	// ErrRadarNotFound is returned when radarID names no provisioned
	// radar.
	ErrRadarNotFound struct{ RadarID string }
	// ErrControlNotFound is returned when the radar's CapabilityManifest
	// has no ControlDefinition for the given id.
	ErrControlNotFound struct{ RadarID, ControlID string }
	// ErrInvalidValue is returned for a value outside its control's
	// domain (spec.md §7: "surfaced as InvalidValue rather than
	// silently clamped").
	ErrInvalidValue struct{ Msg string }
	// ErrControllerNotAvailable is returned when the underlying
	// controller cannot currently accept a command (not yet Connected).
	ErrControllerNotAvailable struct{ RadarID string }
	// ErrControlDisabled is returned when a ControlConstraint currently
	// disables the control (spec.md §7, capability.EvaluateConstraints).
	ErrControlDisabled struct{ ControlID, Reason string }
)

func (e *ErrRadarNotFound) Error() string { return "radar not found: " + e.RadarID }
func (e *ErrControlNotFound) Error() string {
	return fmt.Sprintf("radar %s: control not found: %s", e.RadarID, e.ControlID)
}
func (e *ErrInvalidValue) Error() string { return "invalid value: " + e.Msg }
func (e *ErrControllerNotAvailable) Error() string {
	return "controller not available: " + e.RadarID
}
func (e *ErrControlDisabled) Error() string {
	return fmt.Sprintf("control %s disabled: %s", e.ControlID, e.Reason)
}

// CollisionWarning is surfaced to the runtime when a tracked target's
// CPA/TCPA crosses the configured thresholds (spec.md §6: "the runtime
// receives ... collision-warning notifications (radar-id, target-id,
// state, CPA, TCPA)").
type CollisionWarning struct {
	RadarID   string
	TargetID  int
	Status    arpa.TargetStatus
	CPAMeters float64
	TCPASec   float64
}

// RadarInfo is the provisioned, provider-owned record for one radar
// (spec.md §3 RadarInfo): discovery plus capability manifest, live
// state, and the owning controller/spoke tracker/ARPA/guard-zone/trail
// components. Exclusively owned and mutated by Provider.
type RadarInfo struct {
	ID         string
	Discovery  common.RadarDiscovery
	Manifest   capability.CapabilityManifest
	Controller controller.Controller
	Spoke      *spoke.Receiver
	ARPA       *arpa.Processor
	GuardZones *guardzone.Processor
	Trails     *trail.Store

	pipeline *pipeline
}

// Provider is the single facade object the external runtime holds
// (spec.md §4.9). All mutation happens from Poll or the exported
// setters; re-entrancy into the provider from within Poll is forbidden
// by spec.md §5 and is the caller's responsibility to avoid.
type Provider struct {
	io       ioprovider.IoProvider
	locator  *discovery.Locator
	ownShip  ownship.Source
	install  *config.InstallationConfig
	arpaCfg  arpa.Config
	trailCfg trail.Settings

	radars map[string]*RadarInfo

	pendingWarnings []CollisionWarning
}

// New constructs a Provider. ownShipSource may be nil, in which case
// CPA/TCPA and trail lat/lon are computed against a zero-value fix
// (acceptable for bench/pcap-replay use).
func New(io ioprovider.IoProvider, ownShipSource ownship.Source) *Provider {
	if ownShipSource == nil {
		ownShipSource = &ownship.MockSource{}
	}
	return &Provider{
		io:       io,
		locator:  discovery.New(io),
		ownShip:  ownShipSource,
		install:  config.New(),
		arpaCfg:  arpa.DefaultConfig(),
		trailCfg: trail.DefaultSettings(),
		radars:   make(map[string]*RadarInfo),
	}
}

// Open binds the locator's brand sockets. Call once before the first
// Poll.
func (p *Provider) Open() error { return p.locator.Open() }

// SetInstallationConfig replaces the held installation-settings document
// (spec.md §6).
func (p *Provider) SetInstallationConfig(c *config.InstallationConfig) { p.install = c }

// InstallationConfig returns the held installation-settings document.
func (p *Provider) InstallationConfig() *config.InstallationConfig { return p.install }

// radarID is the provider's external radar identity: brand/name, the
// same pair discovery.go dedups on (spec.md §3 RadarDiscovery: "duplicates
// deduped by brand-name identity").
func radarID(d common.RadarDiscovery) string {
	return d.Brand.String() + "/" + d.Name
}

// Poll drives the locator, every controller, every spoke receiver and
// the ARPA/guard-zone/trail pipelines, and returns the number of work
// units performed (spec.md §4.9: "poll() ... returns count of work
// units").
func (p *Provider) Poll() int {
	units := 0

	p.locator.Poll()
	units++

	for _, d := range p.locator.Known() {
		id := radarID(d)
		if _, ok := p.radars[id]; !ok {
			p.provision(id, d)
			units++
		}
	}

	p.ownShip.Poll(p.io.NowMs())
	ownTrack := trackFromFix(p.ownShip.Fix())

	for _, ri := range p.radars {
		ri.Controller.Poll()
		units++
		if ri.Spoke != nil {
			ri.ARPA.SetOwnShipTrack(ownTrack)
			ri.pipeline.setOwnShip(ownTrack)
			ri.Spoke.Poll()
			units++
		}
		if warn := ri.pipeline.drainWarnings(); len(warn) > 0 {
			p.pendingWarnings = append(p.pendingWarnings, warn...)
		}
	}
	return units
}

// provision instantiates a controller, spoke tracker, ARPA processor,
// guard-zone processor and trail store for a newly discovered radar
// (spec.md §2 "New radars instantiate a controller and a spoke
// tracker").
func (p *Provider) provision(id string, d common.RadarDiscovery) {
	manifest := capability.Lookup(d.Brand, d.Model)

	var ctrl controller.Controller
	var dataAddr string
	var dataPort int

	switch d.Brand {
	case state.BrandFuruno:
		ctrl = controller.NewFuruno(p.io, d.Address, d.Model)
		dataAddr, dataPort = furunoSpokeAddr(d)
	case state.BrandNavico:
		ctrl = controller.NewNavico(p.io, d.Model, capability.IsNavicoHalo(d.Model), 0, d.Address, d.CommandPort)
		dataAddr, dataPort = d.Address, d.DataPort
	case state.BrandRaymarine:
		cmdAddr, cmdPort := d.Address, d.CommandPort
		if cmdPort == 0 {
			cmdAddr, cmdPort = raymarine.CommandAddress, raymarine.CommandPort
		}
		ctrl = controller.NewRaymarine(p.io, d.Model, capability.IsRaymarineRD(d.Model), cmdAddr, cmdPort)
		dataAddr, dataPort = d.Address, d.DataPort
	case state.BrandGarmin:
		cmdPort := d.CommandPort
		if cmdPort == 0 {
			cmdPort = garmin.CommandPort
		}
		ctrl = controller.NewGarmin(p.io, d.Model, d.Address, cmdPort)
		dataAddr, dataPort = d.Address, d.DataPort
	default:
		return
	}

	arpaProc := arpa.NewProcessor(manifest.OutputSpokesPerRevolution, p.arpaCfg)
	guardProc := guardzone.New(manifest.OutputSpokesPerRevolution)
	trails := trail.New(p.trailCfg)

	ri := &RadarInfo{
		ID:         id,
		Discovery:  d,
		Manifest:   manifest,
		Controller: ctrl,
		ARPA:       arpaProc,
		GuardZones: guardProc,
		Trails:     trails,
	}
	ri.pipeline = newPipeline(id, arpaProc, guardProc, trails, p.arpaCfg)

	if dataPort != 0 {
		ri.Spoke = spoke.New(p.io, manifest, dataAddr, dataPort, arpaProc, guardProc, ri.pipeline)
		if err := ri.Spoke.Open(); err != nil {
			p.io.Warnf("provider: spoke receiver open failed for %s: %v", id, err)
		}
	}

	p.radars[id] = ri
}

// furunoSpokeAddr has no dedicated spoke multicast beacon field in
// RadarDiscovery for Furuno (the DataPort/SpokesPerRevolution the
// asynchronous model report enriches are the only hints); the brand's
// actual spoke stream is a unicast UDP feed to the client from the
// radar's own address, so the discovery address doubles as the spoke
// source once DataPort is known.
func furunoSpokeAddr(d common.RadarDiscovery) (string, int) {
	return d.Address, d.DataPort
}

// Radars returns a snapshot of every currently provisioned radar id.
func (p *Provider) Radars() []string {
	out := make([]string, 0, len(p.radars))
	for id := range p.radars {
		out = append(out, id)
	}
	return out
}

func (p *Provider) radar(radarID string) (*RadarInfo, error) {
	ri, ok := p.radars[radarID]
	if !ok {
		return nil, &ErrRadarNotFound{RadarID: radarID}
	}
	return ri, nil
}

// GetState returns a snapshot of a radar's live state (spec.md §4.9).
func (p *Provider) GetState(radarID string) (state.RadarState, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return state.RadarState{}, err
	}
	return ri.Controller.RadarState(), nil
}

// GetCapabilities returns a radar's capability manifest (spec.md §4.9).
func (p *Provider) GetCapabilities(radarID string) (capability.CapabilityManifest, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return capability.CapabilityManifest{}, err
	}
	return ri.Manifest, nil
}

// ConstraintStatus returns the live-evaluated constraint status for one
// control (spec.md SPEC_FULL.md §12: per-call, not static, evaluation).
func (p *Provider) ConstraintStatus(radarID, controlID string) (capability.ConstraintStatus, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return capability.ConstraintStatus{}, err
	}
	return ri.Manifest.EvaluateConstraints(controlID, ri.Controller.RadarState()), nil
}

// SetControl dispatches a generic control set by brand into the
// appropriate controller (spec.md §2, §4.9). It enqueues a wire packet
// and returns success once the packet left the socket (spec.md §5);
// acknowledgement, if the brand's protocol offers one, arrives later in
// the state record.
func (p *Provider) SetControl(radarID, controlID string, value controller.ControlValue) error {
	ri, err := p.radar(radarID)
	if err != nil {
		return err
	}
	def, ok := ri.Manifest.ControlByID(controlID)
	if !ok {
		return &ErrControlNotFound{RadarID: radarID, ControlID: controlID}
	}
	status := ri.Manifest.EvaluateConstraints(controlID, ri.Controller.RadarState())
	if status.Disabled {
		return &ErrControlDisabled{ControlID: controlID, Reason: joinReasons(status.Reasons)}
	}
	if status.ReadOnly {
		return &ErrControlDisabled{ControlID: controlID, Reason: "read-only: " + joinReasons(status.Reasons)}
	}
	if err := validateValue(def, value); err != nil {
		return err
	}
	if controlID == controller.ControlRange {
		if value.Number == nil {
			return &ErrInvalidValue{Msg: "range requires a numeric value"}
		}
		if !ri.Manifest.IsSupportedRange(*value.Number) {
			nearest := ri.Manifest.NearestSupportedRange(*value.Number)
			return &ErrInvalidValue{Msg: fmt.Sprintf("range %vm is not in supported_ranges (nearest: %vm)", *value.Number, nearest)}
		}
	}
	if err := ri.Controller.SetControl(controlID, value); err != nil {
		if _, isUnknown := err.(*controller.ErrUnknownControl); isUnknown {
			return &ErrControlNotFound{RadarID: radarID, ControlID: controlID}
		}
		return &ErrControllerNotAvailable{RadarID: radarID}
	}
	return nil
}

// validateValue checks a value against its ControlDefinition's declared
// domain (spec.md §7: invariant violations "surfaced as InvalidValue
// rather than silently clamped").
func validateValue(def capability.ControlDefinition, v controller.ControlValue) error {
	switch def.Widget {
	case capability.WidgetNumber:
		if v.Number == nil {
			return &ErrInvalidValue{Msg: def.ID + " requires a numeric value"}
		}
		if def.Range != nil && (*v.Number < def.Range.Min || *v.Number > def.Range.Max) {
			return &ErrInvalidValue{Msg: fmt.Sprintf("%s=%v outside [%v,%v]", def.ID, *v.Number, def.Range.Min, def.Range.Max)}
		}
	case capability.WidgetCompound:
		if v.Adjustable != nil {
			if v.Adjustable.Value < 0 || v.Adjustable.Value > 100 {
				return &ErrInvalidValue{Msg: fmt.Sprintf("%s value %d outside [0,100]", def.ID, v.Adjustable.Value)}
			}
		}
	}
	return nil
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "constraint active"
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}

// SetRange is a typed convenience wrapper over SetControl for the "range"
// control; SetControl itself enforces the supported_ranges invariant
// (spec.md §8 testable property: "the post-state range is an element of
// capabilities.supported_ranges"), so both entry points are covered alike.
func (p *Provider) SetRange(radarID string, meters float64) error {
	n := meters
	return p.SetControl(radarID, controller.ControlRange, controller.ControlValue{Number: &n})
}

// --- ARPA operations (spec.md §4.9) ---

// GetTargets returns a snapshot of every ARPA target tracked on radarID.
func (p *Provider) GetTargets(radarID string) ([]*arpa.Target, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return nil, err
	}
	return ri.ARPA.Targets(), nil
}

// AcquireTarget operator-commands a new target at the given polar
// position (spec.md §4.9 "acquire_target(bearing, distance)").
func (p *Provider) AcquireTarget(radarID string, bearingDeg, distanceM float64) (*arpa.Target, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return nil, err
	}
	pos := bearingDistanceToPolar(bearingDeg, distanceM, ri.Manifest, ri.Controller.RadarState())
	return ri.ARPA.AcquireTarget(pos), nil
}

// CancelTarget destroys a tracked target (spec.md §4.9).
func (p *Provider) CancelTarget(radarID string, targetID int) error {
	ri, err := p.radar(radarID)
	if err != nil {
		return err
	}
	ri.ARPA.CancelTarget(targetID)
	return nil
}

// GetArpaSettings returns radarID's ARPA tuning.
func (p *Provider) GetArpaSettings(radarID string) (arpa.Config, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return arpa.Config{}, err
	}
	return ri.pipeline.cfg, nil
}

// SetArpaSettings updates radarID's ARPA tuning for subsequent refreshes.
func (p *Provider) SetArpaSettings(radarID string, cfg arpa.Config) error {
	ri, err := p.radar(radarID)
	if err != nil {
		return err
	}
	ri.pipeline.cfg = cfg
	return nil
}

// DrainCollisionWarnings returns and clears every collision warning
// produced since the last call (spec.md §6).
func (p *Provider) DrainCollisionWarnings() []CollisionWarning {
	out := p.pendingWarnings
	p.pendingWarnings = nil
	return out
}

// --- Guard zone CRUD (spec.md §4.9) ---

func (p *Provider) AddGuardZone(radarID string, z guardzone.Zone) error {
	ri, err := p.radar(radarID)
	if err != nil {
		return err
	}
	ri.GuardZones.AddZone(z)
	return nil
}

func (p *Provider) RemoveGuardZone(radarID string, zoneID int) error {
	ri, err := p.radar(radarID)
	if err != nil {
		return err
	}
	ri.GuardZones.RemoveZone(zoneID)
	return nil
}

func (p *Provider) GuardZones(radarID string) ([]guardzone.Zone, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return nil, err
	}
	return ri.GuardZones.Zones(), nil
}

func (p *Provider) DrainGuardZoneAlerts(radarID string) ([]guardzone.Alert, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return nil, err
	}
	return ri.GuardZones.DrainAlerts(), nil
}

// --- Trail accessors (spec.md §4.9) ---

func (p *Provider) Trail(radarID string, targetID int) ([]trail.Point, error) {
	ri, err := p.radar(radarID)
	if err != nil {
		return nil, err
	}
	return ri.Trails.Trail(targetID), nil
}

func (p *Provider) ClearTrail(radarID string, targetID int) error {
	ri, err := p.radar(radarID)
	if err != nil {
		return err
	}
	ri.Trails.Clear(targetID)
	return nil
}

// --- Dual-range CRUD (spec.md §4.9, §4.4) ---

// DualRangeGroups groups every provisioned Navico radar id by beacon-
// reported serial, so a caller managing a dual-range device can find
// both of its logical sub-radar ids (SPEC_FULL.md §12: "dual-range
// Navico sub-radars sharing one device").
func (p *Provider) DualRangeGroups() map[string][]string {
	groups := make(map[string][]string)
	for id, ri := range p.radars {
		if ri.Discovery.Brand != state.BrandNavico || ri.Discovery.Serial == "" {
			continue
		}
		groups[ri.Discovery.Serial] = append(groups[ri.Discovery.Serial], id)
	}
	return groups
}

// --- Installation config CRUD (spec.md §6, §4.9) ---

func (p *Provider) GetBearingAlignment(radarID string) (float64, error) {
	if _, err := p.radar(radarID); err != nil {
		return 0, err
	}
	return p.install.GetBearingAlignmentDeg(radarID), nil
}

func (p *Provider) SetBearingAlignment(radarID string, deg float64) error {
	if deg < -180 || deg > 180 {
		return &ErrInvalidValue{Msg: fmt.Sprintf("bearingAlignment=%v outside [-180,180]", deg)}
	}
	if _, err := p.radar(radarID); err != nil {
		return err
	}
	p.install.SetBearingAlignmentDeg(radarID, deg)
	n := deg
	return p.SetControl(radarID, controller.ControlBearingAlignment, controller.ControlValue{Number: &n})
}

func (p *Provider) GetAntennaHeight(radarID string) (float64, error) {
	if _, err := p.radar(radarID); err != nil {
		return 0, err
	}
	return p.install.GetAntennaHeightM(radarID), nil
}

func (p *Provider) SetAntennaHeight(radarID string, meters float64) error {
	if meters < 0 || meters > 100 {
		return &ErrInvalidValue{Msg: fmt.Sprintf("antennaHeight=%v outside [0,100]", meters)}
	}
	if _, err := p.radar(radarID); err != nil {
		return err
	}
	p.install.SetAntennaHeightM(radarID, meters)
	n := meters
	return p.SetControl(radarID, controller.ControlAntennaHeight, controller.ControlValue{Number: &n})
}

// Shutdown releases every radar's held sockets.
func (p *Provider) Shutdown() {
	for _, ri := range p.radars {
		ri.Controller.Shutdown()
		if ri.Spoke != nil {
			ri.Spoke.Close()
		}
	}
}

// trackFromFix adapts an ownship.Fix (knots/degrees) to arpa.Track
// (m/s, radians), the units ComputeCPA works in.
func trackFromFix(f ownship.Fix) arpa.Track {
	const metersPerSecondPerKnot = 0.514444
	return arpa.Track{
		LatDeg: f.LatDeg,
		LonDeg: f.LonDeg,
		SOGms:  f.SOGKnots * metersPerSecondPerKnot,
		COGrad: f.COGDeg * math.Pi / 180,
	}
}

// bearingDistanceToPolar converts an operator-supplied bearing/distance
// acquisition request into the radar-native Polar the ARPA processor
// works in.
func bearingDistanceToPolar(bearingDeg, distanceM float64, m capability.CapabilityManifest, st state.RadarState) state.Polar {
	spokesPerRevolution := m.OutputSpokesPerRevolution
	if spokesPerRevolution <= 0 {
		spokesPerRevolution = 1
	}
	angle := state.NormalizeAngle(int(bearingDeg*float64(spokesPerRevolution)/360.0), spokesPerRevolution)
	radius := 0
	if st.RangeM > 0 && m.MaxSpokeLength > 0 {
		radius = int(distanceM / st.RangeM * float64(m.MaxSpokeLength))
	}
	return state.Polar{Angle: angle, Radius: radius}
}

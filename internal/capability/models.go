package capability

import "github.com/banshee-data/radar-core/internal/state"

// furunoRangeTableM is the authoritative Furuno range-index table
// (spec.md §4.2, §8 scenario 4): 17 distinct indices, index 21 the
// minimum (116m), index 19 deliberately out of numeric sequence
// (66672m) between neighboring indices that would otherwise be larger.
// Index is the wire value carried in range-set commands; the map below is
// keyed by that index for lookup, not by meters.
var furunoRangeTableM = map[int]float64{
	21: 116,   // minimum range, special low wire code
	0:  231,
	1:  463,
	2:  926,
	3:  1389,
	4:  1852,  // spec.md §8 scenario 4: meters_to_index(1852) = 4
	5:  2778,
	6:  3704,
	7:  5556,
	8:  7408,
	9:  11112,
	10: 14816,
	11: 22224,
	12: 29632,
	19: 66672, // out-of-sequence wire code (spec.md §8 scenario 4)
	13: 44448,
	14: 88896,
}

// FurunoIndexToMeters maps a wire range index to meters (spec.md §8
// scenario 4: index_to_meters(21) = 116, index_to_meters(19) = 66672).
func FurunoIndexToMeters(index int) (float64, bool) {
	m, ok := furunoRangeTableM[index]
	return m, ok
}

// FurunoMetersToIndex returns the wire index whose meters value is
// closest to the requested value (spec.md §8 scenario 4:
// meters_to_index(1852) = 4).
func FurunoMetersToIndex(meters float64) int {
	bestIdx := 0
	bestDiff := -1.0
	for idx, m := range furunoRangeTableM {
		d := m - meters
		if d < 0 {
			d = -d
		}
		if bestDiff < 0 || d < bestDiff {
			bestIdx, bestDiff = idx, d
		}
	}
	return bestIdx
}

func furunoSupportedRanges() []float64 {
	out := make([]float64, 0, len(furunoRangeTableM))
	for _, m := range furunoRangeTableM {
		out = append(out, m)
	}
	return out
}

// baseControls returns the control surface shared by every brand (spec.md
// §6 generic control surface table); brand controllers add their own
// model-specific extras on top.
func baseControls() []ControlDefinition {
	return []ControlDefinition{
		{ID: "power", Name: "Power", Category: CategoryBase, Widget: WidgetEnum,
			EnumValues: []string{"off", "standby", "transmit"}, Default: "standby"},
		{ID: "range", Name: "Range", Category: CategoryBase, Widget: WidgetNumber, Default: 1852.0},
		{ID: "gain", Name: "Gain", Category: CategoryBase, Widget: WidgetCompound,
			Range: &RangeSpec{Min: 0, Max: 100}, Default: Adjustable{Mode: state.ModeAuto, Value: 50}},
		{ID: "sea", Name: "Sea clutter", Category: CategoryBase, Widget: WidgetCompound,
			Range: &RangeSpec{Min: 0, Max: 100}, Default: Adjustable{Mode: state.ModeAuto, Value: 50}},
		{ID: "rain", Name: "Rain clutter", Category: CategoryBase, Widget: WidgetCompound,
			Range: &RangeSpec{Min: 0, Max: 100}, Default: Adjustable{Mode: state.ModeAuto, Value: 0}},
		{ID: "bearingAlignment", Name: "Bearing alignment", Category: CategoryInstallation, Widget: WidgetNumber,
			Range: &RangeSpec{Min: -180, Max: 180}, Default: 0.0},
		{ID: "antennaHeight", Name: "Antenna height", Category: CategoryInstallation, Widget: WidgetNumber,
			Range: &RangeSpec{Min: 0, Max: 100}, Default: 0.0},
	}
}

// Adjustable is re-exported for manifest default literals above without
// importing state twice at call sites.
type Adjustable = state.Adjustable

// furunoModel builds the capability manifest for a Furuno model. All
// known Furuno models share the same signal-processing/Doppler/no-
// transmit-zone control surface (spec.md §4.4) and the same hardware
// flags: Doppler (Target Analyzer) on, dual-range off.
func furunoModel(model string) CapabilityManifest {
	controls := append(baseControls(),
		ControlDefinition{ID: "noiseReduction", Name: "Noise reduction", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
		ControlDefinition{ID: "interferenceRejection", Name: "Interference rejection", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
		ControlDefinition{ID: "beamSharpening", Name: "RezBoost", Category: CategoryExtended, Widget: WidgetNumber, Range: &RangeSpec{Min: 0, Max: 3}, Default: 0},
		ControlDefinition{ID: "birdMode", Name: "Bird mode", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
		ControlDefinition{ID: "scanSpeed", Name: "Scan speed", Category: CategoryExtended, Widget: WidgetNumber, Range: &RangeSpec{Min: 0, Max: 1}, Default: 0},
		ControlDefinition{ID: "mainBangSuppression", Name: "Main bang suppression", Category: CategoryExtended, Widget: WidgetNumber, Range: &RangeSpec{Min: 0, Max: 100}, Default: 0},
		ControlDefinition{ID: "txChannel", Name: "TX channel", Category: CategoryExtended, Widget: WidgetNumber, Range: &RangeSpec{Min: 0, Max: 3}, Default: 0},
		ControlDefinition{ID: "dopplerMode", Name: "Target Analyzer", Category: CategoryExtended, Widget: WidgetCompound, Default: state.Doppler{}},
		ControlDefinition{ID: "noTransmitZones", Name: "No-transmit zones", Category: CategoryInstallation, Widget: WidgetCompound, Default: []state.NoTransmitZone{}},
	)
	return CapabilityManifest{
		Brand:                     state.BrandFuruno,
		Model:                     model,
		MinRangeM:                 116,
		MaxRangeM:                 88896,
		SupportedRanges:           furunoSupportedRanges(),
		NativeSpokesPerRevolution: 8192,
		OutputSpokesPerRevolution: 2048, // SPEC_FULL.md §13: Furuno decimates 4:1
		MaxSpokeLength:            512,
		DualRange:                 false,
		Doppler:                   true,
		NoTransmitZones:           2,
		Controls:                  controls,
		Constraints: []ControlConstraint{
			{ControlID: "gain", Kind: ConstraintReadOnlyWhen, Reason: "power is off",
				When: func(s state.RadarState) bool { return s.Power == state.PowerOff }},
			{ControlID: "dopplerMode", Kind: ConstraintDisabledWhen, Reason: "radar not transmitting",
				When: func(s state.RadarState) bool { return s.Power != state.PowerTransmit }},
		},
	}
}

// navicoModel builds the manifest for a Navico/HALO radar. Dual-range and
// Doppler are HALO-only properties (spec.md §4.2 "Key Navico facts");
// unknown (not-yet-identified-by-report) sub-radars get the conservative
// BR24-class defaults until a 0x03 report promotes them.
func navicoModel(model string, isHalo bool) CapabilityManifest {
	ranges := []float64{50, 75, 100, 250, 500, 750, 1000, 1500, 2000, 3000, 4000, 6000, 8000, 12000, 16000, 24000, 36000, 48000, 64000, 72000, 96000}
	controls := append(baseControls(),
		ControlDefinition{ID: "noiseReduction", Name: "Noise rejection", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
		ControlDefinition{ID: "interferenceRejection", Name: "Interference rejection", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
	)
	if isHalo {
		controls = append(controls,
			ControlDefinition{ID: "dopplerMode", Name: "VelocityTrack", Category: CategoryExtended, Widget: WidgetCompound, Default: state.Doppler{}},
		)
	}
	return CapabilityManifest{
		Brand:                     state.BrandNavico,
		Model:                     model,
		MinRangeM:                 ranges[0],
		MaxRangeM:                 ranges[len(ranges)-1],
		SupportedRanges:           ranges,
		NativeSpokesPerRevolution: 2048,
		OutputSpokesPerRevolution: 2048,
		MaxSpokeLength:            512,
		DualRange:                 isHalo,
		Doppler:                   isHalo,
		NoTransmitZones:           2,
		Controls:                  controls,
	}
}

// raymarineModel builds the manifest for a Raymarine Quantum or RD-class
// radar. Both share the base control surface; RD adds FTC/tune, Quantum
// adds mode/color-gain (spec.md §4.2 "Key Raymarine facts").
func raymarineModel(model string, isRD bool) CapabilityManifest {
	ranges := []float64{57, 115, 231, 347, 462, 693, 926, 1389, 1852, 2778, 3704, 5556, 7408, 11112, 14816, 22224, 29632, 44448}
	controls := append(baseControls(),
		ControlDefinition{ID: "interferenceRejection", Name: "IR", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
		ControlDefinition{ID: "targetExpansion", Name: "Target expansion", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
	)
	if isRD {
		controls = append(controls,
			ControlDefinition{ID: "ftc", Name: "FTC", Category: CategoryExtended, Widget: WidgetNumber, Range: &RangeSpec{Min: 0, Max: 100}, Default: 0},
			ControlDefinition{ID: "tune", Name: "Tune", Category: CategoryExtended, Widget: WidgetNumber, Range: &RangeSpec{Min: 0, Max: 100}, Default: 50},
		)
	} else {
		controls = append(controls,
			ControlDefinition{ID: "mode", Name: "Mode", Category: CategoryBase, Widget: WidgetEnum, EnumValues: []string{"harbor", "coastal", "offshore", "weather", "bird"}, Default: "harbor"},
			ControlDefinition{ID: "colorGain", Name: "Color gain", Category: CategoryExtended, Widget: WidgetNumber, Range: &RangeSpec{Min: 0, Max: 100}, Default: 50},
		)
	}
	return CapabilityManifest{
		Brand:                     state.BrandRaymarine,
		Model:                     model,
		MinRangeM:                 ranges[0],
		MaxRangeM:                 ranges[len(ranges)-1],
		SupportedRanges:           ranges,
		NativeSpokesPerRevolution: 2048,
		OutputSpokesPerRevolution: 2048,
		MaxSpokeLength:            512,
		NoTransmitZones:           1,
		Controls:                  controls,
	}
}

// garminModel builds the manifest for a Garmin radome/open-array radar,
// discovered by report rather than a dedicated beacon (spec.md §4.2 "Key
// Garmin facts").
func garminModel(model string) CapabilityManifest {
	ranges := []float64{125, 250, 500, 750, 1000, 1500, 2000, 3000, 4000, 6000, 8000, 12000, 16000, 24000, 36000, 48000, 64000, 96000}
	controls := append(baseControls(),
		ControlDefinition{ID: "noiseReduction", Name: "Noise rejection", Category: CategoryExtended, Widget: WidgetBoolean, Default: false},
	)
	return CapabilityManifest{
		Brand:                     state.BrandGarmin,
		Model:                     model,
		MinRangeM:                 ranges[0],
		MaxRangeM:                 ranges[len(ranges)-1],
		SupportedRanges:           ranges,
		NativeSpokesPerRevolution: 1440,
		OutputSpokesPerRevolution: 1440,
		MaxSpokeLength:            512,
		NoTransmitZones:           1,
		Controls:                  controls,
	}
}

// Lookup resolves a (brand, model) pair to its capability manifest. An
// unrecognized model still gets a brand-appropriate conservative default
// manifest (spec.md §4.3: Navico sub-radars start Unknown and get
// promoted once a 0x03 report arrives) rather than failing discovery.
func Lookup(brand state.Brand, model string) CapabilityManifest {
	switch brand {
	case state.BrandFuruno:
		return furunoModel(model)
	case state.BrandNavico:
		return navicoModel(model, isHaloModel(model))
	case state.BrandRaymarine:
		return raymarineModel(model, isRDModel(model))
	case state.BrandGarmin:
		return garminModel(model)
	default:
		return CapabilityManifest{Brand: brand, Model: model}
	}
}

func isHaloModel(model string) bool {
	switch model {
	case "HALO20", "HALO20+", "HALO24", "HALO3", "HALO4", "HALO6":
		return true
	default:
		return false
	}
}

func isRDModel(model string) bool {
	switch model {
	case "RD218", "RD424", "RD418D":
		return true
	default:
		return false
	}
}

// IsNavicoHalo exposes the HALO-model test so callers outside this
// package (the provider facade, choosing which controller constructor
// arguments to pass) don't need to duplicate the model list (spec.md
// §4.2: "Dual-range and Doppler capability are properties of HALO
// only").
func IsNavicoHalo(model string) bool { return isHaloModel(model) }

// IsRaymarineRD exposes the RD-family-model test the same way (spec.md
// §4.2: "Quantum and RD families ... share the same control surface
// ... RD has additional FTC and tune controls").
func IsRaymarineRD(model string) bool { return isRDModel(model) }

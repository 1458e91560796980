// Command track-plot is an offline debugging tool: it replays a recorded
// pcap capture of one radar's spoke multicast stream through the same
// spoke-decimation, ARPA-acquisition and trail-sampling pipeline the live
// core uses, then renders every acquired target's bearing-over-time trail
// into one PNG. Modeled on the teacher's internal/lidar/monitor.GridPlotter,
// which plots per-ring background/foreground series to PNG with
// gonum.org/v1/plot (_examples/banshee-data-velocity.report/internal/
// lidar/monitor/gridplotter.go); track-plot plots per-target series
// instead of per-ring ones.
//
// Build with -tags pcap; it links pcapreplay, which links libpcap.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/radar-core/internal/arpa"
	"github.com/banshee-data/radar-core/internal/capability"
	"github.com/banshee-data/radar-core/internal/ioprovider"
	"github.com/banshee-data/radar-core/internal/ioprovider/pcapreplay"
	"github.com/banshee-data/radar-core/internal/spoke"
	"github.com/banshee-data/radar-core/internal/state"
	"github.com/banshee-data/radar-core/internal/trail"
)

var (
	pcapFile  = flag.String("pcap", "", "pcap capture of the radar's spoke multicast stream (required)")
	udpPort   = flag.Int("udp-port", 0, "UDP port the spoke stream was captured on (required)")
	brandFlag = flag.String("brand", "furuno", "radar brand: furuno, navico, raymarine, garmin")
	model     = flag.String("model", "", "radar model string, passed to capability.Lookup")
	outDir    = flag.String("out", "track-plot-output", "directory to write the target-trail PNG into")
)

func parseBrand(s string) (state.Brand, error) {
	switch s {
	case "furuno":
		return state.BrandFuruno, nil
	case "navico":
		return state.BrandNavico, nil
	case "raymarine":
		return state.BrandRaymarine, nil
	case "garmin":
		return state.BrandGarmin, nil
	default:
		return 0, fmt.Errorf("unknown brand %q", s)
	}
}

// recordingConsumer appends every non-lost target's bearing/distance to
// its trail once per revolution, keyed by target id, the input to the
// per-target series plotted below.
type recordingConsumer struct {
	arpaProc *arpa.Processor
	trails   *trail.Store

	lastSpokeIndex int
	frame          int
}

func (rc *recordingConsumer) OnSpoke(sp state.Spoke) {
	if rc.lastSpokeIndex >= 0 && sp.SpokeIndex < rc.lastSpokeIndex {
		rc.frame++
		rc.arpaProc.Refresh(0.5) // assume a steady rotation rate offline
		for _, t := range rc.arpaProc.Targets() {
			if t.Status == arpa.StatusLost {
				continue
			}
			bearingDeg, distanceM := rc.arpaProc.TargetBearingDistance(t)
			rc.trails.Append(t.ID, trail.Point{
				TimestampMs: int64(rc.frame) * 500,
				BearingDeg:  bearingDeg,
				DistanceM:   distanceM,
			})
		}
	}
	rc.lastSpokeIndex = sp.SpokeIndex
}

func main() {
	flag.Parse()
	if *pcapFile == "" || *udpPort == 0 {
		log.Fatal("track-plot: -pcap and -udp-port are required")
	}

	brand, err := parseBrand(*brandFlag)
	if err != nil {
		log.Fatalf("track-plot: %v", err)
	}
	manifest := capability.Lookup(brand, *model)

	packets, err := pcapreplay.LoadUDPPackets(*pcapFile, *udpPort)
	if err != nil {
		log.Fatalf("track-plot: load pcap: %v", err)
	}
	log.Printf("track-plot: loaded %d UDP datagrams from %s", len(packets), *pcapFile)

	io := ioprovider.NewMock()
	sock, err := io.Bind(*udpPort)
	if err != nil {
		log.Fatalf("track-plot: bind mock socket: %v", err)
	}
	mockSock := sock.(*ioprovider.MockUDPSocket)
	for _, p := range packets {
		mockSock.Enqueue(p.Data, p.SrcAddr, p.SrcPort)
	}

	arpaProc := arpa.NewProcessor(manifest.OutputSpokesPerRevolution, arpa.DefaultConfig())
	trails := trail.New(trail.Settings{MaxPoints: 4096, MaxAgeSecs: 0})
	rc := &recordingConsumer{arpaProc: arpaProc, trails: trails, lastSpokeIndex: -1}

	receiver := spoke.New(io, manifest, "0.0.0.0", *udpPort, arpaProc, rc)
	if err := receiver.Open(); err != nil {
		log.Fatalf("track-plot: open receiver: %v", err)
	}
	receiver.Poll()
	log.Printf("track-plot: replayed %d revolutions, acquired %d targets", rc.frame, len(arpaProc.Targets()))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("track-plot: mkdir %s: %v", *outDir, err)
	}
	n, err := plotTargets(arpaProc, trails, *outDir)
	if err != nil {
		log.Fatalf("track-plot: %v", err)
	}
	log.Printf("track-plot: wrote %d plot(s) to %s", n, *outDir)
}

// plotTargets renders a single bearing-over-time PNG with one line per
// acquired target, following gridplotter.go's pattern of one plot.New() +
// plotter.NewLine per series, legend top-right, saved at 14x6in.
func plotTargets(arpaProc *arpa.Processor, trails *trail.Store, outDir string) (int, error) {
	targets := arpaProc.Targets()
	if len(targets) == 0 {
		return 0, nil
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].ID < targets[j].ID })

	p := plot.New()
	p.Title.Text = "Target bearing over time"
	p.X.Label.Text = "Frame (revolution)"
	p.Y.Label.Text = "Bearing (deg)"

	colors := targetColors(len(targets))
	plotted := 0
	for i, t := range targets {
		pts := trails.Trail(t.ID)
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j] = plotter.XY{X: float64(pt.TimestampMs) / 500.0, Y: pt.BearingDeg}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return plotted, err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("target %d", t.ID), line)
		plotted++
	}
	if plotted == 0 {
		return 0, nil
	}
	p.Legend.Top = true
	p.Legend.Left = false

	out := filepath.Join(outDir, "targets_bearing.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, out); err != nil {
		return plotted, fmt.Errorf("save %s: %w", out, err)
	}
	return plotted, nil
}

func targetColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(max(n, 1))
		colors[i] = hslColor(hue)
	}
	return colors
}

func hslColor(hue float64) color.Color {
	r, g, b := hslToRGB(hue, 0.7, 0.5)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	rf := hueToRGB(p, q, h+1.0/3.0)
	gf := hueToRGB(p, q, h)
	bf := hueToRGB(p, q, h-1.0/3.0)
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}


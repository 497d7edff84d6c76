package graphbuilder

import (
	"fmt"
	"sort"

	"github.com/fluxreel/corecut/internal/resolver"
	"github.com/fluxreel/corecut/internal/timeline"
)

// AssetMeta describes the properties of an asset needed to decide
// composition mode and tone-mapping — looked up by the caller from the
// asset catalog, which this package has no dependency on.
type AssetMeta struct {
	AssetID         string
	IsScientific    bool
	VolumetricRole  string // "Density", "Color", or ""
	ChannelBand     string // named filter band for multi-channel composites
	Median          float64
	P99             float64
	HasP99          bool
	Max             float64
}

// sourceProps builds the fixed property set every source node carries.
func sourceProps(rc resolver.ResolvedClip) map[string]interface{} {
	return map[string]interface{}{
		"asset_id":             rc.AssetID,
		"source_start_seconds": rc.SourceRange.Start.ToSeconds(),
		"duration_seconds":     rc.SourceRange.Duration.ToSeconds(),
	}
}

// toneMapProps computes the black/white-point/gamma tone-map parameters per
// spec: black_point = median*8, white_point = (p99 or max)*8, gamma=2.8,
// with the white<=black safety clamp.
func toneMapProps(m AssetMeta) map[string]interface{} {
	black := m.Median * 8
	var white float64
	if m.HasP99 {
		white = m.P99 * 8
	} else {
		white = m.Max * 8
	}
	if white <= black {
		white = black + 1
	}
	return map[string]interface{}{
		"black_point": black,
		"white_point": white,
		"gamma":       2.8,
	}
}

// Build compiles a single resolved segment into a render graph, choosing
// composition mode per spec.md §4.5: sequence mode by default, including a
// track that is transitioning; stack mode when a track has more than one
// active clip and the active assets form a Density/Color pair or include
// more than one scientific asset.
func Build(seg resolver.Segment, assets map[string]AssetMeta) (*Graph, error) {
	g := newGraph()

	maxActivePerTrack := 0
	byTrack := make(map[int][]resolver.ResolvedClip)
	for _, rc := range seg.ActiveClips {
		byTrack[rc.TrackIndex] = append(byTrack[rc.TrackIndex], rc)
		if len(byTrack[rc.TrackIndex]) > maxActivePerTrack {
			maxActivePerTrack = len(byTrack[rc.TrackIndex])
		}
	}

	if maxActivePerTrack > 1 {
		density, color, scientific := false, false, 0
		for _, rc := range seg.ActiveClips {
			meta := assets[rc.AssetID]
			density = density || meta.VolumetricRole == "Density"
			color = color || meta.VolumetricRole == "Color"
			if meta.IsScientific {
				scientific++
			}
		}
		if (density && color) || scientific > 1 {
			return buildStack(g, seg, assets)
		}
	}
	return buildSequence(g, seg, assets)
}

// buildSequence wires the highest-track-index clip directly to Output, or
// chains transition nodes pairwise in temporal order when a track is
// transitioning.
func buildSequence(g *Graph, seg resolver.Segment, assets map[string]AssetMeta) (*Graph, error) {
	transitioning := findTransitioningTrack(seg)

	if transitioning == -1 {
		rc, err := highestTrackClip(seg)
		if err != nil {
			return nil, err
		}
		return wireSingleSource(g, rc, assets, seg.Transition)
	}

	clips := sortedByTrack(seg, transitioning)
	if len(clips) < 2 {
		return wireSingleSource(g, clips[0], assets, seg.Transition)
	}

	transType := "dissolve"
	if seg.Transition != nil && seg.Transition.Type == timeline.Wipe {
		transType = "wipe"
	}

	prevOutputNode, prevOutputPort, err := addSourceWithToneMap(g, clips[0], assets, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(clips); i++ {
		srcNode, srcPort, err := addSourceWithToneMap(g, clips[i], assets, i)
		if err != nil {
			return nil, err
		}
		transID := fmt.Sprintf("transition_%d", i)
		tn, err := NewNode(transID, "transition", map[string]interface{}{"kind": transType})
		if err != nil {
			return nil, err
		}
		g.AddNode(tn)
		if err := g.Connect(prevOutputNode, prevOutputPort, transID, "a"); err != nil {
			return nil, err
		}
		if err := g.Connect(srcNode, srcPort, transID, "b"); err != nil {
			return nil, err
		}
		prevOutputNode, prevOutputPort = transID, "out"
	}

	out, err := NewNode("output", "output", nil)
	if err != nil {
		return nil, err
	}
	g.AddNode(out)
	if err := g.Connect(prevOutputNode, prevOutputPort, "output", "in"); err != nil {
		return nil, err
	}
	g.OutputID = "output"
	return g, nil
}

// buildStack composites every active clip additively. Paired Density/Color
// volumetric assets get a dedicated composite node; multiple scientific
// assets get a multi-channel composite with a palette, followed by an ACES
// output node.
func buildStack(g *Graph, seg resolver.Segment, assets map[string]AssetMeta) (*Graph, error) {
	var densityClip, colorClip *resolver.ResolvedClip
	var scientificClips []resolver.ResolvedClip

	for i := range seg.ActiveClips {
		rc := seg.ActiveClips[i]
		meta := assets[rc.AssetID]
		switch meta.VolumetricRole {
		case "Density":
			densityClip = &seg.ActiveClips[i]
		case "Color":
			colorClip = &seg.ActiveClips[i]
		}
		if meta.IsScientific {
			scientificClips = append(scientificClips, rc)
		}
	}

	if densityClip != nil && colorClip != nil {
		densityNode, densityPort, err := addSourceWithToneMap(g, *densityClip, assets, 0)
		if err != nil {
			return nil, err
		}
		colorNode, colorPort, err := addSourceWithToneMap(g, *colorClip, assets, 1)
		if err != nil {
			return nil, err
		}
		vn, err := NewNode("volumetric", "volumetric", nil)
		if err != nil {
			return nil, err
		}
		g.AddNode(vn)
		if err := g.Connect(densityNode, densityPort, "volumetric", "Density"); err != nil {
			return nil, err
		}
		if err := g.Connect(colorNode, colorPort, "volumetric", "Color"); err != nil {
			return nil, err
		}
		return finishWithOutput(g, "volumetric", "out")
	}

	if len(scientificClips) > 1 {
		mc, err := NewNode("multichannel", "multichannel", nil)
		if err != nil {
			return nil, err
		}
		g.AddNode(mc)
		for i, rc := range scientificClips {
			meta := assets[rc.AssetID]
			band := meta.ChannelBand
			if band == "" {
				band = fmt.Sprintf("band_%d", i)
			}
			srcNode, srcPort, err := addSourceWithToneMap(g, rc, assets, i)
			if err != nil {
				return nil, err
			}
			mc.Inputs[band] = Port{Name: band, Kind: PortImage}
			if err := g.Connect(srcNode, srcPort, "multichannel", band); err != nil {
				return nil, err
			}
		}
		aces, err := NewNode("aces", "acesOutput", nil)
		if err != nil {
			return nil, err
		}
		g.AddNode(aces)
		if err := g.Connect("multichannel", "out", "aces", "in"); err != nil {
			return nil, err
		}
		return finishWithOutput(g, "aces", "out")
	}

	comp, err := NewNode("composite", "composite", nil)
	if err != nil {
		return nil, err
	}
	g.AddNode(comp)
	for i, rc := range seg.ActiveClips {
		srcNode, srcPort, err := addSourceWithToneMap(g, rc, assets, i)
		if err != nil {
			return nil, err
		}
		portName := fmt.Sprintf("layer_%d", i)
		comp.Inputs[portName] = Port{Name: portName, Kind: PortImage}
		if err := g.Connect(srcNode, srcPort, "composite", portName); err != nil {
			return nil, err
		}
	}
	return finishWithOutput(g, "composite", "out")
}

func finishWithOutput(g *Graph, fromNode, fromPort string) (*Graph, error) {
	out, err := NewNode("output", "output", nil)
	if err != nil {
		return nil, err
	}
	g.AddNode(out)
	if err := g.Connect(fromNode, fromPort, "output", "in"); err != nil {
		return nil, err
	}
	g.OutputID = "output"
	return g, nil
}

func wireSingleSource(g *Graph, rc resolver.ResolvedClip, assets map[string]AssetMeta, _ interface{}) (*Graph, error) {
	srcNode, srcPort, err := addSourceWithToneMap(g, rc, assets, 0)
	if err != nil {
		return nil, err
	}
	return finishWithOutput(g, srcNode, srcPort)
}

// addSourceWithToneMap adds a source node for rc and, when its asset is
// scientific, an intervening tone-map node; returns the ID/port pair that
// downstream consumers should connect to.
func addSourceWithToneMap(g *Graph, rc resolver.ResolvedClip, assets map[string]AssetMeta, ordinal int) (string, string, error) {
	srcID := fmt.Sprintf("source_%s_%d", rc.ClipID, ordinal)
	sn, err := NewNode(srcID, "source", sourceProps(rc))
	if err != nil {
		return "", "", err
	}
	g.AddNode(sn)

	meta, ok := assets[rc.AssetID]
	if !ok || !meta.IsScientific {
		return srcID, "out", nil
	}

	tmID := fmt.Sprintf("tonemap_%s_%d", rc.ClipID, ordinal)
	tm, err := NewNode(tmID, "toneMap", toneMapProps(meta))
	if err != nil {
		return "", "", err
	}
	g.AddNode(tm)
	if err := g.Connect(srcID, "out", tmID, "in"); err != nil {
		return "", "", err
	}
	return tmID, "out", nil
}

func findTransitioningTrack(seg resolver.Segment) int {
	byTrack := make(map[int]int)
	for _, rc := range seg.ActiveClips {
		byTrack[rc.TrackIndex]++
	}
	indices := make([]int, 0, len(byTrack))
	for idx := range byTrack {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		if byTrack[idx] > 1 {
			return idx
		}
	}
	return -1
}

func highestTrackClip(seg resolver.Segment) (resolver.ResolvedClip, error) {
	if len(seg.ActiveClips) == 0 {
		return resolver.ResolvedClip{}, fmt.Errorf("graphbuilder: empty segment")
	}
	best := seg.ActiveClips[0]
	for _, rc := range seg.ActiveClips[1:] {
		if rc.TrackIndex > best.TrackIndex {
			best = rc
		}
	}
	return best, nil
}

func sortedByTrack(seg resolver.Segment, trackIndex int) []resolver.ResolvedClip {
	var clips []resolver.ResolvedClip
	for _, rc := range seg.ActiveClips {
		if rc.TrackIndex == trackIndex {
			clips = append(clips, rc)
		}
	}
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].SourceRange.Start.ToSeconds() < clips[j].SourceRange.Start.ToSeconds()
	})
	return clips
}

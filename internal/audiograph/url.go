package audiograph

import (
	"net/url"
	"strconv"
)

// SourceKind identifies a procedural generator.
type SourceKind int

const (
	KindSine SourceKind = iota
	KindSweep
	KindWhiteNoise
	KindPinkNoise
	KindImpulse
)

// SourceSpec is the typed result of parsing a ligm://audio/<kind>?params
// URL — every field a generator might need, zero-valued when unused by the
// resolved kind.
type SourceSpec struct {
	Kind            SourceKind
	Freq            float64 // sine
	SweepStart      float64
	SweepEnd        float64
	SweepDuration   float64
	ImpulseInterval float64
}

// ParseSourceURL parses a ligm://audio/<kind>?params... URI. An unknown
// scheme, host, or kind deterministically falls back to sine(1000) per the
// procedural-source determinism rule — callers must never see a parse
// failure change output between runs.
func ParseSourceURL(raw string) SourceSpec {
	fallback := SourceSpec{Kind: KindSine, Freq: 1000}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "ligm" || u.Host != "audio" {
		return fallback
	}

	kind := trimLeadingSlash(u.Path)
	q := u.Query()

	switch kind {
	case "sine":
		return SourceSpec{Kind: KindSine, Freq: queryFloat(q, "freq", 1000)}
	case "sweep":
		return SourceSpec{
			Kind:          KindSweep,
			SweepStart:    queryFloat(q, "start", 200),
			SweepEnd:      queryFloat(q, "end", 2000),
			SweepDuration: queryFloat(q, "duration", 1),
		}
	case "white_noise":
		return SourceSpec{Kind: KindWhiteNoise}
	case "pink_noise":
		return SourceSpec{Kind: KindPinkNoise}
	case "impulse":
		return SourceSpec{Kind: KindImpulse, ImpulseInterval: queryFloat(q, "interval", 1)}
	default:
		return fallback
	}
}

func trimLeadingSlash(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p[1:]
	}
	return p
}

func queryFloat(q url.Values, key string, def float64) float64 {
	v := q.Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

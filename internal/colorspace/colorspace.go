// Package colorspace converts between ACEScg, CIE XYZ, and CIELAB, and
// computes the CIEDE2000 perceptual color difference between two LAB
// values. Matrices and constants are pinned to the values the shader
// reference implementation uses, so results stay within the ΔE2000 <
// 0.06 equivalence target.
package colorspace

import (
	"math"

	"github.com/golang/geo/r3"
)

// D60 white point in CIE XYZ, the reference illuminant ACEScg is defined
// against.
var d60WhitePoint = r3.Vector{X: 0.95265, Y: 1.0, Z: 1.00883}

// acesCgToXYZ is the fixed ACEScg → CIE XYZ matrix (AP1 primaries, D60
// white point).
var acesCgToXYZ = [3][3]float64{
	{0.6624541811, 0.1340042065, 0.1561876870},
	{0.2722287168, 0.6740817658, 0.0536895174},
	{-0.0055746495, 0.0040607335, 1.0103391003},
}

// xyzToACEScg is the inverse of acesCgToXYZ.
var xyzToACEScg = [3][3]float64{
	{1.6410233797, -0.3248032942, -0.2364246952},
	{-0.6636628587, 1.6153315917, 0.0167563477},
	{0.0117218943, -0.0082844420, 0.9883948585},
}

func mulMatVec(m [3][3]float64, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// ACEScgToXYZ converts a linear ACEScg color triplet to CIE XYZ.
func ACEScgToXYZ(c r3.Vector) r3.Vector {
	return mulMatVec(acesCgToXYZ, c)
}

// XYZToACEScg converts a CIE XYZ triplet back to linear ACEScg.
func XYZToACEScg(xyz r3.Vector) r3.Vector {
	return mulMatVec(xyzToACEScg, xyz)
}

const kappa = 24389.0 / 27.0
const epsilon = 216.0 / 24389.0

// f is the CIELAB nonlinearity, piecewise cube-root/linear per spec.
func f(t float64) float64 {
	if t > epsilon {
		return math.Cbrt(t)
	}
	return (kappa*t + 16) / 116
}

func finv(t float64) float64 {
	t3 := t * t * t
	if t3 > epsilon {
		return t3
	}
	return (116*t - 16) / kappa
}

// LAB is a CIELAB color value.
type LAB struct {
	L, A, B float64
}

// XYZToLAB converts CIE XYZ (relative to D60) to CIELAB.
func XYZToLAB(xyz r3.Vector) LAB {
	fx := f(xyz.X / d60WhitePoint.X)
	fy := f(xyz.Y / d60WhitePoint.Y)
	fz := f(xyz.Z / d60WhitePoint.Z)
	return LAB{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// LABToXYZ converts CIELAB back to CIE XYZ relative to D60.
func LABToXYZ(lab LAB) r3.Vector {
	fy := (lab.L + 16) / 116
	fx := fy + lab.A/500
	fz := fy - lab.B/200
	return r3.Vector{
		X: finv(fx) * d60WhitePoint.X,
		Y: finv(fy) * d60WhitePoint.Y,
		Z: finv(fz) * d60WhitePoint.Z,
	}
}

// ACEScgToLAB is the convenience round trip for comparing two
// working-space colors perceptually.
func ACEScgToLAB(c r3.Vector) LAB {
	return XYZToLAB(ACEScgToXYZ(c))
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
func radians(deg float64) float64 { return deg * math.Pi / 180 }

// DeltaE2000 computes the CIEDE2000 color difference between two LAB
// values, following the standard ΔL′, ΔC′, ΔH′ decomposition with the
// rotation term.
func DeltaE2000(lab1, lab2 LAB) float64 {
	const kL, kC, kH = 1.0, 1.0, 1.0

	c1 := math.Hypot(lab1.A, lab1.B)
	c2 := math.Hypot(lab2.A, lab2.B)
	cBar := (c1 + c2) / 2

	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+math.Pow(25, 7))))

	a1p := lab1.A * (1 + g)
	a2p := lab2.A * (1 + g)

	c1p := math.Hypot(a1p, lab1.B)
	c2p := math.Hypot(a2p, lab2.B)

	h1p := hueAngle(a1p, lab1.B)
	h2p := hueAngle(a2p, lab2.B)

	deltaLp := lab2.L - lab1.L
	deltaCp := c2p - c1p

	var deltahp float64
	switch {
	case c1p*c2p == 0:
		deltahp = 0
	case math.Abs(h1p-h2p) <= 180:
		deltahp = h2p - h1p
	case h2p <= h1p:
		deltahp = h2p - h1p + 360
	default:
		deltahp = h2p - h1p - 360
	}
	deltaHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(deltahp)/2)

	lBarp := (lab1.L + lab2.L) / 2
	cBarp := (c1p + c2p) / 2

	var hBarp float64
	switch {
	case c1p*c2p == 0:
		hBarp = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hBarp = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hBarp = (h1p + h2p + 360) / 2
	default:
		hBarp = (h1p + h2p - 360) / 2
	}

	t := 1 - 0.17*math.Cos(radians(hBarp-30)) +
		0.24*math.Cos(radians(2*hBarp)) +
		0.32*math.Cos(radians(3*hBarp+6)) -
		0.20*math.Cos(radians(4*hBarp-63))

	deltaTheta := 30 * math.Exp(-math.Pow((hBarp-275)/25, 2))
	cBarp7 := math.Pow(cBarp, 7)
	rC := 2 * math.Sqrt(cBarp7/(cBarp7+math.Pow(25, 7)))
	sL := 1 + (0.015*math.Pow(lBarp-50, 2))/math.Sqrt(20+math.Pow(lBarp-50, 2))
	sC := 1 + 0.045*cBarp
	sH := 1 + 0.015*cBarp*t
	rT := -math.Sin(radians(2*deltaTheta)) * rC

	termL := deltaLp / (kL * sL)
	termC := deltaCp / (kC * sC)
	termH := deltaHp / (kH * sH)

	return math.Sqrt(termL*termL + termC*termC + termH*termH + rT*termC*termH)
}

func hueAngle(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := degrees(math.Atan2(b, a))
	if h < 0 {
		h += 360
	}
	return h
}

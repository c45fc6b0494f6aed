package controls

import "math"

// KelvinFromMireds converts a colour temperature from mireds to Kelvin,
// rounded to the nearest whole Kelvin. Mireds are the wire unit; Kelvin
// is what people read on a slider.
func KelvinFromMireds(mireds float64) int {
	if mireds <= 0 {
		return 0
	}
	return int(math.Round(1_000_000 / mireds))
}

// MiredsFromKelvin converts back for outbound commands, so the hub
// keeps seeing the unit its light integrations expect.
func MiredsFromKelvin(kelvin int) float64 {
	if kelvin <= 0 {
		return 0
	}
	return math.Round(1_000_000 / float64(kelvin))
}

// HSToRGB converts hue (degrees, 0..360) and saturation (percent,
// 0..100) at full value to an 8-bit RGB triple, for colour swatch
// previews.
func HSToRGB(hue, sat float64) (r, g, b uint8) {
	h := math.Mod(hue, 360) / 60
	s := clamp(sat/100, 0, 1)
	v := 1.0

	i := int(h)
	f := h - float64(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var rf, gf, bf float64
	switch i % 6 {
	case 0:
		rf, gf, bf = v, t, p
	case 1:
		rf, gf, bf = q, v, p
	case 2:
		rf, gf, bf = p, v, t
	case 3:
		rf, gf, bf = p, q, v
	case 4:
		rf, gf, bf = t, p, v
	default:
		rf, gf, bf = v, p, q
	}
	return uint8(math.Round(rf * 255)), uint8(math.Round(gf * 255)), uint8(math.Round(bf * 255))
}

// RGBToHS converts an 8-bit RGB triple to hue and saturation, the
// inverse used when a light only reports rgb_color.
func RGBToHS(r, g, b uint8) (hue, sat float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	d := max - min

	if d == 0 {
		hue = 0
	} else {
		switch max {
		case rf:
			hue = 60 * math.Mod((gf-bf)/d, 6)
		case gf:
			hue = 60 * ((bf-rf)/d + 2)
		default:
			hue = 60 * ((rf-gf)/d + 4)
		}
	}
	if hue < 0 {
		hue += 360
	}

	if max > 0 {
		sat = d / max * 100
	}
	return hue, sat
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

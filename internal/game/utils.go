package game

import (
	"fmt"
	"image/color"
	"math"
	"time"
)

// hueColor converts hue (degrees, any range), saturation and value (0-1) to
// an opaque colour.
func hueColor(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	sector := math.Floor(h / 60)
	f := h/60 - sector
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(sector) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 255}
}

func channel(x float64) uint8 { return uint8(math.Round(clamp01(x) * 255)) }

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

// withOpacity scales a colour's alpha (and its premultiplied channels) by a.
func withOpacity(c color.Color, a float64) color.RGBA {
	a = clamp01(a)
	r, g, b, al := c.RGBA()
	return color.RGBA{
		R: uint8(float64(r>>8) * a),
		G: uint8(float64(g>>8) * a),
		B: uint8(float64(b>>8) * a),
		A: uint8(float64(al>>8) * a),
	}
}

// uptime renders d as MM:SS, or H:MM:SS past the first hour.
func uptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

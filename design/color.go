package design

import (
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B int
}

var namedColors = map[string]RGB{
	"black":  {0, 0, 0},
	"white":  {255, 255, 255},
	"red":    {255, 0, 0},
	"green":  {0, 128, 0},
	"blue":   {0, 0, 255},
	"yellow": {255, 255, 0},
	"gray":   {128, 128, 128},
	"grey":   {128, 128, 128},
	"silver": {192, 192, 192},
	"gold":   {255, 215, 0},
	"navy":   {0, 0, 128},
	"orange": {255, 165, 0},
}

// ParseColor parses "#rgb", "#rrggbb", "rgb(r,g,b)", "rgba(r,g,b,a)" and a
// handful of CSS names. It returns the color, its alpha in [0,1], and false
// when s is empty, "none", "transparent" or unparseable.
func ParseColor(s string) (RGB, float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "none" || s == "transparent":
		return RGB{}, 0, false
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return RGB{}, 0, false
		}
		r, g, b := c.RGB255()
		return RGB{int(r), int(g), int(b)}, 1, true
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	c, ok := namedColors[s]
	return c, 1, ok
}

func parseRGBFunc(s string) (RGB, float64, bool) {
	lp, rp := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if lp < 0 || rp < lp {
		return RGB{}, 0, false
	}
	parts := strings.Split(s[lp+1:rp], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return RGB{}, 0, false
	}
	var ch [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return RGB{}, 0, false
		}
		ch[i] = v
	}
	alpha := 1.0
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return RGB{}, 0, false
		}
		alpha = a
	}
	if alpha == 0 {
		return RGB{}, 0, false
	}
	return RGB{ch[0], ch[1], ch[2]}, alpha, true
}

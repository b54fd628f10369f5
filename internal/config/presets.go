package config

import (
	"sort"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/view"
)

// Preset is a named place worth zooming into.
type Preset struct {
	Description string
	X, Y        float64
	Mag         float64
	Iters       uint32
}

func (p *Preset) Transform() view.Transform {
	return view.Transform{
		Mag: dd.FromFloat(p.Mag),
		X:   dd.FromFloat(p.X),
		Y:   dd.FromFloat(p.Y),
	}
}

var Presets = map[string]*Preset{
	"home": {
		Description: "the whole set",
		X:           -0.5, Y: 0, Mag: 0.5, Iters: view.DefaultIters,
	},
	"seahorse": {
		Description: "seahorse valley spiral",
		X:           -0.743643887037151, Y: 0.131825904205330, Mag: 100, Iters: 3000,
	},
	"elephant": {
		Description: "elephant valley",
		X:           0.2549870375144766, Y: -0.0005679790528465, Mag: 50, Iters: 3000,
	},
	"minibrot": {
		Description: "period-3 minibrot on the real axis",
		X:           -1.7497591451303665, Y: 0, Mag: 20, Iters: 5000,
	},
	"spiral": {
		Description: "double spiral near the main cardioid",
		X:           -0.7746806106269039, Y: -0.1374168856037867, Mag: 1000, Iters: 6000,
	},
	"dendrite": {
		Description: "Misiurewicz point c = i",
		X:           0, Y: 1, Mag: 10, Iters: 3000,
	},
}

func GetPreset(name string) *Preset {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package cssom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strconv"
	"strings"

	"github.com/npillmayer/restyle"
	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/tyse/core/dimen"
)

// Device describes the rendering target: its media type and viewport
// size, and the animation names the target's styles reference. It
// implements interface invalidation.Device.
//
// Supported media queries are media types (all/screen/print), 'not' and
// 'only' prefixes, and width/height features with min-/max- variants.
// Unsupported feature syntax evaluates to true, erring towards
// invalidation.
type Device struct {
	mediaType  string
	viewport   dimen.Point
	animations map[restyle.Atom]struct{}
}

// NewDevice creates a device with a media type ("screen", "print") and a
// viewport size.
func NewDevice(mediaType string, width, height dimen.DU) *Device {
	return &Device{
		mediaType: strings.ToLower(mediaType),
		viewport:  dimen.Point{X: width, Y: height},
	}
}

var _ invalidation.Device = &Device{}

// RegisterAnimationName notes an animation name as referenced by some
// style rule's animation-name property.
func (d *Device) RegisterAnimationName(name restyle.Atom) {
	if d.animations == nil {
		d.animations = make(map[restyle.Atom]struct{})
	}
	d.animations[name.Lower()] = struct{}{}
}

// AnimationNameMayBeReferenced is part of interface invalidation.Device.
// Without a registry every name may be referenced.
func (d *Device) AnimationNameMayBeReferenced(name restyle.Atom) bool {
	if d.animations == nil {
		return true
	}
	_, ok := d.animations[name.Lower()]
	return ok
}

// MediaQueryMatches is part of interface invalidation.Device. The empty
// query matches unconditionally; a comma-separated list matches if any of
// its queries does.
func (d *Device) MediaQueryMatches(query string) bool {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return true
	}
	for _, q := range strings.Split(query, ",") {
		if d.matchesQuery(strings.TrimSpace(q)) {
			return true
		}
	}
	return false
}

func (d *Device) matchesQuery(q string) bool {
	negate := false
	if rest, ok := cutPrefixWord(q, "not"); ok {
		negate = true
		q = rest
	} else if rest, ok := cutPrefixWord(q, "only"); ok {
		q = rest
	}
	matches := true
	for _, term := range strings.Split(q, " and ") {
		if !d.matchesTerm(strings.TrimSpace(term)) {
			matches = false
			break
		}
	}
	if negate {
		return !matches
	}
	return matches
}

func (d *Device) matchesTerm(term string) bool {
	if term == "" {
		return true
	}
	if strings.HasPrefix(term, "(") {
		return d.matchesFeature(strings.TrimSuffix(strings.TrimPrefix(term, "("), ")"))
	}
	switch term {
	case "all":
		return true
	case d.mediaType:
		return true
	}
	return false
}

func (d *Device) matchesFeature(feature string) bool {
	name, value, hasValue := strings.Cut(feature, ":")
	name = strings.TrimSpace(name)
	var against dimen.DU
	switch {
	case strings.HasSuffix(name, "width"):
		against = d.viewport.X
	case strings.HasSuffix(name, "height"):
		against = d.viewport.Y
	default:
		tracer().Debugf("unsupported media feature %q, assuming it matches", name)
		return true
	}
	if !hasValue {
		return against > 0
	}
	length, ok := parseLength(strings.TrimSpace(value))
	if !ok {
		tracer().Debugf("cannot parse media feature value %q, assuming it matches", value)
		return true
	}
	switch {
	case strings.HasPrefix(name, "min-"):
		return against >= length
	case strings.HasPrefix(name, "max-"):
		return against <= length
	}
	return against == length
}

// parseLength parses an absolute CSS length into device units.
func parseLength(value string) (dimen.DU, bool) {
	unit := dimen.DU(0)
	var number string
	switch {
	case strings.HasSuffix(value, "px"):
		// 96 px per inch, 72 pt per inch
		number, unit = strings.TrimSuffix(value, "px"), dimen.PT*3/4
	case strings.HasSuffix(value, "pt"):
		number, unit = strings.TrimSuffix(value, "pt"), dimen.PT
	case strings.HasSuffix(value, "pc"):
		number, unit = strings.TrimSuffix(value, "pc"), dimen.PT*12
	case strings.HasSuffix(value, "in"):
		number, unit = strings.TrimSuffix(value, "in"), dimen.PT*72
	case strings.HasSuffix(value, "cm"):
		ptPerCM := float64(dimen.PT) * 72 / 2.54
		number, unit = strings.TrimSuffix(value, "cm"), dimen.DU(ptPerCM)
	case strings.HasSuffix(value, "mm"):
		ptPerMM := float64(dimen.PT) * 72 / 25.4
		number, unit = strings.TrimSuffix(value, "mm"), dimen.DU(ptPerMM)
	case value == "0":
		return 0, true
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return 0, false
	}
	return dimen.DU(f * float64(unit)), true
}

// cutPrefixWord strips a leading word followed by whitespace.
func cutPrefixWord(s, word string) (string, bool) {
	if s == word {
		return "", true
	}
	if strings.HasPrefix(s, word+" ") {
		return strings.TrimSpace(s[len(word)+1:]), true
	}
	return s, false
}

// Package alert synthesizes reminder tones, builds notifications and delivers both on a best-effort basis
package alert

import (
	"sort"
	"strings"
	"time"
)

// Envelope shapes a note's amplitude over its duration
type Envelope string

const (
	// EnvelopeExponential decays from the note amplitude to 1% of full scale
	EnvelopeExponential Envelope = "exponential"
	// EnvelopeLinear fades linearly from the note amplitude to silence
	EnvelopeLinear Envelope = "linear"
)

// Tone names accepted as a notification sound preference
const (
	ToneDefault = "default"
	ToneGentle  = "gentle"
	ToneBell    = "bell"
	ToneMelody  = "melody"
	ToneUrgent  = "urgent"
	ToneNone    = "none"
)

// UrgentRepeatOffset is the start of the second copy of an urgent tone relative to the first
const UrgentRepeatOffset = 800 * time.Millisecond

// decayFloor is the level exponential envelopes ramp down to
const decayFloor = 0.01

// Note is one sine partial of a tone
type Note struct {
	Frequency float64       `json:"frequency"`
	Start     time.Duration `json:"start"`
	Duration  time.Duration `json:"duration"`
	Amplitude float64       `json:"amplitude"`
	Envelope  Envelope      `json:"envelope"`
}

// End returns the offset at which the note stops sounding
func (n Note) End() time.Duration {
	return n.Start + n.Duration
}

// Tone is a named, fixed sequence of notes
type Tone struct {
	Name  string `json:"name"`
	Notes []Note `json:"notes"`
}

// Length returns the offset at which the last note ends
func (t Tone) Length() time.Duration {
	var length time.Duration
	for _, n := range t.Notes {
		if end := n.End(); end > length {
			length = end
		}
	}
	return length
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

var defaultTone = Tone{
	Name: ToneDefault,
	Notes: []Note{
		{Frequency: 800, Start: 0, Duration: ms(300), Amplitude: 0.3, Envelope: EnvelopeExponential},
		{Frequency: 1000, Start: ms(350), Duration: ms(300), Amplitude: 0.3, Envelope: EnvelopeExponential},
	},
}

var gentleTone = Tone{
	Name: ToneGentle,
	Notes: []Note{
		{Frequency: 523.25, Start: 0, Duration: ms(500), Amplitude: 0.2, Envelope: EnvelopeLinear},
		{Frequency: 659.25, Start: ms(450), Duration: ms(600), Amplitude: 0.2, Envelope: EnvelopeLinear},
	},
}

var bellTone = Tone{
	Name: ToneBell,
	Notes: []Note{
		{Frequency: 1318.51, Start: 0, Duration: ms(1200), Amplitude: 0.35, Envelope: EnvelopeExponential},
		{Frequency: 2637.02, Start: 0, Duration: ms(800), Amplitude: 0.1, Envelope: EnvelopeExponential},
		{Frequency: 3955.53, Start: 0, Duration: ms(400), Amplitude: 0.05, Envelope: EnvelopeExponential},
	},
}

var melodyTone = Tone{
	Name: ToneMelody,
	Notes: []Note{
		{Frequency: 523.25, Start: 0, Duration: ms(180), Amplitude: 0.25, Envelope: EnvelopeExponential},
		{Frequency: 659.25, Start: ms(200), Duration: ms(180), Amplitude: 0.25, Envelope: EnvelopeExponential},
		{Frequency: 783.99, Start: ms(400), Duration: ms(180), Amplitude: 0.25, Envelope: EnvelopeExponential},
		{Frequency: 1046.5, Start: ms(600), Duration: ms(350), Amplitude: 0.25, Envelope: EnvelopeExponential},
	},
}

var palette = map[string]Tone{
	ToneDefault: defaultTone,
	ToneGentle:  gentleTone,
	ToneBell:    bellTone,
	ToneMelody:  melodyTone,
	ToneUrgent:  Urgent(defaultTone),
}

// Lookup returns the palette tone with the given name. Names of the form "urgent-<tone>"
// resolve to the urgent rendition of that palette tone.
func Lookup(name string) (Tone, bool) {
	if t, ok := palette[name]; ok {
		return clone(t), true
	}

	if base, found := strings.CutPrefix(name, ToneUrgent+"-"); found {
		if t, ok := palette[base]; ok && base != ToneUrgent && base != ToneDefault {
			return Urgent(t), true
		}
	}

	return Tone{}, false
}

// Names returns the palette tone names in sorted order
func Names() []string {
	names := make([]string, 0, len(palette))
	for name := range palette {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Urgent returns base played twice, the second copy starting UrgentRepeatOffset after the first
func Urgent(base Tone) Tone {
	name := ToneUrgent
	if base.Name != "" && base.Name != ToneDefault {
		name = ToneUrgent + "-" + base.Name
	}

	notes := make([]Note, 0, len(base.Notes)*2)
	notes = append(notes, base.Notes...)
	for _, n := range base.Notes {
		n.Start += UrgentRepeatOffset
		notes = append(notes, n)
	}

	return Tone{Name: name, Notes: notes}
}

// Resolve maps a stored preference to a tone. An empty preference selects the default tone,
// "none" suppresses the tone and unknown names fall back to the default tone.
func Resolve(preference string, urgent bool) (Tone, bool) {
	preference = strings.ToLower(strings.TrimSpace(preference))
	if preference == ToneNone {
		return Tone{}, false
	}

	tone, ok := Lookup(preference)
	if !ok {
		tone = clone(defaultTone)
	}

	if urgent && !strings.HasPrefix(tone.Name, ToneUrgent) {
		tone = Urgent(tone)
	}

	return tone, true
}

func clone(t Tone) Tone {
	notes := make([]Note, len(t.Notes))
	copy(notes, t.Notes)
	return Tone{Name: t.Name, Notes: notes}
}

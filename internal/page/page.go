// Package page holds the hero overlay state: the cycling phrase strip and
// the navigation highlight that follows the scroll position.
package page

import "time"

// DefaultPhrases is the hero strip.
var DefaultPhrases = []string{
	"Build systems,",
	"Run platforms,",
	"Scale with control.",
}

// Cycler highlights one phrase at a time and moves to the next one every
// interval.
type Cycler struct {
	phrases  []string
	interval time.Duration
	elapsed  time.Duration
	index    int
}

// NewCycler returns a cycler starting at the first phrase. A non-positive
// interval freezes it.
func NewCycler(phrases []string, interval time.Duration) *Cycler {
	return &Cycler{
		phrases:  append([]string(nil), phrases...),
		interval: interval,
	}
}

// Advance moves time forward by dt.
func (c *Cycler) Advance(dt time.Duration) {
	if c.interval <= 0 || len(c.phrases) == 0 {
		return
	}
	c.elapsed += dt
	for c.elapsed >= c.interval {
		c.elapsed -= c.interval
		c.index = (c.index + 1) % len(c.phrases)
	}
}

// Index is the highlighted phrase.
func (c *Cycler) Index() int { return c.index }

// Phrases returns the phrase list.
func (c *Cycler) Phrases() []string { return c.phrases }

// Section is a block of the page, in page coordinates.
type Section struct {
	ID     string
	Height float64
}

// DefaultSections is the navigation order.
var DefaultSections = []Section{
	{ID: "home", Height: 600},
	{ID: "about", Height: 400},
	{ID: "product", Height: 600},
	{ID: "asia", Height: 500},
	{ID: "news", Height: 500},
	{ID: "contact", Height: 500},
}

// ProbeLine is the viewport offset that decides which section is current.
const ProbeLine = 100

// Spy tracks which section sits under the probe line.
type Spy struct {
	sections []Section
	tops     []float64
	active   int
}

// NewSpy lays the sections out top to bottom. The first one is active.
func NewSpy(sections []Section) *Spy {
	s := &Spy{sections: append([]Section(nil), sections...)}
	top := 0.0
	for _, sec := range s.sections {
		s.tops = append(s.tops, top)
		top += sec.Height
	}
	return s
}

// Update recomputes the active section for a scroll offset. When no
// section contains the probe line the previous one stays active.
func (s *Spy) Update(scrollY float64) string {
	for i, sec := range s.sections {
		top := s.tops[i] - scrollY
		bottom := top + sec.Height
		if top <= ProbeLine && bottom >= ProbeLine {
			s.active = i
			break
		}
	}
	return s.Active()
}

// Active returns the active section id, or "" when there are no sections.
func (s *Spy) Active() string {
	if len(s.sections) == 0 {
		return ""
	}
	return s.sections[s.active].ID
}

// Sections returns the section list in page order.
func (s *Spy) Sections() []Section { return s.sections }

// Height is the total page height.
func (s *Spy) Height() float64 {
	if len(s.sections) == 0 {
		return 0
	}
	last := len(s.sections) - 1
	return s.tops[last] + s.sections[last].Height
}

// RevealRise is how far, in logical px, a revealed block rises into place.
const RevealRise = 8

// Reveal fades a block in once, easing out while it rises into place.
type Reveal struct {
	Delay    time.Duration
	Duration time.Duration
	Rise     float64
}

// At returns the block's opacity and its vertical offset elapsed after it
// first appeared.
func (r Reveal) At(elapsed time.Duration) (alpha, dy float64) {
	if r.Duration <= 0 {
		return 1, 0
	}
	t := float64(elapsed-r.Delay) / float64(r.Duration)
	switch {
	case t <= 0:
		return 0, r.Rise
	case t >= 1:
		return 1, 0
	}
	e := 1 - (1-t)*(1-t)*(1-t)
	return e, r.Rise * (1 - e)
}

package pinscroll

import (
	"errors"
	"fmt"
)

// Section is one vertically stacked block of a page. The Page owns section
// placement; the section owns its node subtree and whatever triggers and
// sequences it builds in Mount.
type Section interface {
	// Node returns the section's root node.
	Node() *Node
	// Layout sizes and arranges the section's subtree for the given page
	// width and viewport height and returns the section's height. It writes
	// layout fields only.
	Layout(width, viewportHeight float64) float64
	// Mount registers triggers and builds timelines. Returning an error
	// wrapping ErrMissingTarget defers the mount to a later frame, unless it
	// also wraps ErrInvalidStep.
	Mount(s *Scene) error
	// Unmount releases everything Mount created. Safe to call more than once.
	Unmount()
}

type pageSection struct {
	section Section
	mounted bool
	lastErr error
	spacer  float64
}

// Page stacks sections top to bottom, reserving pin spacing after sections
// whose triggers request it, and keeps the viewport's content height in sync.
type Page struct {
	scene    *Scene
	sections []*pageSection
	height   float64
}

func newPage(s *Scene) *Page {
	return &Page{scene: s}
}

// Add appends sec, lays out the page and mounts sec. A mount that fails with
// ErrMissingTarget is retried every frame until it succeeds; any other mount
// error is returned and the section stays unmounted. Timeline errors
// (ErrInvalidStep) are final even when their cause is a missing target.
func (p *Page) Add(sec Section) error {
	if sec == nil || sec.Node() == nil {
		return fmt.Errorf("%w: nil section", ErrMissingTarget)
	}
	ps := &pageSection{section: sec}
	p.sections = append(p.sections, ps)
	p.scene.root.AddChild(sec.Node())
	p.relayout()
	if err := p.mount(ps); err != nil && !retryMount(err) {
		return err
	}
	return nil
}

// retryMount reports whether a mount error may clear up on a later frame.
// A rejected timeline stays rejected: its targets are already disposed or
// its declaration is malformed.
func retryMount(err error) bool {
	return errors.Is(err, ErrMissingTarget) && !errors.Is(err, ErrInvalidStep)
}

// Remove unmounts sec and detaches its node. The node is not disposed.
func (p *Page) Remove(sec Section) {
	for i, ps := range p.sections {
		if ps.section != sec {
			continue
		}
		sec.Unmount()
		sec.Node().RemoveFromParent()
		p.sections = append(p.sections[:i:i], p.sections[i+1:]...)
		p.relayout()
		return
	}
}

// Close unmounts every section, bottom first.
func (p *Page) Close() {
	for i := len(p.sections) - 1; i >= 0; i-- {
		p.sections[i].section.Unmount()
		p.sections[i].mounted = false
	}
}

// Sections returns the sections in page order.
func (p *Page) Sections() []Section {
	out := make([]Section, len(p.sections))
	for i, ps := range p.sections {
		out[i] = ps.section
	}
	return out
}

// Height returns the laid-out page height including pin spacers.
func (p *Page) Height() float64 { return p.height }

// Mounted reports whether sec is mounted, and the last mount error if not.
func (p *Page) Mounted(sec Section) (bool, error) {
	for _, ps := range p.sections {
		if ps.section == sec {
			return ps.mounted, ps.lastErr
		}
	}
	return false, nil
}

// SpacerAfter returns the pin spacing reserved after sec.
func (p *Page) SpacerAfter(sec Section) float64 {
	for _, ps := range p.sections {
		if ps.section == sec {
			return ps.spacer
		}
	}
	return 0
}

func (p *Page) mount(ps *pageSection) error {
	err := ps.section.Mount(p.scene)
	ps.lastErr = err
	if err != nil {
		logf("mount %q: %v", ps.section.Node().Name, err)
		return err
	}
	ps.mounted = true
	if p.scene.observer.takeLayoutDirty() {
		p.relayout()
	}
	return nil
}

// update retries deferred mounts and relayouts when pin spacing changed.
func (p *Page) update() {
	for _, ps := range p.sections {
		if !ps.mounted && retryMount(ps.lastErr) {
			_ = p.mount(ps)
		}
	}
	if p.scene.observer.takeLayoutDirty() {
		p.relayout()
	}
}

// relayout places every section, measures pin spacers in page order and
// re-measures every trigger. A page without sections leaves the content
// height alone so scenes can manage their own layout.
func (p *Page) relayout() {
	p.scene.observer.takeLayoutDirty()
	if len(p.sections) == 0 {
		p.scene.observer.Invalidate()
		return
	}
	v := p.scene.viewport
	y := 0.0
	for _, ps := range p.sections {
		n := ps.section.Node()
		n.SetPosition(0, y)
		y += ps.section.Layout(v.Width, v.Height)
		ps.spacer = p.scene.observer.SpacerFor(n)
		y += ps.spacer
	}
	p.height = y
	v.SetContentHeight(y)
	p.scene.observer.Invalidate()
}

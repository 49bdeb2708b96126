// Package session ties catalog, guide geometry, input and rendering into one
// practice session. All methods must be called from the event loop.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/coords"
	"github.com/verte-zerg/tuihanzi/internal/guide"
	"github.com/verte-zerg/tuihanzi/internal/input"
	"github.com/verte-zerg/tuihanzi/internal/model"
	"github.com/verte-zerg/tuihanzi/internal/progress"
	"github.com/verte-zerg/tuihanzi/internal/render"
)

// DefaultCharacter is practiced when a level has no characters.
const DefaultCharacter = "你"

// ReferenceSize is the surface size, in pixels, that Padding is given for.
// Padding scales with the actual surface.
const ReferenceSize = 420

// DefaultPadding is the guide padding at ReferenceSize.
const DefaultPadding = 30

// Hints shown to the user.
const (
	HintGuideUnavailable  = "guide data unavailable, reselect to retry"
	HintSpeechUnavailable = "speech unavailable"
	HintDemoUnavailable   = "demonstration unavailable"
)

// Renderer draws frames onto the practice surface.
type Renderer interface {
	Resize(width, height int) error
	Redraw(f render.Frame) error
}

// Animator plays the stroke-order demonstration for a character.
type Animator interface {
	Play(character string) error
}

// Speaker pronounces text.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Transliterator returns the reading of a character.
type Transliterator interface {
	Transliterate(text string) string
}

// Recorder stores completed characters.
type Recorder interface {
	InsertRecord(ctx context.Context, rec model.PracticeRecord) (int64, error)
}

// SpeechJob pronounces the active character. It runs off the event loop;
// its error goes back through SpeechDone.
type SpeechJob func(ctx context.Context) error

// Options wires a session's collaborators. Only Catalog and Guides are
// required.
type Options struct {
	Catalog   *catalog.Catalog
	Guides    *guide.Store
	Progress  *progress.Store
	Renderer  Renderer
	Animator  Animator
	Speaker   Speaker
	Phonetic  Transliterator
	Recorder  Recorder
	Padding   float64
	SessionID string
	Logger    *slog.Logger
	Context   context.Context
	Now       func() time.Time
}

// Session is the practice state machine.
type Session struct {
	catalog  *catalog.Catalog
	guides   *guide.Store
	progress *progress.Store
	renderer Renderer
	animator Animator
	speaker  Speaker
	phonetic Transliterator
	recorder Recorder
	logger   *slog.Logger
	ctx      context.Context
	now      func() time.Time

	sessionID string
	padding   float64
	mapper    *coords.Mapper
	capture   *input.Capture
	owner     *input.Ownership

	state         model.PracticeState
	width, height int
	pending       guide.Pending
	hasPending    bool
	hint          string
	speaking      bool

	startedAt time.Time
	commits   int
	undos     int
	recorded  bool
}

// New returns a session. Call Restore or SelectCharacter before use.
func New(opts Options) *Session {
	s := &Session{
		catalog:   opts.Catalog,
		guides:    opts.Guides,
		progress:  opts.Progress,
		renderer:  opts.Renderer,
		animator:  opts.Animator,
		speaker:   opts.Speaker,
		phonetic:  opts.Phonetic,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		ctx:       opts.Context,
		now:       opts.Now,
		sessionID: opts.SessionID,
		padding:   opts.Padding,
		owner:     &input.Ownership{},
	}
	if s.catalog == nil {
		s.catalog = catalog.New(nil)
	}
	if s.guides == nil {
		s.guides = guide.NewStore(nil)
	}
	if s.progress == nil {
		s.progress = progress.NewStore(nil, opts.Logger)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.padding < 0 {
		s.padding = 0
	}
	s.mapper = coords.NewMapper(coords.HanziBounds, s.padding)
	s.capture = input.New(s.owner, s.commit)
	return s
}

// Restore selects the saved position, or the first character of the first level.
func (s *Session) Restore(ctx context.Context) {
	p := s.progress.Load(ctx, s.catalog)
	s.SelectCharacter(p.Level, p.Index)
}

// SelectCharacter makes (level, index) active. The index is clamped and an
// empty level falls back to DefaultCharacter.
func (s *Session) SelectCharacter(level string, index int) {
	entry, ok := s.catalog.Entry(level, index)
	if !ok {
		entry = model.CharacterEntry{Character: DefaultCharacter, Level: level, Index: 0}
	}
	s.capture.Cancel()
	s.state = model.PracticeState{Active: entry}
	s.hint = ""
	s.pending = s.guides.Request(entry.Character)
	s.hasPending = true
	s.startedAt = s.now()
	s.commits = 0
	s.undos = 0
	s.recorded = false
	s.progress.Save(s.ctx, entry.Level, entry.Index)
	s.playDemo()
	s.redraw()
}

// Navigate moves delta characters within the current level. At either end
// of the level it does nothing and reports false.
func (s *Session) Navigate(delta int) bool {
	active := s.state.Active
	next := s.catalog.Navigate(active.Level, active.Index, delta)
	if next == active.Index {
		return false
	}
	s.SelectCharacter(active.Level, next)
	return true
}

// SetLevel switches to the first character of level. Unknown levels are ignored.
func (s *Session) SetLevel(level string) bool {
	if !s.catalog.Has(level) {
		return false
	}
	s.SelectCharacter(level, 0)
	return true
}

// NextLevel switches delta levels away, wrapping around.
func (s *Session) NextLevel(delta int) bool {
	level := s.catalog.NextLevel(s.state.Active.Level, delta)
	if level == s.state.Active.Level {
		return false
	}
	return s.SetLevel(level)
}

// TakeGuideRequest hands out the latest geometry request once. The caller
// fetches it off the event loop and passes the result to ApplyGuide.
func (s *Session) TakeGuideRequest() (guide.Pending, bool) {
	if !s.hasPending {
		return guide.Pending{}, false
	}
	s.hasPending = false
	return s.pending, true
}

// ApplyGuide installs fetched geometry. Stale results are dropped and
// reported as false.
func (s *Session) ApplyGuide(res guide.Result) bool {
	if !s.guides.Apply(res) {
		s.logger.Debug("dropping stale guide result", "char", res.Character, "gen", res.Gen)
		return false
	}
	if res.Err != nil {
		s.logger.Warn("failed to load guide", "char", res.Character, "err", res.Err)
		s.hint = HintGuideUnavailable
	}
	s.state.TotalStrokes = s.guides.Current().Len()
	s.state.CompletedCount = min(s.state.CompletedCount, s.state.TotalStrokes)
	if s.width > 0 && s.height > 0 {
		s.mapper.Update(s.width, s.height)
	}
	s.redraw()
	return true
}

// Resize recomputes the transform for a new surface size. Progress on the
// current character is kept.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.mapper.Padding = s.padding * float64(min(width, height)) / ReferenceSize
	s.mapper.Update(width, height)
	s.capture.SetSurface(width, height)
	if s.renderer != nil {
		if err := s.renderer.Resize(width, height); err != nil {
			s.logger.Warn("failed to resize surface", "width", width, "height", height, "err", err)
		}
	}
	s.redraw()
}

// PointerDown starts a stroke.
func (s *Session) PointerDown(ev input.Event) {
	if s.capture.PointerDown(ev) {
		s.redraw()
	}
}

// PointerMove extends the current stroke.
func (s *Session) PointerMove(ev input.Event) {
	if s.capture.PointerMove(ev) {
		s.redraw()
	}
}

// PointerUp ends the current stroke.
func (s *Session) PointerUp(ev input.Event) {
	s.endStroke(func() { s.capture.PointerUp(ev) })
}

// PointerLeave ends the current stroke when the pointer leaves the surface.
func (s *Session) PointerLeave(ev input.Event) {
	s.endStroke(func() { s.capture.PointerLeave(ev) })
}

func (s *Session) endStroke(end func()) {
	if s.capture.State() != input.Drawing {
		return
	}
	end()
	s.redraw()
}

// CommitStroke counts points as one written stroke when it has at least
// two points.
func (s *Session) CommitStroke(points []input.Point) {
	if len(points) < input.MinCommitPoints {
		return
	}
	s.commit(points)
	s.redraw()
}

// commit counts a finished stroke. Strokes made before the guide is loaded
// have nothing to match and are dropped.
func (s *Session) commit(points []input.Point) {
	if len(points) < input.MinCommitPoints || s.state.TotalStrokes == 0 {
		return
	}
	s.commits++
	s.state.CompletedCount = min(s.state.CompletedCount+1, s.state.TotalStrokes)
	if s.state.Done() && !s.recorded {
		s.record()
	}
}

// Undo takes back one completed stroke. It does nothing at zero.
func (s *Session) Undo() bool {
	if s.state.CompletedCount == 0 {
		return false
	}
	s.state.CompletedCount--
	s.undos++
	s.redraw()
	return true
}

// Clear resets the current character.
func (s *Session) Clear() {
	s.capture.Cancel()
	s.state.CompletedCount = 0
	s.startedAt = s.now()
	s.commits = 0
	s.undos = 0
	s.recorded = false
	s.redraw()
}

// Speak returns a job pronouncing the active character. It returns false
// while already speaking or when no speaker is configured.
func (s *Session) Speak() (SpeechJob, bool) {
	if s.speaking {
		return nil, false
	}
	if s.speaker == nil {
		s.hint = HintSpeechUnavailable
		return nil, false
	}
	text := s.state.Active.Character
	speaker := s.speaker
	s.speaking = true
	return func(ctx context.Context) error {
		return speaker.Speak(ctx, text)
	}, true
}

// SpeechDone reports the end of a speech job.
func (s *Session) SpeechDone(err error) {
	s.speaking = false
	if err != nil {
		s.logger.Warn("failed to speak", "char", s.state.Active.Character, "err", err)
		s.hint = HintSpeechUnavailable
	}
}

// Speaking reports whether a speech job is running.
func (s *Session) Speaking() bool {
	return s.speaking
}

// PlayDemo restarts the stroke-order demonstration.
func (s *Session) PlayDemo() {
	s.playDemo()
}

func (s *Session) playDemo() {
	if s.animator == nil {
		return
	}
	if err := s.animator.Play(s.state.Active.Character); err != nil {
		s.logger.Warn("failed to play demonstration", "char", s.state.Active.Character, "err", err)
		s.hint = HintDemoUnavailable
	}
}

// Pinyin returns the reading of the active character, or the character
// itself when none is known.
func (s *Session) Pinyin() string {
	char := s.state.Active.Character
	if s.phonetic == nil {
		return char
	}
	if out := s.phonetic.Transliterate(char); out != "" {
		return out
	}
	return char
}

// Position returns the 1-based index of the active character and the
// level size.
func (s *Session) Position() (int, int) {
	n := s.catalog.Len(s.state.Active.Level)
	if n == 0 {
		return 0, 0
	}
	return s.state.Active.Index + 1, n
}

// Hint returns the transient message for the user, if any.
func (s *Session) Hint() string {
	return s.hint
}

// DismissHint clears the hint.
func (s *Session) DismissHint() {
	s.hint = ""
}

// State returns the observable practice state.
func (s *Session) State() model.PracticeState {
	st := s.state
	st.IsDrawing = s.capture.State() == input.Drawing
	return st
}

// Transform returns the current guide transform.
func (s *Session) Transform() coords.Transform {
	return s.mapper.Last()
}

// Guide returns the loaded geometry, or nil while loading or after a failure.
func (s *Session) Guide() *guide.Path {
	return s.guides.Current()
}

// Loading reports whether geometry for the active character is outstanding.
func (s *Session) Loading() bool {
	return s.guides.Loading()
}

// Live returns the in-progress stroke.
func (s *Session) Live() []input.Point {
	return s.capture.Stroke()
}

// Frame returns everything needed to draw the surface.
func (s *Session) Frame() render.Frame {
	return render.Frame{
		State:     s.State(),
		Guide:     s.Guide(),
		Transform: s.Transform(),
		Live:      s.Live(),
	}
}

func (s *Session) redraw() {
	if s.renderer == nil || s.width <= 0 || s.height <= 0 {
		return
	}
	if err := s.renderer.Redraw(s.Frame()); err != nil {
		s.logger.Warn("failed to redraw", "err", err)
	}
}

func (s *Session) record() {
	s.recorded = true
	if s.recorder == nil {
		return
	}
	rec := model.PracticeRecord{
		SessionID: s.sessionID,
		Level:     s.state.Active.Level,
		Character: s.state.Active.Character,
		Strokes:   s.state.TotalStrokes,
		Commits:   s.commits,
		Undos:     s.undos,
		StartedAt: s.startedAt,
		EndedAt:   s.now(),
	}
	if _, err := s.recorder.InsertRecord(s.ctx, rec); err != nil {
		s.logger.Warn("failed to record practice", "char", rec.Character, "err", err)
	}
}

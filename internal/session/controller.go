package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"marketing-studio/internal/marketing"
	"marketing-studio/internal/orchestrator"
)

type Action string

const (
	ActionGenerate Action = "generate"
	ActionRefine   Action = "refine"
	ActionCompare  Action = "compare"
	ActionRevert   Action = "revert"
	ActionClear    Action = "clear"
)

var (
	// ErrSuperseded is returned when the type or template changed while a
	// call was outstanding; its result is dropped.
	ErrSuperseded       = errors.New("result discarded: the selection changed while it was generating")
	ErrNoResult         = errors.New("nothing has been generated yet")
	ErrEmptyInstruction = errors.New("refinement instruction is empty")
	ErrUnknownField     = errors.New("unknown input field")
)

type BusyError struct {
	Action  Action
	Pending Action
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("cannot %s while %s is in progress", e.Action, e.Pending)
}

// Generator is the orchestration surface the controller drives.
type Generator interface {
	Generate(ctx context.Context, ct marketing.ContentType, in marketing.Inputs) (marketing.Result, error)
	Refine(ctx context.Context, prev marketing.Result, text marketing.TextContent, instruction string) (marketing.Result, error)
	Compare(ctx context.Context, in marketing.Inputs, types []marketing.ContentType) ([]orchestrator.ComparisonRow, error)
}

type Options struct {
	Generator Generator
	Logger    *slog.Logger
}

// State is a point-in-time copy of a controller.
type State struct {
	ContentType       marketing.ContentType
	Inputs            marketing.Inputs
	History           []marketing.Result
	ComparisonVisible bool
	Matrix            []orchestrator.ComparisonRow
	MatrixVisible     bool
	Generating        bool
	Refining          bool
	Comparing         bool
	LastError         error
}

// Current returns the result on display.
func (s State) Current() (marketing.Result, bool) {
	if len(s.History) == 0 {
		return marketing.Result{}, false
	}
	return s.History[len(s.History)-1], true
}

// Controller owns one user's session. Backend calls run without the lock
// held; in-flight flags keep conflicting actions out meanwhile.
type Controller struct {
	gen    Generator
	logger *slog.Logger

	mu                sync.Mutex
	contentType       marketing.ContentType
	inputs            marketing.Inputs
	history           History
	comparisonVisible bool
	matrix            []orchestrator.ComparisonRow
	matrixVisible     bool
	lastErr           error
	inFlight          map[Action]bool
	epoch             uint64
}

func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		gen:         opts.Generator,
		logger:      logger,
		contentType: marketing.SocialMedia,
		inputs:      marketing.DefaultInputs(),
		inFlight:    make(map[Action]bool),
	}
}

// SelectType switches content type and resets inputs, history and errors.
func (c *Controller) SelectType(ct marketing.ContentType) error {
	if !ct.Valid() {
		return &marketing.ConfigError{ContentType: ct}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(ct, marketing.DefaultInputs())
	return nil
}

// ApplyTemplate behaves like SelectType but takes the template's inputs.
func (c *Controller) ApplyTemplate(tpl marketing.Template) error {
	if !tpl.ContentType.Valid() {
		return &marketing.ConfigError{ContentType: tpl.ContentType}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(tpl.ContentType, tpl.Inputs)
	return nil
}

func (c *Controller) resetLocked(ct marketing.ContentType, in marketing.Inputs) {
	c.contentType = ct
	c.inputs = in
	c.history.Empty()
	c.lastErr = nil
	c.comparisonVisible = false
	c.epoch++
}

func (c *Controller) SetInputs(in marketing.Inputs) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs = in
}

// SetFields applies several field updates at once. If any key is unknown
// nothing is changed.
func (c *Controller) SetFields(fields map[marketing.Field]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(fields))
	for f := range fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	next := c.inputs
	for _, k := range keys {
		f := marketing.Field(k)
		if !next.Set(f, fields[f]) {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	c.inputs = next
	return nil
}

// Generate validates the inputs and runs a fresh generation. On success the
// history is replaced by the new result; on failure it is left untouched.
func (c *Controller) Generate(ctx context.Context) (marketing.Result, error) {
	c.mu.Lock()
	if err := c.acquireLocked(ActionGenerate); err != nil {
		c.mu.Unlock()
		return marketing.Result{}, err
	}
	ct, in, epoch := c.contentType, c.inputs, c.epoch
	if err := marketing.Validate(ct, in); err != nil {
		delete(c.inFlight, ActionGenerate)
		c.mu.Unlock()
		return marketing.Result{}, err
	}
	c.lastErr = nil
	c.comparisonVisible = false
	c.mu.Unlock()

	res, err := c.gen.Generate(ctx, ct, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, ActionGenerate)
	if epoch != c.epoch {
		c.logger.Debug("generation superseded", "content_type", ct)
		return marketing.Result{}, ErrSuperseded
	}
	if err != nil {
		c.lastErr = err
		return marketing.Result{}, err
	}
	c.history.Reset(res)
	return res, nil
}

// Refine rewrites the current text result. Poster results cannot be refined:
// the call returns the current result with applied=false and does nothing.
func (c *Controller) Refine(ctx context.Context, instruction string) (res marketing.Result, applied bool, err error) {
	instruction = strings.TrimSpace(instruction)

	c.mu.Lock()
	current, ok := c.history.Current()
	if !ok {
		c.mu.Unlock()
		return marketing.Result{}, false, ErrNoResult
	}
	text, isText := current.Text()
	if !isText {
		c.mu.Unlock()
		return current, false, nil
	}
	if instruction == "" {
		c.mu.Unlock()
		return marketing.Result{}, false, ErrEmptyInstruction
	}
	if err := c.acquireLocked(ActionRefine); err != nil {
		c.mu.Unlock()
		return marketing.Result{}, false, err
	}
	epoch := c.epoch
	c.lastErr = nil
	c.mu.Unlock()

	refined, err := c.gen.Refine(ctx, current, text, instruction)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, ActionRefine)
	if epoch != c.epoch {
		return marketing.Result{}, false, ErrSuperseded
	}
	if err != nil {
		c.lastErr = err
		return marketing.Result{}, false, err
	}
	c.history.Append(refined)
	c.comparisonVisible = true
	return refined, true, nil
}

// Revert makes history entry k current and drops everything after it.
func (c *Controller) Revert(k int) (marketing.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(ActionRevert); err != nil {
		return marketing.Result{}, err
	}
	if err := c.history.Revert(k); err != nil {
		return marketing.Result{}, err
	}
	c.comparisonVisible = true
	current, _ := c.history.Current()
	return current, nil
}

func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(ActionClear); err != nil {
		return err
	}
	c.history.Clear()
	c.comparisonVisible = false
	return nil
}

func (c *Controller) ToggleComparison() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comparisonVisible = !c.comparisonVisible
	return c.comparisonVisible
}

// Compare fills the comparison matrix for types (the default trio when empty).
// The matrix holds either every row or none.
func (c *Controller) Compare(ctx context.Context, types []marketing.ContentType) ([]orchestrator.ComparisonRow, error) {
	if len(types) == 0 {
		types = orchestrator.DefaultComparisonTypes
	}

	c.mu.Lock()
	if err := c.acquireLocked(ActionCompare); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	in, epoch := c.inputs, c.epoch
	for _, ct := range types {
		if err := marketing.Validate(ct, in); err != nil {
			delete(c.inFlight, ActionCompare)
			c.mu.Unlock()
			return nil, err
		}
	}
	c.lastErr = nil
	c.matrix = nil
	c.matrixVisible = true
	c.mu.Unlock()

	rows, err := c.gen.Compare(ctx, in, types)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, ActionCompare)
	if epoch != c.epoch {
		c.matrix = nil
		c.matrixVisible = false
		return nil, ErrSuperseded
	}
	if err != nil {
		c.lastErr = err
		return nil, err
	}
	c.matrix = rows
	return append([]orchestrator.ComparisonRow(nil), rows...), nil
}

func (c *Controller) CloseMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matrixVisible = false
	c.matrix = nil
	c.lastErr = nil
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		ContentType:       c.contentType,
		Inputs:            c.inputs,
		History:           c.history.Entries(),
		ComparisonVisible: c.comparisonVisible,
		Matrix:            append([]orchestrator.ComparisonRow(nil), c.matrix...),
		MatrixVisible:     c.matrixVisible,
		Generating:        c.inFlight[ActionGenerate],
		Refining:          c.inFlight[ActionRefine],
		Comparing:         c.inFlight[ActionCompare],
		LastError:         c.lastErr,
	}
}

// Busy reports whether any backend call is outstanding.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inFlight) > 0
}

// conflicts lists, per action, the in-flight actions that block it.
var conflicts = map[Action][]Action{
	ActionGenerate: {ActionGenerate, ActionRefine},
	ActionRefine:   {ActionRefine, ActionGenerate},
	ActionRevert:   {ActionGenerate, ActionRefine},
	ActionClear:    {ActionGenerate, ActionRefine},
	ActionCompare:  {ActionCompare},
}

func (c *Controller) checkLocked(a Action) error {
	for _, other := range conflicts[a] {
		if c.inFlight[other] {
			return &BusyError{Action: a, Pending: other}
		}
	}
	return nil
}

func (c *Controller) acquireLocked(a Action) error {
	if err := c.checkLocked(a); err != nil {
		return err
	}
	c.inFlight[a] = true
	return nil
}

package editor

import (
	"code_judge_cli/internal/domain/model"
	"context"
	"errors"
	"sync"
)

var ErrSubmitInFlight = errors.New("a submit is already in flight")

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Touch is the action transition applied when any field of a record changes.
// A still-unsaved row is never "updated", only created with its latest
// values; a delete intent is terminal for the editing session.
func Touch(a model.TestcaseAction) model.TestcaseAction {
	switch a {
	case model.ActionCreate:
		return model.ActionCreate
	case model.ActionDelete:
		return model.ActionDelete
	default:
		return model.ActionUpdate
	}
}

// API is the slice of the REST client the editor submits through.
type API interface {
	CreateChallenge(ctx context.Context, req model.ChallengeCreateRequest) (*model.Challenge, error)
	UpdateChallenge(ctx context.Context, req model.ChallengeUpdateRequest) error
}

// Editor stages local edits to one challenge's test cases and submits them as
// a single batch mutation. It is the working set of an authoring session; the
// server's list stays authoritative until a submit is accepted.
type Editor struct {
	mu          sync.Mutex
	mode        Mode
	challengeID uint
	name        string
	description string
	records     []model.TestcaseModify

	defaultLimitMemory uint
	defaultLimitTimeMs uint

	inFlight bool
}

func NewCreate(defaultLimitMemory, defaultLimitTimeMs uint) *Editor {
	return &Editor{
		mode:               ModeCreate,
		defaultLimitMemory: defaultLimitMemory,
		defaultLimitTimeMs: defaultLimitTimeMs,
	}
}

// NewEdit opens an existing challenge: the working set is replaced with the
// server's current test cases, each action-neutral until touched.
func NewEdit(ch *model.Challenge, defaultLimitMemory, defaultLimitTimeMs uint) *Editor {
	e := &Editor{
		mode:               ModeEdit,
		challengeID:        ch.ChallengeID,
		name:               ch.Name,
		description:        ch.Description,
		defaultLimitMemory: defaultLimitMemory,
		defaultLimitTimeMs: defaultLimitTimeMs,
	}
	for _, tc := range ch.Testcases {
		e.records = append(e.records, model.TestcaseModify{
			TestcaseID:     tc.TestcaseID,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			LimitMemory:    tc.LimitMemory,
			LimitTimeMs:    tc.LimitTimeMs,
			Action:         model.ActionNone,
		})
	}
	return e
}

func (e *Editor) Mode() Mode { return e.mode }

func (e *Editor) SetName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = name
}

func (e *Editor) SetDescription(description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.description = description
}

// AddTestcase appends an empty create-intent record with the default limits
// and returns its index in the working set.
func (e *Editor) AddTestcase() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, model.TestcaseModify{
		LimitMemory: e.defaultLimitMemory,
		LimitTimeMs: e.defaultLimitTimeMs,
		Action:      model.ActionCreate,
	})
	return len(e.records) - 1
}

func (e *Editor) SetInput(index int, value string) error {
	return e.edit(index, func(r *model.TestcaseModify) { r.Input = value })
}

func (e *Editor) SetExpectedOutput(index int, value string) error {
	return e.edit(index, func(r *model.TestcaseModify) { r.ExpectedOutput = value })
}

func (e *Editor) SetLimitMemory(index int, value uint) error {
	return e.edit(index, func(r *model.TestcaseModify) { r.LimitMemory = value })
}

func (e *Editor) SetLimitTimeMs(index int, value uint) error {
	return e.edit(index, func(r *model.TestcaseModify) { r.LimitTimeMs = value })
}

func (e *Editor) edit(index int, apply func(*model.TestcaseModify)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.records) {
		return errors.New("testcase index out of range")
	}
	r := &e.records[index]
	apply(r)
	r.Action = Touch(r.Action)
	return nil
}

// MarkDeleted records a delete intent for the row at index. A row the server
// has never seen is simply dropped from the working set: there is nothing to
// delete remotely, so no record with a zero testcase_id goes on the wire.
func (e *Editor) MarkDeleted(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.records) {
		return errors.New("testcase index out of range")
	}
	if e.records[index].Action == model.ActionCreate {
		e.records = append(e.records[:index], e.records[index+1:]...)
		return nil
	}
	e.records[index].Action = model.ActionDelete
	return nil
}

// Visible returns the rows a view should render: everything not
// delete-marked, in working-set order.
func (e *Editor) Visible() []model.TestcaseModify {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.TestcaseModify, 0, len(e.records))
	for _, r := range e.records {
		if r.Action != model.ActionDelete {
			out = append(out, r)
		}
	}
	return out
}

// BuildSave snapshots the full working set, delete-marked rows included, for
// transmission as one batch.
func (e *Editor) BuildSave() model.ChallengeUpdateRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	testcases := make([]model.TestcaseModify, len(e.records))
	copy(testcases, e.records)
	return model.ChallengeUpdateRequest{
		ChallengeID: e.challengeID,
		Name:        e.name,
		Description: e.description,
		Testcases:   testcases,
	}
}

// Submit sends the snapshot to the create or update endpoint depending on
// mode. The working set survives a failure untouched so the user can fix and
// retry; a second submit while one is in flight is refused.
func (e *Editor) Submit(ctx context.Context, api API) error {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}
	e.inFlight = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	snapshot := e.BuildSave()

	if e.mode == ModeCreate {
		created, err := api.CreateChallenge(ctx, model.ChallengeCreateRequest{
			Name:        snapshot.Name,
			Description: snapshot.Description,
			Testcases:   snapshot.Testcases,
		})
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.challengeID = created.ChallengeID
		e.mu.Unlock()
		return nil
	}
	return api.UpdateChallenge(ctx, snapshot)
}

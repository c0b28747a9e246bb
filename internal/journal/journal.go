// Package journal reconciles new mood entries against the session's
// EntryStore and the remote document store, keeping at most one entry per
// calendar day.
package journal

import (
	"context"
	"sync"

	"github.com/julianstephens/moodlit/internal/entrystore"
	apperrors "github.com/julianstephens/moodlit/internal/errors"
	"github.com/julianstephens/moodlit/internal/logger"
	"github.com/julianstephens/moodlit/internal/models"
	"github.com/julianstephens/moodlit/internal/storage"
)

// Identity yields the signed-in user.
type Identity interface {
	CurrentUserID() (string, bool)
}

// Gate reports connectivity.
type Gate interface {
	Online() bool
}

// Observer is told about every successful EntryStore mutation. It runs on
// the mutating goroutine before the transaction is released, so it must not
// call back into the Journal.
type Observer interface {
	EntriesChanged(entries []models.MoodEntry, usedFactors []string)
}

// Status is the outcome of a submission.
type Status int

const (
	Committed Status = iota
	PendingConflict
)

func (s Status) String() string {
	if s == PendingConflict {
		return "pending-conflict"
	}
	return "committed"
}

// SubmitResult carries the committed entry, or the candidate together with
// the entry it conflicts with.
type SubmitResult struct {
	Status   Status
	Entry    models.MoodEntry
	Existing *models.MoodEntry
}

// Pending is a candidate waiting for ConfirmReplace or CancelReplace.
type Pending struct {
	Candidate models.MoodEntry
	Existing  models.MoodEntry
}

// FetchReport summarizes a FetchAll.
type FetchReport struct {
	Loaded  int
	Skipped int
}

// Journal is the single owner of entry mutation for a session. Submit,
// ConfirmReplace and CancelReplace form one transaction; a new transaction is
// refused while one is in flight or a conflict is pending.
type Journal struct {
	entries   *entrystore.Store
	factors   *entrystore.FactorSet
	repo      storage.EntryRepository
	identity  Identity
	gate      Gate
	observers []Observer

	mu      sync.Mutex
	busy    bool
	pending *Pending
}

func New(entries *entrystore.Store, factors *entrystore.FactorSet, repo storage.EntryRepository, identity Identity, gate Gate) *Journal {
	return &Journal{
		entries:  entries,
		factors:  factors,
		repo:     repo,
		identity: identity,
		gate:     gate,
	}
}

// Observe registers o for mutation notifications.
func (j *Journal) Observe(o Observer) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.observers = append(j.observers, o)
}

// Entries returns the store the journal mutates.
func (j *Journal) Entries() *entrystore.Store {
	return j.entries
}

// Pending returns the candidate awaiting confirmation, if any.
func (j *Journal) Pending() (Pending, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.pending == nil {
		return Pending{}, false
	}
	return Pending{Candidate: j.pending.Candidate.Clone(), Existing: j.pending.Existing.Clone()}, true
}

// UsedFactors returns every factor name selected this session.
func (j *Journal) UsedFactors() []string {
	return j.factors.Names()
}

// preflight runs the checks shared by every remote-touching operation. Nothing
// has been mutated when it fails.
func (j *Journal) preflight(op string) (string, error) {
	if !j.gate.Online() {
		return "", apperrors.New(apperrors.ErrNetworkUnavailable, op, nil)
	}
	userID, ok := j.identity.CurrentUserID()
	if !ok || userID == "" {
		return "", apperrors.New(apperrors.ErrAuthRequired, op, nil)
	}
	return userID, nil
}

// begin claims the transaction. requirePending selects between starting a
// new submission and continuing a pending one.
func (j *Journal) begin(op string, requirePending bool) (*Pending, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.busy {
		return nil, apperrors.New(apperrors.ErrTransactionInProgress, op, nil)
	}
	if requirePending {
		if j.pending == nil {
			return nil, apperrors.New(apperrors.ErrNoPendingReplace, op, nil)
		}
	} else if j.pending != nil {
		return nil, apperrors.New(apperrors.ErrTransactionInProgress, op, nil)
	}
	j.busy = true
	return j.pending, nil
}

func (j *Journal) end() {
	j.mu.Lock()
	j.busy = false
	j.mu.Unlock()
}

func (j *Journal) notify() {
	j.mu.Lock()
	observers := append([]Observer(nil), j.observers...)
	j.mu.Unlock()

	snapshot := j.entries.Snapshot()
	used := j.factors.Names()
	for _, o := range observers {
		o.EntriesChanged(snapshot, used)
	}
}

// Submit persists candidate when its calendar day is free. When the day
// already holds an entry nothing is written; the candidate becomes pending
// until ConfirmReplace or CancelReplace.
func (j *Journal) Submit(ctx context.Context, candidate models.MoodEntry) (SubmitResult, error) {
	const op = "submit entry"

	userID, err := j.preflight(op)
	if err != nil {
		return SubmitResult{}, err
	}
	candidate = candidate.Clone()
	candidate.ID = ""
	if err := candidate.Validate(); err != nil {
		return SubmitResult{}, err
	}
	if _, err := j.begin(op, false); err != nil {
		return SubmitResult{}, err
	}
	defer j.end()

	if existing, ok := j.entries.LatestForDay(candidate.Date); ok {
		j.mu.Lock()
		j.pending = &Pending{Candidate: candidate, Existing: existing}
		j.mu.Unlock()
		logger.Debug("Entry conflicts with existing day", "day", candidate.Day(j.entries.Location()), "existing", existing.ID)
		return SubmitResult{Status: PendingConflict, Entry: candidate.Clone(), Existing: &existing}, nil
	}

	committed, err := j.write(ctx, op, userID, candidate)
	if err != nil {
		return SubmitResult{}, err
	}
	j.entries.Append(committed)
	j.factors.Add(committed.FactorNames()...)
	logger.Info("Entry committed", "id", committed.ID, "day", committed.Day(j.entries.Location()))

	j.notify()
	return SubmitResult{Status: Committed, Entry: committed}, nil
}

func (j *Journal) write(ctx context.Context, op, userID string, e models.MoodEntry) (models.MoodEntry, error) {
	body, err := models.EncodeDocument(e)
	if err != nil {
		return models.MoodEntry{}, apperrors.New(apperrors.ErrRemoteWrite, op, err)
	}
	id, err := j.repo.WriteEntry(ctx, userID, e.Date, body)
	if err != nil {
		return models.MoodEntry{}, apperrors.New(apperrors.ErrRemoteWrite, op, err)
	}
	e.ID = id
	return e, nil
}

// ConfirmReplace commits the pending candidate in place of the most recent
// entry of its day. The new document is written before the old one is
// removed (or both happen in one transaction when the store supports it), so
// a failure never loses the existing entry. On failure the EntryStore is
// unchanged and the candidate stays pending.
func (j *Journal) ConfirmReplace(ctx context.Context) (models.MoodEntry, error) {
	const op = "confirm replace"

	userID, err := j.preflight(op)
	if err != nil {
		return models.MoodEntry{}, err
	}
	pending, err := j.begin(op, true)
	if err != nil {
		return models.MoodEntry{}, err
	}
	defer j.end()

	candidate := pending.Candidate.Clone()
	sameDay := j.entries.ForDay(candidate.Date)
	if len(sameDay) == 0 {
		// The day was emptied since the conflict was raised (e.g. by a fetch).
		committed, err := j.write(ctx, op, userID, candidate)
		if err != nil {
			return models.MoodEntry{}, err
		}
		j.entries.Append(committed)
		return j.finishReplace(committed), nil
	}

	latest := sameDay[len(sameDay)-1]
	committed, err := j.replace(ctx, op, userID, latest.ID, candidate)
	if err != nil {
		return models.MoodEntry{}, err
	}
	j.entries.Swap([]string{latest.ID}, committed)

	// Historical duplicates for the day are cleaned up best effort.
	for _, dup := range sameDay[:len(sameDay)-1] {
		if err := j.repo.DeleteEntry(ctx, userID, dup.ID); err != nil {
			logger.Warn("Failed to delete duplicate entry", "id", dup.ID, "error", err)
			continue
		}
		j.entries.Remove(dup.ID)
	}

	return j.finishReplace(committed), nil
}

func (j *Journal) finishReplace(committed models.MoodEntry) models.MoodEntry {
	j.mu.Lock()
	j.pending = nil
	j.mu.Unlock()

	j.factors.Add(committed.FactorNames()...)
	logger.Info("Entry replaced", "id", committed.ID, "day", committed.Day(j.entries.Location()))
	j.notify()
	return committed
}

func (j *Journal) replace(ctx context.Context, op, userID, oldID string, candidate models.MoodEntry) (models.MoodEntry, error) {
	if replacer, ok := j.repo.(storage.DayReplacer); ok {
		body, err := models.EncodeDocument(candidate)
		if err != nil {
			return models.MoodEntry{}, apperrors.New(apperrors.ErrRemoteWrite, op, err)
		}
		id, err := replacer.ReplaceEntry(ctx, userID, oldID, candidate.Date, body)
		if err != nil {
			return models.MoodEntry{}, apperrors.New(apperrors.ErrRemoteWrite, op, err)
		}
		candidate.ID = id
		return candidate, nil
	}

	committed, err := j.write(ctx, op, userID, candidate)
	if err != nil {
		return models.MoodEntry{}, err
	}
	if err := j.repo.DeleteEntry(ctx, userID, oldID); err != nil {
		// Roll the new document back so the day keeps a single entry.
		if cerr := j.repo.DeleteEntry(ctx, userID, committed.ID); cerr != nil {
			logger.Error("Failed to roll back replacement entry", "id", committed.ID, "error", cerr)
		}
		return models.MoodEntry{}, apperrors.New(apperrors.ErrRemoteDelete, op, err)
	}
	return committed, nil
}

// CancelReplace discards the pending candidate. It has no remote effects and
// needs no connectivity.
func (j *Journal) CancelReplace() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.busy {
		return apperrors.New(apperrors.ErrTransactionInProgress, "cancel replace", nil)
	}
	if j.pending == nil {
		return apperrors.New(apperrors.ErrNoPendingReplace, "cancel replace", nil)
	}
	j.pending = nil
	return nil
}

// FetchAll replaces the EntryStore with the remote collection. Records that
// fail to decode are logged and skipped. A pending conflict survives.
func (j *Journal) FetchAll(ctx context.Context) (FetchReport, error) {
	const op = "fetch entries"

	userID, err := j.preflight(op)
	if err != nil {
		return FetchReport{}, err
	}

	j.mu.Lock()
	if j.busy {
		j.mu.Unlock()
		return FetchReport{}, apperrors.New(apperrors.ErrTransactionInProgress, op, nil)
	}
	j.busy = true
	j.mu.Unlock()
	defer j.end()

	docs, err := j.repo.ListEntries(ctx, userID)
	if err != nil {
		return FetchReport{}, apperrors.New(apperrors.ErrRemoteRead, op, err)
	}

	var report FetchReport
	entries := make([]models.MoodEntry, 0, len(docs))
	for _, doc := range docs {
		e, err := models.DecodeDocument(doc.ID, doc.Body)
		if err != nil {
			logger.Warn("Skipping malformed entry", "id", doc.ID, "error", err)
			report.Skipped++
			continue
		}
		entries = append(entries, e)
		j.factors.Add(e.FactorNames()...)
	}
	report.Loaded = len(entries)

	j.entries.Replace(entries)
	logger.Debug("Fetched entries", "loaded", report.Loaded, "skipped", report.Skipped)

	j.notify()
	return report, nil
}

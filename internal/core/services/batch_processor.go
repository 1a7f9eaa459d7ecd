package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledgerbots/cost_of_sales_app/internal/apperrors"
	"github.com/ledgerbots/cost_of_sales_app/internal/core/domain"
	portsrepo "github.com/ledgerbots/cost_of_sales_app/internal/core/ports/repositories"
)

// tempIDPrefix marks batch-local identifiers handed out before a record
// has been persisted.
const tempIDPrefix = "temp:"

// batchProcessor accumulates the mutations of one calculation run and
// flushes them only once the whole run has succeeded.
//
// The record store offers per-record operations only, so all-or-nothing
// semantics are approximated here: updates and creates are staged in
// memory, a lock conflict discovered at any point poisons the batch, and
// Commit is a no-op on a poisoned batch. Records created inside the batch
// get monotonically increasing temporary identifiers so that other staged
// records can reference them before the store has assigned real ids;
// references are rewritten at commit time.
type batchProcessor struct {
	records portsrepo.RecordWriter

	updates    []domain.Record
	updateIdx  map[string]int // recordID -> position in updates, last write wins
	creates    []domain.Record
	nextTempID int

	lockConflict bool
	committed    bool
}

func newBatchProcessor(records portsrepo.RecordWriter) *batchProcessor {
	return &batchProcessor{
		records:   records,
		updateIdx: make(map[string]int),
	}
}

// StageUpdate registers an update to an existing record. Staging the same
// record twice keeps only the latest state. A locked record poisons the
// batch.
func (p *batchProcessor) StageUpdate(rec domain.Record) {
	if rec.Locked {
		p.lockConflict = true
		return
	}
	if i, ok := p.updateIdx[rec.RecordID]; ok {
		p.updates[i] = rec
		return
	}
	p.updateIdx[rec.RecordID] = len(p.updates)
	p.updates = append(p.updates, rec)
}

// StageCreate registers a new record and returns the temporary identifier
// assigned to it. The identifier is only meaningful within this batch.
func (p *batchProcessor) StageCreate(rec domain.Record) string {
	p.nextTempID++
	tempID := fmt.Sprintf("%s%d", tempIDPrefix, p.nextTempID)
	rec.TempID = tempID
	p.creates = append(p.creates, rec)
	return tempID
}

// FlagLockConflict poisons the batch from outside, for locked records
// discovered during inspection rather than staging.
func (p *batchProcessor) FlagLockConflict() {
	p.lockConflict = true
}

// HasLockConflict reports whether the batch has been poisoned. Queried by
// the caller after each sale; a poisoned batch aborts the run.
func (p *batchProcessor) HasLockConflict() bool {
	return p.lockConflict
}

// Pending returns how many mutations are staged.
func (p *batchProcessor) Pending() int {
	return len(p.updates) + len(p.creates)
}

// Commit flushes creates then updates. It is a no-op when a lock conflict
// was detected. Temporary identifiers are resolved to store-assigned ones
// as creates complete, and any staged record referencing a temporary
// identifier is rewritten before it is sent.
func (p *batchProcessor) Commit(ctx context.Context) error {
	if p.lockConflict || p.committed {
		return nil
	}

	realIDs := make(map[string]string, len(p.creates))

	for _, rec := range p.creates {
		tempID := rec.TempID
		rec.TempID = ""
		rewriteTempRefs(&rec, realIDs)
		created, err := p.records.CreateRecord(ctx, rec)
		if err != nil {
			return fmt.Errorf("%w: failed to create staged record: %w", apperrors.ErrRemote, err)
		}
		if tempID != "" {
			realIDs[tempID] = created.RecordID
		}
	}

	for _, rec := range p.updates {
		rewriteTempRefs(&rec, realIDs)
		if err := p.records.UpdateRecord(ctx, rec); err != nil {
			return fmt.Errorf("%w: failed to update staged record %s: %w", apperrors.ErrRemote, rec.RecordID, err)
		}
	}

	p.committed = true
	return nil
}

// rewriteTempRefs replaces batch-local identifiers in the fields that may
// carry cross-record references.
func rewriteTempRefs(rec *domain.Record, realIDs map[string]string) {
	for i, rid := range rec.RemoteIDs {
		if real, ok := realIDs[rid]; ok && strings.HasPrefix(rid, tempIDPrefix) {
			rec.RemoteIDs[i] = real
		}
	}
	if rec.Purchase != nil {
		if real, ok := realIDs[rec.Purchase.ParentID]; ok && strings.HasPrefix(rec.Purchase.ParentID, tempIDPrefix) {
			rec.Purchase.ParentID = real
		}
	}
}

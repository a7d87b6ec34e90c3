package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"design-request-server/models"
)

// AssignmentService selects designers for approved requests, either by
// explicit operator choice or by the least-current-workload heuristic, and
// handles moving an active task between designers.
type AssignmentService struct {
	store         Store
	lifecycle     *LifecycleService
	notifications *NotificationService
}

// NewAssignmentService creates the assignment policy over a store and the
// lifecycle engine it delegates approvals to.
func NewAssignmentService(store Store, lifecycle *LifecycleService, notifications *NotificationService) *AssignmentService {
	return &AssignmentService{store: store, lifecycle: lifecycle, notifications: notifications}
}

// AutoAssignOutcome is the structured result of an auto-assignment attempt.
// A policy failure (no eligible designer, or the write lost) is reported in
// Reason rather than as an error, because the caller has a defined fallback:
// manual assignment.
type AutoAssignOutcome struct {
	Assigned   bool                  `json:"assigned"`
	Request    *models.DesignRequest `json:"request,omitempty"`
	DesignerID uint                  `json:"designer_id,omitempty"`
	Reason     string                `json:"reason,omitempty"`
}

// Assign performs a manual approval: it validates the chosen designer and
// delegates to the lifecycle approve-and-assign transition.
func (s *AssignmentService) Assign(ctx context.Context, actor models.Actor, requestID uint, designerID uint) (*models.DesignRequest, error) {
	return s.lifecycle.ApproveAndAssign(ctx, actor, requestID, designerID)
}

// AutoAssign picks the active designer with the fewest designs actively owed
// (status Approved or Revision) and approves the request for them. Ties break
// on fetch order, which the store keeps stable, so the choice is
// deterministic. The workload scan reads concurrently; selection and the
// single mutating write are sequential.
func (s *AssignmentService) AutoAssign(ctx context.Context, actor models.Actor, requestID uint) (*AutoAssignOutcome, error) {
	if !actor.Role.IsApprover() {
		return nil, &PreconditionError{Op: "auto-assign", Reason: "only producers, management or admins may assign requests"}
	}

	designers, err := s.store.ListActiveDesigners(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "auto-assign", Err: err}
	}
	if len(designers) == 0 {
		return &AutoAssignOutcome{Reason: "no active designers available; assign manually"}, nil
	}

	workloads := make([]int64, len(designers))
	scanErrs := make([]error, len(designers))
	var wg sync.WaitGroup
	for i := range designers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			workloads[i], scanErrs[i] = s.store.CountActiveAssignments(ctx, designers[i].ID, models.WorkloadStatuses)
		}(i)
	}
	wg.Wait()
	for i, err := range scanErrs {
		if err != nil {
			return nil, &PersistenceError{Op: fmt.Sprintf("workload scan for designer %d", designers[i].ID), Err: err}
		}
	}

	winner := 0
	for i := 1; i < len(designers); i++ {
		if workloads[i] < workloads[winner] {
			winner = i
		}
	}
	chosen := designers[winner]
	log.Printf("🎯 Auto-assign request %d: designer %d wins with workload %d", requestID, chosen.ID, workloads[winner])

	request, err := s.lifecycle.ApproveAndAssign(ctx, actor, requestID, chosen.ID)
	if err != nil {
		return &AutoAssignOutcome{Reason: fmt.Sprintf("assignment to designer %d failed: %v", chosen.ID, err)}, nil
	}

	return &AutoAssignOutcome{Assigned: true, Request: request, DesignerID: chosen.ID}, nil
}

// Reassign moves an active, already-assigned request from oldDesignerID to
// newDesignerID and notifies the outgoing designer, the incoming designer and
// the requester with three distinct events. old == new is rejected up front;
// it would be a no-op with a misleading outgoing notification.
func (s *AssignmentService) Reassign(ctx context.Context, actor models.Actor, requestID uint, newDesignerID uint, oldDesignerID uint) (*models.DesignRequest, error) {
	if !actor.Role.IsApprover() {
		return nil, &PreconditionError{Op: "reassign", Reason: "only producers, management or admins may reassign requests"}
	}
	if newDesignerID == oldDesignerID {
		return nil, &ValidationError{Field: "designer_id", Reason: "new designer must differ from the current one"}
	}

	designer, err := s.store.GetUser(ctx, newDesignerID)
	if err != nil {
		if err == ErrNotFound {
			return nil, &ValidationError{Field: "designer_id", Reason: "designer does not exist"}
		}
		return nil, &PersistenceError{Op: "reassign", Err: err}
	}
	if designer.Role != models.RoleDesigner || !designer.IsActive {
		return nil, &ValidationError{Field: "designer_id", Reason: "user is not an active designer"}
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.DesignerID == nil {
		return nil, &PreconditionError{Op: "reassign", Reason: "request has no assigned designer"}
	}
	if *request.DesignerID != oldDesignerID {
		return nil, &PreconditionError{Op: "reassign", Reason: "request is no longer assigned to the given designer"}
	}
	assignable := false
	for _, status := range models.AssignedActiveStatuses {
		if request.Status == status {
			assignable = true
			break
		}
	}
	if !assignable {
		return nil, &PreconditionError{
			Op:       "reassign",
			Expected: models.AssignedActiveStatuses,
			Actual:   request.Status,
		}
	}

	updated, err := s.store.UpdateRequestStatus(ctx, requestID, map[string]interface{}{
		"designer_id": newDesignerID,
	}, request.Status)
	if err != nil {
		return nil, err
	}

	// Three distinct recipients, three distinct events; never merged into
	// one broadcast.
	s.notifyReassign(ctx, models.EventReassignmentOut, updated.ID, oldDesignerID,
		fmt.Sprintf("Request %q has been moved to another designer.", updated.Title))
	s.notifyReassign(ctx, models.EventReassignmentIn, updated.ID, newDesignerID,
		fmt.Sprintf("Request %q has been assigned to you.", updated.Title))
	s.notifyReassign(ctx, models.EventRequestAssignedUpdate, updated.ID, updated.RequesterID,
		fmt.Sprintf("Request %q is now handled by %s.", updated.Title, designer.FullName))

	return updated, nil
}

func (s *AssignmentService) notifyReassign(ctx context.Context, eventType models.EventType, requestID uint, recipientID uint, message string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Fanout(ctx, eventType, requestID, message, []uint{recipientID}); err != nil {
		log.Printf("⚠️ Reassignment notification %s for request %d failed: %v", eventType, requestID, err)
	}
}

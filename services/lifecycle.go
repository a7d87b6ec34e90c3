package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"design-request-server/models"
)

// LifecycleService validates and applies status transitions for design
// requests. Every operation runs as an explicit Actor, checks role and status
// preconditions before touching the store, and pairs its primary mutation
// with the notification fan-out the transition requires. Primary mutations
// fail hard; notifications, archiving and QC are best-effort.
type LifecycleService struct {
	store         Store
	notifications *NotificationService
}

// NewLifecycleService creates the lifecycle state machine over a store.
func NewLifecycleService(store Store, notifications *NotificationService) *LifecycleService {
	return &LifecycleService{store: store, notifications: notifications}
}

// Submit creates a new design request (status Submitted) for the acting
// requester and notifies every active approver.
func (s *LifecycleService) Submit(ctx context.Context, actor models.Actor, input models.DesignRequestCreate) (*models.DesignRequest, error) {
	if actor.Role != models.RoleRequester {
		return nil, &PreconditionError{Op: "submit", Reason: "only requesters may submit design requests"}
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	category := models.RequestCategory(input.Category)
	if !category.IsValid() {
		return nil, &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", input.Category)}
	}

	deadline, err := time.Parse(time.RFC3339, input.Deadline)
	if err != nil {
		return nil, &ValidationError{Field: "deadline", Reason: "must be a valid ISO8601 timestamp"}
	}

	request := &models.DesignRequest{
		RequesterID:  actor.ID,
		Title:        title,
		Description:  input.Description,
		Category:     category,
		Deadline:     deadline,
		Status:       models.StatusSubmitted,
		ReferenceURL: input.ReferenceURL,
	}

	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, &PersistenceError{Op: "submit", Err: err}
	}

	approvers, err := s.store.ListActiveApprovers(ctx)
	if err != nil {
		log.Printf("⚠️ Could not load approvers for request %d: %v", request.ID, err)
		return request, nil
	}
	recipients := make([]uint, 0, len(approvers))
	for _, approver := range approvers {
		recipients = append(recipients, approver.ID)
	}
	message := fmt.Sprintf("New design request %q awaits approval.", request.Title)
	s.notifyBestEffort(ctx, models.EventRequestCreated, request.ID, message, recipients)

	return request, nil
}

// ApproveAndAssign moves a Submitted request to Approved with the given
// designer and notifies the requester and the designer.
func (s *LifecycleService) ApproveAndAssign(ctx context.Context, actor models.Actor, requestID uint, designerID uint) (*models.DesignRequest, error) {
	if !actor.Role.IsApprover() {
		return nil, &PreconditionError{Op: "approve", Reason: "only producers, management or admins may approve requests"}
	}

	designer, err := s.store.GetUser(ctx, designerID)
	if err != nil {
		if err == ErrNotFound {
			return nil, &ValidationError{Field: "designer_id", Reason: "designer does not exist"}
		}
		return nil, &PersistenceError{Op: "approve", Err: err}
	}
	if designer.Role != models.RoleDesigner || !designer.IsActive {
		return nil, &ValidationError{Field: "designer_id", Reason: "user is not an active designer"}
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(request.Status, models.StatusApproved) {
		return nil, &PreconditionError{
			Op:       "approve",
			Expected: []models.RequestStatus{models.StatusSubmitted},
			Actual:   request.Status,
		}
	}

	updated, err := s.store.UpdateRequestStatus(ctx, requestID, map[string]interface{}{
		"status":      models.StatusApproved,
		"designer_id": designerID,
	}, models.StatusSubmitted)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Request %q has been approved and assigned to %s.", updated.Title, designer.FullName)
	s.notifyBestEffort(ctx, models.EventRequestApproved, updated.ID, message, []uint{updated.RequesterID, designerID})

	return updated, nil
}

// Reject moves a Submitted request to Rejected and tells the requester the
// brief needs rework. Rejected is terminal: there is no edit-and-resubmit
// path out of it.
func (s *LifecycleService) Reject(ctx context.Context, actor models.Actor, requestID uint) (*models.DesignRequest, error) {
	if !actor.Role.IsApprover() {
		return nil, &PreconditionError{Op: "reject", Reason: "only producers, management or admins may reject requests"}
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(request.Status, models.StatusRejected) {
		return nil, &PreconditionError{
			Op:       "reject",
			Expected: []models.RequestStatus{models.StatusSubmitted},
			Actual:   request.Status,
		}
	}

	updated, err := s.store.UpdateRequestStatus(ctx, requestID, map[string]interface{}{
		"status": models.StatusRejected,
	}, models.StatusSubmitted)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Request %q was rejected. The brief needs rework.", updated.Title)
	s.notifyBestEffort(ctx, models.EventRevisionBrief, updated.ID, message, []uint{updated.RequesterID})

	return updated, nil
}

// Cancel lets the owning requester withdraw a request while it is still in
// the editable Submitted window.
func (s *LifecycleService) Cancel(ctx context.Context, actor models.Actor, requestID uint) (*models.DesignRequest, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actor.ID {
		return nil, &PreconditionError{Op: "cancel", Reason: "only the requester who owns the request may cancel it"}
	}
	if !models.CanTransition(request.Status, models.StatusCanceled) {
		return nil, &PreconditionError{
			Op:       "cancel",
			Expected: []models.RequestStatus{models.StatusSubmitted},
			Actual:   request.Status,
		}
	}

	updated, err := s.store.UpdateRequestStatus(ctx, requestID, map[string]interface{}{
		"status": models.StatusCanceled,
	}, models.StatusSubmitted)
	if err != nil {
		return nil, err
	}

	recipients := []uint{updated.RequesterID}
	if updated.DesignerID != nil {
		recipients = append(recipients, *updated.DesignerID)
	}
	message := fmt.Sprintf("Request %q has been canceled.", updated.Title)
	s.notifyBestEffort(ctx, models.EventRequestCanceled, updated.ID, message, recipients)

	return updated, nil
}

// EditBrief mutates the brief fields of a request the actor owns, only while
// it is Submitted. No notification is produced.
func (s *LifecycleService) EditBrief(ctx context.Context, actor models.Actor, requestID uint, edit models.DesignRequestEdit) (*models.DesignRequest, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actor.ID {
		return nil, &PreconditionError{Op: "edit", Reason: "only the requester who owns the request may edit it"}
	}
	if request.Status != models.StatusSubmitted {
		return nil, &PreconditionError{
			Op:       "edit",
			Expected: []models.RequestStatus{models.StatusSubmitted},
			Actual:   request.Status,
		}
	}

	fields := map[string]interface{}{}
	if edit.Title != nil {
		title := strings.TrimSpace(*edit.Title)
		if title == "" {
			return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		fields["title"] = title
	}
	if edit.Description != nil {
		fields["description"] = *edit.Description
	}
	if edit.Category != nil {
		category := models.RequestCategory(*edit.Category)
		if !category.IsValid() {
			return nil, &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", *edit.Category)}
		}
		fields["category"] = category
	}
	if edit.Deadline != nil {
		deadline, err := time.Parse(time.RFC3339, *edit.Deadline)
		if err != nil {
			return nil, &ValidationError{Field: "deadline", Reason: "must be a valid ISO8601 timestamp"}
		}
		fields["deadline"] = deadline
	}
	if len(fields) == 0 {
		return request, nil
	}

	return s.store.UpdateRequestStatus(ctx, requestID, fields, models.StatusSubmitted)
}

// UploadDesign records a new design artifact from the assigned designer and
// moves the request to For Review. A first upload (from Approved) always
// yields version 1; an upload from Revision increments the stored version
// number, never a client-supplied one. The QC report is best-effort and no
// user notification is recorded for this transition.
func (s *LifecycleService) UploadDesign(ctx context.Context, actor models.Actor, requestID uint, artifactURL string, notes string) (*models.DesignRequest, error) {
	if strings.TrimSpace(artifactURL) == "" {
		return nil, &ValidationError{Field: "artifact_url", Reason: "must not be empty"}
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.DesignerID == nil || *request.DesignerID != actor.ID {
		return nil, &PreconditionError{Op: "upload", Reason: "only the assigned designer may upload a design"}
	}
	if !models.CanTransition(request.Status, models.StatusForReview) {
		return nil, &PreconditionError{
			Op:       "upload",
			Expected: []models.RequestStatus{models.StatusApproved, models.StatusRevision},
			Actual:   request.Status,
		}
	}

	versionNo := 1
	if request.Status == models.StatusRevision {
		versionNo = request.VersionNo + 1
	}

	updated, err := s.store.UpdateRequestStatus(ctx, requestID, map[string]interface{}{
		"status":            models.StatusForReview,
		"latest_design_url": artifactURL,
		"designer_notes":    notes,
		"version_no":        versionNo,
	}, request.Status)
	if err != nil {
		return nil, err
	}

	s.runQC(ctx, updated, versionNo, notes)

	return updated, nil
}

// ReviewOutcome is the reviewer's verdict on an uploaded design version.
type ReviewOutcome = models.RequestStatus

// Review applies the requester's verdict on a For Review design. A Revision
// verdict requires written feedback and notifies the designer only; a
// Completed verdict archives the final artifact (best-effort) and notifies
// requester and designer. The feedback row is written before the status
// flips: losing the feedback write aborts the whole review.
func (s *LifecycleService) Review(ctx context.Context, actor models.Actor, requestID uint, feedbackText string, outcome ReviewOutcome) (*models.DesignRequest, error) {
	if outcome != models.StatusRevision && outcome != models.StatusCompleted {
		return nil, &ValidationError{Field: "outcome", Reason: "must be Revision or Completed"}
	}

	feedbackText = strings.TrimSpace(feedbackText)
	if outcome == models.StatusRevision && feedbackText == "" {
		return nil, &ValidationError{Field: "feedback_text", Reason: "revision requires written feedback"}
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actor.ID {
		return nil, &PreconditionError{Op: "review", Reason: "only the requester who owns the request may review it"}
	}
	if !models.CanTransition(request.Status, outcome) {
		return nil, &PreconditionError{
			Op:       "review",
			Expected: []models.RequestStatus{models.StatusForReview},
			Actual:   request.Status,
		}
	}

	if feedbackText != "" {
		fb := &models.Feedback{
			RequestID:    requestID,
			VersionNo:    request.VersionNo,
			CommenterID:  actor.ID,
			FeedbackText: feedbackText,
			StatusChange: outcome,
		}
		if err := s.store.InsertFeedback(ctx, fb); err != nil {
			return nil, &PersistenceError{Op: "review feedback", Err: err}
		}
	}

	updated, err := s.store.UpdateRequestStatus(ctx, requestID, map[string]interface{}{
		"status": outcome,
	}, models.StatusForReview)
	if err != nil {
		return nil, err
	}

	switch outcome {
	case models.StatusRevision:
		if updated.DesignerID != nil {
			message := fmt.Sprintf("Request %q needs a design revision (v%d reviewed).", updated.Title, updated.VersionNo)
			s.notifyBestEffort(ctx, models.EventRevisionDesign, updated.ID, message, []uint{*updated.DesignerID})
		}
	case models.StatusCompleted:
		if updated.LatestDesignURL != nil {
			if err := s.store.InsertArchiveEntry(ctx, updated.ID, *updated.LatestDesignURL); err != nil {
				log.Printf("⚠️ Archiving request %d failed: %v", updated.ID, err)
			}
		} else {
			log.Printf("⚠️ Request %d completed without a design URL, archive skipped", updated.ID)
		}
		recipients := []uint{updated.RequesterID}
		if updated.DesignerID != nil {
			recipients = append(recipients, *updated.DesignerID)
		}
		message := fmt.Sprintf("Request %q has been completed.", updated.Title)
		s.notifyBestEffort(ctx, models.EventCompleted, updated.ID, message, recipients)
	}

	return updated, nil
}

// runQC records an automated check of the uploaded version. Failures are
// logged only; the upload transition has already committed.
func (s *LifecycleService) runQC(ctx context.Context, request *models.DesignRequest, versionNo int, notes string) {
	issues := 0
	summary := "automated checks passed"
	if versionNo > 1 && strings.TrimSpace(notes) == "" {
		issues++
		summary = "revision uploaded without a change summary"
	}

	report := &models.QCReport{
		RequestID:  request.ID,
		VersionNo:  versionNo,
		IssueCount: issues,
		Summary:    summary,
	}
	if err := s.store.InsertQCReport(ctx, report); err != nil {
		log.Printf("⚠️ QC report for request %d v%d failed: %v", request.ID, versionNo, err)
	}
}

// notifyBestEffort runs the fan-out for a committed transition. Failures are
// logged and swallowed: a downstream notification error cannot undo a status
// change that already happened.
func (s *LifecycleService) notifyBestEffort(ctx context.Context, eventType models.EventType, requestID uint, message string, recipients []uint) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.Fanout(ctx, eventType, requestID, message, recipients); err != nil {
		log.Printf("⚠️ Notification fan-out %s for request %d failed: %v", eventType, requestID, err)
	}
}

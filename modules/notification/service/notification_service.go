package service

import (
	"context"
	"encoding/json"
	"fmt"

	"dateplanner-api/core/constants"
	"dateplanner-api/core/errors"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/params"
	"dateplanner-api/core/queue"
	"dateplanner-api/modules/notification/dto"
	"dateplanner-api/modules/notification/entity"
	"dateplanner-api/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo  repository.NotificationRepository
	queue queue.Enqueuer
}

// NewNotificationService builds the service. A nil enqueuer makes Notify
// write synchronously.
func NewNotificationService(repo repository.NotificationRepository, enqueuer queue.Enqueuer) *NotificationService {
	return &NotificationService{repo: repo, queue: enqueuer}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	if req.UserID == uuid.Nil || req.Title == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "notification needs a user and a title", nil)
	}

	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		return errors.NewAppError(errors.ErrCreateFailed, "failed to create notification", err)
	}
	return nil
}

// Notify delivers req in the background, falling back to a direct write
// when the task cannot be queued.
func (s *NotificationService) Notify(ctx context.Context, req *dto.CreateNotificationRequest) error {
	if s.queue != nil {
		err := s.queue.Enqueue(ctx, constants.TaskTypeNotificationSend, req)
		if err == nil {
			return nil
		}
		logger.Warn("NotificationService:Notify:EnqueueFailed", "user_id", req.UserID, "type", req.Type, "error", err)
	}
	return s.Create(ctx, req)
}

// HandleSendTask is the worker handler for notification:send.
func (s *NotificationService) HandleSendTask(ctx context.Context, payload []byte) error {
	var req dto.CreateNotificationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("decode notification payload: %w", err)
	}
	if err := s.Create(ctx, &req); err != nil {
		return err
	}
	logger.Debug("NotificationService:HandleSendTask:Delivered", "user_id", req.UserID, "type", req.Type)
	return nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*dto.PaginatedNotificationResponse, error) {
	page, err := s.repo.GetByUserID(ctx, userID, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get notifications", err)
	}

	items := make([]dto.NotificationResponse, 0, len(page.Items))
	for _, n := range page.Items {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Data:      n.Data,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}

	return &dto.PaginatedNotificationResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages(),
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return errors.NewAppError(errors.ErrInvalidInput, "invalid notification id: "+raw, err)
		}
		parsed = append(parsed, id)
	}

	if err := s.repo.MarkAsRead(ctx, userID, parsed); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to mark all as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "failed to count unread", err)
	}
	return count, nil
}

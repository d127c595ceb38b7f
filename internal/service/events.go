package service

import (
	"context"
	"errors"
	"time"

	apperrors "go-vision-proxy/internal/errors"
	"go-vision-proxy/internal/logger"
	"go-vision-proxy/internal/observer"
)

func notify(ctx context.Context, publisher observer.Subject, eventType observer.EventType, route, model string, elapsed time.Duration, err error) {
	if publisher == nil {
		return
	}
	event := observer.GenerationEvent{
		EventType:      eventType,
		Timestamp:      time.Now(),
		RequestID:      logger.RequestIDFromContext(ctx),
		Route:          route,
		Model:          model,
		ProcessingTime: elapsed,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			event.ErrorType = string(appErr.Type)
		}
	}
	publisher.NotifyObservers(ctx, event)
}

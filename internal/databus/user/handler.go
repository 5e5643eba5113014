package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/messenger-service/internal/config"
	"github.com/s21platform/messenger-service/internal/model"
)

// Handler mirrors user profile updates into the local users table, which
// backs search, participant lists and sender names.
type Handler struct {
	dbR      DBRepo
	validate *validator.Validate
}

func New(dbR DBRepo) *Handler {
	return &Handler{
		dbR:      dbR,
		validate: validator.New(),
	}
}

// Handler never fails on a malformed payload: retrying it would not help.
func (h *Handler) Handler(ctx context.Context, in []byte) error {
	logger := logger_lib.FromContext(ctx, config.KeyLogger)
	logger.AddFuncName("UserProfileHandler")

	var event model.UserProfileEvent
	if err := json.Unmarshal(in, &event); err != nil {
		logger.Error(fmt.Sprintf("failed to unmarshal user profile event: %v", err))
		return nil
	}

	if err := h.validate.Struct(&event); err != nil {
		logger.Warn(fmt.Sprintf("skipping invalid user profile event: %v", err))
		return nil
	}

	if err := h.dbR.UpsertUser(ctx, event.ToUser()); err != nil {
		logger.Error(fmt.Sprintf("failed to upsert user %s: %v", event.ID, err))
		return fmt.Errorf("failed to upsert user: %v", err)
	}

	return nil
}

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/s21platform/messenger-service/internal/config"
	api "github.com/s21platform/messenger-service/internal/generated"
	"github.com/s21platform/messenger-service/internal/model"
	"github.com/s21platform/messenger-service/internal/pkg/tx"
	"github.com/s21platform/messenger-service/internal/repository/postgres"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	searchLimit         = 20
)

var (
	errForbidden = errors.New("forbidden")
	errNotFound  = errors.New("not found")
)

type Handler struct {
	repository   DBRepo
	broadcaster  Broadcaster
	validator    Validator
	jwtGenerator JWTGenerator
}

func New(
	repo DBRepo,
	broadcaster Broadcaster,
	validator Validator,
	jwtGenerator JWTGenerator,
) *Handler {
	return &Handler{
		repository:   repo,
		broadcaster:  broadcaster,
		validator:    validator,
		jwtGenerator: jwtGenerator,
	}
}

func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("CreateConversation")

	var req api.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	callerID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get caller ID")
		h.writeError(w, "failed to get caller ID", http.StatusInternalServerError)
		return
	}

	if err := h.validator.ValidateCreateConversation(&req, callerID); err != nil {
		logger.Error(fmt.Sprintf("conversation validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("conversation validation failed: %v", err), http.StatusBadRequest)
		return
	}

	var response api.Conversation
	err := tx.TxExecute(r.Context(), func(ctx context.Context) error {
		participants := make([]api.User, 0, len(req.ParticipantsIDs))
		for _, userID := range req.ParticipantsIDs {
			user, err := h.repository.GetUser(ctx, userID)
			if err != nil {
				if errors.Is(err, postgres.ErrNotFound) {
					return fmt.Errorf("%w: user %s", errNotFound, userID)
				}
				return fmt.Errorf("failed to get user %s: %v", userID, err)
			}
			participants = append(participants, toAPIUser(*user))
		}

		conversation, err := h.repository.UpsertConversation(ctx, req.ParticipantsIDs[0], req.ParticipantsIDs[1])
		if err != nil {
			return err
		}

		response = api.Conversation{
			Id:           conversation.ID,
			Participants: participants,
			CreatedAt:    conversation.CreatedAt,
			UpdatedAt:    conversation.UpdatedAt,
		}
		return nil
	})

	if err != nil {
		logger.Error(fmt.Sprintf("failed to create conversation: %v", err))
		h.writeError(w, fmt.Sprintf("failed to create conversation: %v", err), statusFor(err))
		return
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request, userId string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetConversations")

	callerID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get caller ID")
		h.writeError(w, "failed to get caller ID", http.StatusInternalServerError)
		return
	}

	if userId != callerID {
		logger.Error("conversations of another user requested")
		h.writeError(w, "conversations of another user requested", http.StatusForbidden)
		return
	}

	previews, err := h.repository.GetConversations(r.Context(), callerID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to get conversations: %v", err))
		h.writeError(w, fmt.Sprintf("failed to get conversations: %v", err), http.StatusInternalServerError)
		return
	}

	conversations := make([]api.Conversation, len(previews))
	for i, preview := range previews {
		conversations[i] = toAPIConversation(preview)
	}

	h.writeJSON(w, api.GetConversationsResponse{Conversations: conversations}, http.StatusOK)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SendMessage")

	var req api.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	senderID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get sender ID")
		h.writeError(w, "failed to get sender ID", http.StatusInternalServerError)
		return
	}

	if err := h.validator.ValidateSendMessage(&req, senderID); err != nil {
		logger.Error(fmt.Sprintf("message validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("message validation failed: %v", err), http.StatusBadRequest)
		return
	}

	var message model.Message
	err := tx.TxExecute(r.Context(), func(ctx context.Context) error {
		var conversationID string
		if req.ConversationId != nil && *req.ConversationId != "" {
			conversationID = *req.ConversationId

			isParticipant, err := h.repository.IsConversationParticipant(ctx, conversationID, senderID)
			if err != nil {
				return fmt.Errorf("failed to check conversation participant: %v", err)
			}
			if !isParticipant {
				return fmt.Errorf("%w: user is not a participant of this conversation", errForbidden)
			}
		} else {
			recipientID := *req.RecipientId
			if _, err := h.repository.GetUser(ctx, recipientID); err != nil {
				if errors.Is(err, postgres.ErrNotFound) {
					return fmt.Errorf("%w: user %s", errNotFound, recipientID)
				}
				return fmt.Errorf("failed to get recipient: %v", err)
			}

			conversation, err := h.repository.UpsertConversation(ctx, senderID, recipientID)
			if err != nil {
				return err
			}
			conversationID = conversation.ID
		}

		message = model.Message{
			ID:             uuid.NewString(),
			ConversationID: &conversationID,
			SenderID:       senderID,
			Content:        req.Content,
			Status:         protocol.StatusSent,
			CreatedAt:      time.Now().UTC(),
		}

		return h.repository.SaveMessage(ctx, &message)
	})

	if err != nil {
		logger.Error(fmt.Sprintf("failed to send message transaction: %v", err))
		h.writeError(w, fmt.Sprintf("failed to send message: %v", err), statusFor(err))
		return
	}

	msg := message.ToProtocol()
	if h.broadcaster != nil {
		h.broadcaster.PublishMessage(r.Context(), msg)
	}

	h.writeJSON(w, toAPIMessage(msg), http.StatusOK)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request, conversationId string, params api.GetMessagesParams) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetMessages")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	limit, err := historyLimit(params.Limit)
	if err != nil {
		logger.Error(err.Error())
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	isParticipant, err := h.repository.IsConversationParticipant(r.Context(), conversationId, userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to check conversation participant: %v", err))
		h.writeError(w, fmt.Sprintf("failed to check conversation participant: %v", err), http.StatusInternalServerError)
		return
	}

	if !isParticipant {
		logger.Error("user is not a participant of the conversation")
		h.writeError(w, "user is not a participant of the conversation", http.StatusForbidden)
		return
	}

	messages, err := h.repository.GetConversationMessages(r.Context(), conversationId, params.Before, limit)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to fetch messages: %v", err))
		h.writeError(w, fmt.Sprintf("failed to fetch messages: %v", err), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, api.GetMessagesResponse{Messages: toAPIMessages(messages)}, http.StatusOK)
}

func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetGroups")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	groups, err := h.repository.GetUserGroups(r.Context(), userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to get groups: %v", err))
		h.writeError(w, fmt.Sprintf("failed to get groups: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.GetGroupsResponse{Groups: make([]api.Group, len(groups))}
	for i, group := range groups {
		response.Groups[i] = toAPIGroup(group)
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("CreateGroup")

	var req api.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	creatorID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get creator ID")
		h.writeError(w, "failed to get creator ID", http.StatusInternalServerError)
		return
	}

	if err := h.validator.ValidateCreateGroup(&req, creatorID); err != nil {
		logger.Error(fmt.Sprintf("group validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("group validation failed: %v", err), http.StatusBadRequest)
		return
	}

	memberIDs := uniqueMembers(creatorID, req.MemberIds)

	var group *model.Group
	err := tx.TxExecute(r.Context(), func(ctx context.Context) error {
		known, err := h.repository.CountUsers(ctx, memberIDs)
		if err != nil {
			return err
		}
		if known != len(memberIDs) {
			return fmt.Errorf("%w: %d of %d members are unknown", errNotFound, len(memberIDs)-known, len(memberIDs))
		}

		group, err = h.repository.CreateGroup(ctx, strings.TrimSpace(req.Name), creatorID)
		if err != nil {
			return err
		}

		return h.repository.AddGroupMembers(ctx, group.ID, memberIDs)
	})

	if err != nil {
		logger.Error(fmt.Sprintf("failed to complete group creation transaction: %v", err))
		h.writeError(w, fmt.Sprintf("failed to create group: %v", err), statusFor(err))
		return
	}

	group.MemberIDs = memberIDs
	h.writeJSON(w, toAPIGroup(*group), http.StatusOK)
}

func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("JoinGroup")

	var req api.GroupMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	if err := h.validator.ValidateGroupMembership(&req, userUUID); err != nil {
		logger.Error(fmt.Sprintf("membership validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("membership validation failed: %v", err), http.StatusBadRequest)
		return
	}

	var group *model.Group
	err := tx.TxExecute(r.Context(), func(ctx context.Context) error {
		var err error
		group, err = h.repository.GetGroup(ctx, req.GroupId)
		if err != nil {
			if errors.Is(err, postgres.ErrNotFound) {
				return fmt.Errorf("%w: group %s", errNotFound, req.GroupId)
			}
			return err
		}

		if err = h.repository.AddGroupMembers(ctx, group.ID, []string{userUUID}); err != nil {
			return err
		}

		group.MemberIDs, err = h.repository.GetGroupMemberIDs(ctx, group.ID)
		return err
	})

	if err != nil {
		logger.Error(fmt.Sprintf("failed to join group: %v", err))
		h.writeError(w, fmt.Sprintf("failed to join group: %v", err), statusFor(err))
		return
	}

	h.writeJSON(w, toAPIGroup(*group), http.StatusOK)
}

func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("LeaveGroup")

	var req api.GroupMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	if err := h.validator.ValidateGroupMembership(&req, userUUID); err != nil {
		logger.Error(fmt.Sprintf("membership validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("membership validation failed: %v", err), http.StatusBadRequest)
		return
	}

	left, err := h.repository.RemoveGroupMember(r.Context(), req.GroupId, userUUID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to leave group: %v", err))
		h.writeError(w, fmt.Sprintf("failed to leave group: %v", err), http.StatusInternalServerError)
		return
	}

	if left && h.broadcaster != nil {
		h.broadcaster.RemoveFromGroup(r.Context(), userUUID, req.GroupId)
	}

	h.writeJSON(w, api.LeaveGroupResponse{Left: left}, http.StatusOK)
}

func (h *Handler) GetGroupMembers(w http.ResponseWriter, r *http.Request, id string) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetGroupMembers")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	if !h.checkGroupMember(w, r, logger, id, userUUID) {
		return
	}

	members, err := h.repository.GetGroupMembers(r.Context(), id)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to get group members: %v", err))
		h.writeError(w, fmt.Sprintf("failed to get group members: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.GetGroupMembersResponse{Members: make([]api.User, len(members))}
	for i, member := range members {
		response.Members[i] = toAPIUser(member)
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) GetGroupMessages(w http.ResponseWriter, r *http.Request, id string, params api.GetGroupMessagesParams) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetGroupMessages")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	limit, err := historyLimit(params.Limit)
	if err != nil {
		logger.Error(err.Error())
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.checkGroupMember(w, r, logger, id, userUUID) {
		return
	}

	messages, err := h.repository.GetGroupMessages(r.Context(), id, params.Before, limit)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to fetch messages: %v", err))
		h.writeError(w, fmt.Sprintf("failed to fetch messages: %v", err), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, api.GetMessagesResponse{Messages: toAPIMessages(messages)}, http.StatusOK)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request, params api.SearchUsersParams) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SearchUsers")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to find uuid")
		h.writeError(w, "failed to find uuid", http.StatusInternalServerError)
		return
	}

	query := strings.TrimSpace(params.Query)
	if query == "" {
		logger.Error("empty search query")
		h.writeError(w, "empty search query", http.StatusBadRequest)
		return
	}

	users, err := h.repository.SearchUsers(r.Context(), query, searchLimit)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to search users: %v", err))
		h.writeError(w, fmt.Sprintf("failed to search users: %v", err), http.StatusInternalServerError)
		return
	}

	response := api.SearchUsersResponse{Users: make([]api.User, 0, len(users))}
	for _, user := range users {
		if user.ID == userUUID {
			continue
		}
		response.Users = append(response.Users, toAPIUser(user))
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) GetRealtimeToken(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetRealtimeToken")

	userUUID, ok := r.Context().Value(config.KeyUUID).(string)
	if !ok {
		logger.Error("failed to get user UUID")
		h.writeError(w, "failed to get user UUID", http.StatusInternalServerError)
		return
	}

	var username string
	user, err := h.repository.GetUser(r.Context(), userUUID)
	switch {
	case err == nil:
		username = user.Username
	case errors.Is(err, postgres.ErrNotFound):
		logger.Warn(fmt.Sprintf("user %s is not synced yet, issuing token without username", userUUID))
	default:
		logger.Error(fmt.Sprintf("failed to get user: %v", err))
		h.writeError(w, fmt.Sprintf("failed to get user: %v", err), http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.jwtGenerator.GenerateConnectToken(userUUID, username)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to generate access token: %v", err))
		h.writeError(w, fmt.Sprintf("failed to generate access token: %v", err), http.StatusInternalServerError)
		return
	}

	logger.Info(fmt.Sprintf("generated realtime token for user %s", userUUID))

	response := api.RealtimeTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}

	h.writeJSON(w, response, http.StatusOK)
}

// ----------------------------- helpers -----------------------------

func (h *Handler) checkGroupMember(w http.ResponseWriter, r *http.Request, logger logger_lib.LoggerInterface, groupID, userID string) bool {
	isMember, err := h.repository.IsGroupMember(r.Context(), groupID, userID)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to check group membership: %v", err))
		h.writeError(w, fmt.Sprintf("failed to check group membership: %v", err), http.StatusInternalServerError)
		return false
	}

	if !isMember {
		logger.Error("user is not a member of the group")
		h.writeError(w, "user is not a member of the group", http.StatusForbidden)
		return false
	}

	return true
}

func historyLimit(limit *int) (uint64, error) {
	if limit == nil {
		return defaultHistoryLimit, nil
	}
	if *limit < 1 {
		return 0, fmt.Errorf("limit must be positive")
	}
	if *limit > maxHistoryLimit {
		return maxHistoryLimit, nil
	}
	return uint64(*limit), nil
}

func uniqueMembers(adminID string, memberIDs []string) []string {
	seen := map[string]struct{}{adminID: {}}
	out := []string{adminID}
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.Error{Error: message})
}

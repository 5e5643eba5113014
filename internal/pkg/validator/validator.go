package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	api "github.com/s21platform/messenger-service/internal/generated"
)

const maxGroupNameRunes = 100

type Validator struct {
	validate        *validator.Validate
	maxContentRunes int
}

func New(maxContentRunes int) *Validator {
	return &Validator{
		validate:        validator.New(),
		maxContentRunes: maxContentRunes,
	}
}

func (v *Validator) ValidateCreateConversation(req *api.CreateConversationRequest, callerID string) error {
	if len(req.ParticipantsIDs) != 2 {
		return fmt.Errorf("direct conversation requires exactly 2 participants, got %d", len(req.ParticipantsIDs))
	}

	a, b := strings.TrimSpace(req.ParticipantsIDs[0]), strings.TrimSpace(req.ParticipantsIDs[1])
	if a == "" || b == "" {
		return fmt.Errorf("participant id cannot be empty")
	}
	if a == b {
		return fmt.Errorf("cannot start a conversation with yourself")
	}
	if a != callerID && b != callerID {
		return fmt.Errorf("caller must be a participant")
	}

	return nil
}

func (v *Validator) ValidateSendMessage(req *api.SendMessageRequest, callerID string) error {
	if req.SenderId != callerID {
		return fmt.Errorf("sender must be the caller")
	}

	if err := v.validateContent(req.Content); err != nil {
		return err
	}

	hasConversation := req.ConversationId != nil && *req.ConversationId != ""
	hasRecipient := req.RecipientId != nil && *req.RecipientId != ""
	if !hasConversation && !hasRecipient {
		return fmt.Errorf("recipientId or conversationId is required")
	}
	if hasConversation {
		if err := v.validate.Var(*req.ConversationId, "uuid"); err != nil {
			return fmt.Errorf("conversationId must be a uuid")
		}
	}
	if hasRecipient && *req.RecipientId == callerID {
		return fmt.Errorf("cannot send a message to yourself")
	}

	return nil
}

func (v *Validator) ValidateCreateGroup(req *api.CreateGroupRequest, callerID string) error {
	if req.AdminId != callerID {
		return fmt.Errorf("admin must be the caller")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("group name is required")
	}
	if utf8.RuneCountInString(name) > maxGroupNameRunes {
		return fmt.Errorf("group name exceeds maximum length of %d characters", maxGroupNameRunes)
	}

	for _, id := range req.MemberIds {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("member id cannot be empty")
		}
	}

	return nil
}

func (v *Validator) ValidateGroupMembership(req *api.GroupMembershipRequest, callerID string) error {
	if req.UserId != callerID {
		return fmt.Errorf("user must be the caller")
	}

	if err := v.validate.Var(req.GroupId, "required,uuid"); err != nil {
		return fmt.Errorf("groupId must be a uuid")
	}

	return nil
}

func (v *Validator) validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content cannot be empty")
	}

	if utf8.RuneCountInString(content) > v.maxContentRunes {
		return fmt.Errorf("content exceeds maximum length of %d characters", v.maxContentRunes)
	}

	return nil
}

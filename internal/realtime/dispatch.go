package realtime

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/s21platform/messenger-service/internal/model"
	"github.com/s21platform/messenger-service/internal/repository/postgres"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

// eventError is answered to the emitting session as an error event.
type eventError struct {
	code    string
	message string
}

func (e *eventError) Error() string { return e.code + ": " + e.message }

func invalid(format string, args ...interface{}) error {
	return &eventError{code: protocol.ErrCodeInvalidEvent, message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) error {
	return &eventError{code: protocol.ErrCodeForbidden, message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) error {
	return &eventError{code: protocol.ErrCodeNotFound, message: fmt.Sprintf(format, args...)}
}

func (s *Server) dispatch(ctx context.Context, sess *Session, ev protocol.ClientEvent) {
	var err error

	switch e := ev.(type) {
	case *protocol.JoinConversation:
		err = s.joinConversation(ctx, sess, e)
	case *protocol.JoinGroup:
		err = s.joinGroup(ctx, sess, e)
	case *protocol.SendMessage:
		err = s.sendMessage(ctx, sess, e)
	case *protocol.SendGroupMessage:
		err = s.sendGroupMessage(ctx, sess, e)
	case *protocol.MessageAck:
		err = s.acknowledge(ctx, sess, e.MessageID, protocol.KindDirect, e.ConversationID, ackStatus(e.Seen()))
	case *protocol.GroupMessageAck:
		if e.UserID != "" && e.UserID != sess.userID {
			err = forbidden("userId does not match the session user")
			break
		}
		err = s.acknowledge(ctx, sess, e.MessageID, protocol.KindGroup, e.GroupID, ackStatus(e.Seen()))
	case *protocol.UserTyping:
		err = s.typing(sess, e)
	case *protocol.ReactMessage:
		err = s.react(ctx, sess, e)
	default:
		err = invalid("unsupported event %s", ev.EventName())
	}

	if err == nil {
		return
	}

	var evErr *eventError
	if errors.As(err, &evErr) {
		sess.emitError(evErr.code, evErr.message)
		return
	}

	s.logger.Error(fmt.Sprintf("failed to handle %s from %s: %v", ev.EventName(), sess.userID, err))
	sess.emitError(protocol.ErrCodeInternal, "internal error")
}

func ackStatus(seen bool) protocol.Status {
	if seen {
		return protocol.StatusSeen
	}
	return protocol.StatusDelivered
}

func (s *Server) joinConversation(ctx context.Context, sess *Session, e *protocol.JoinConversation) error {
	room := protocol.RoomKey(protocol.KindDirect, e.ConversationID)
	err := s.authorize(sess, room, func() (bool, error) {
		return s.repo.IsConversationParticipant(ctx, e.ConversationID, sess.userID)
	})
	if err != nil {
		return err
	}

	participants, err := s.repo.GetConversationParticipantIDs(ctx, e.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to get participants: %v", err)
	}

	for _, userID := range participants {
		if userID == sess.userID {
			continue
		}

		online, err := s.presence.IsOnline(ctx, userID)
		if err != nil {
			s.logger.Warn(fmt.Sprintf("failed to get presence of %s: %v", userID, err))
			continue
		}
		sess.emit(&protocol.UserOnlineStatus{UserID: userID, IsOnline: online})
	}

	return nil
}

func (s *Server) joinGroup(ctx context.Context, sess *Session, e *protocol.JoinGroup) error {
	room := protocol.RoomKey(protocol.KindGroup, e.GroupID)
	return s.authorize(sess, room, func() (bool, error) {
		return s.repo.IsGroupMember(ctx, e.GroupID, sess.userID)
	})
}

// authorize joins sess to room when check allows it. Sessions already in the
// room skip the check.
func (s *Server) authorize(sess *Session, room string, check func() (bool, error)) error {
	if s.hub.InRoom(sess, room) {
		return nil
	}

	allowed, err := check()
	if err != nil {
		return fmt.Errorf("failed to check access to %s: %v", room, err)
	}
	if !allowed {
		return forbidden("not a member of %s", room)
	}

	s.hub.Join(sess, room)
	return nil
}

func (s *Server) validContent(content string) error {
	if utf8.RuneCountInString(content) > s.opts.MaxContentRunes {
		return invalid("content exceeds maximum length of %d characters", s.opts.MaxContentRunes)
	}
	return nil
}

func (s *Server) sendMessage(ctx context.Context, sess *Session, e *protocol.SendMessage) error {
	if e.SenderID != sess.userID {
		return forbidden("senderId does not match the session user")
	}
	if err := s.validContent(e.Content); err != nil {
		return err
	}

	conversationID := e.ConversationID
	if conversationID == "" {
		if e.RecipientID == sess.userID {
			return invalid("cannot send a message to yourself")
		}

		if _, err := s.repo.GetUser(ctx, e.RecipientID); err != nil {
			if errors.Is(err, postgres.ErrNotFound) {
				return notFound("user %s not found", e.RecipientID)
			}
			return fmt.Errorf("failed to get recipient: %v", err)
		}

		conversation, err := s.repo.UpsertConversation(ctx, sess.userID, e.RecipientID)
		if err != nil {
			return err
		}
		conversationID = conversation.ID
	}

	err := s.authorize(sess, protocol.RoomKey(protocol.KindDirect, conversationID), func() (bool, error) {
		return s.repo.IsConversationParticipant(ctx, conversationID, sess.userID)
	})
	if err != nil {
		return err
	}

	msg := protocol.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       sess.userID,
		Content:        e.Content,
		Status:         protocol.StatusSent,
		CreatedAt:      s.now().UTC(),
	}

	s.deliver(msg)
	s.persister.SaveMessage(msg)
	return nil
}

func (s *Server) sendGroupMessage(ctx context.Context, sess *Session, e *protocol.SendGroupMessage) error {
	if e.SenderID != sess.userID {
		return forbidden("senderId does not match the session user")
	}
	if err := s.validContent(e.Content); err != nil {
		return err
	}

	// checked on every send; the user may have left since joining
	room := protocol.RoomKey(protocol.KindGroup, e.GroupID)
	member, err := s.repo.IsGroupMember(ctx, e.GroupID, sess.userID)
	if err != nil {
		return fmt.Errorf("failed to check access to %s: %v", room, err)
	}
	if !member {
		s.hub.Leave(sess.userID, room)
		return forbidden("not a member of %s", room)
	}
	s.hub.Join(sess, room)

	senderName := sess.username
	if senderName == "" {
		senderName = e.SenderName
	}

	msg := protocol.Message{
		ID:         uuid.NewString(),
		GroupID:    e.GroupID,
		SenderID:   sess.userID,
		SenderName: senderName,
		Content:    e.Content,
		Status:     protocol.StatusSent,
		CreatedAt:  s.now().UTC(),
	}

	s.deliver(msg)
	s.persister.SaveMessage(msg)
	return nil
}

// lookup returns the tracked state of messageID, loading it from storage when
// the message predates this process.
func (s *Server) lookup(ctx context.Context, messageID string) (trackedMessage, error) {
	if entry, ok := s.tracker.Lookup(messageID); ok {
		return entry, nil
	}

	stored, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return trackedMessage{}, notFound("message %s not found", messageID)
		}
		return trackedMessage{}, fmt.Errorf("failed to get message: %v", err)
	}

	msg := stored.ToProtocol()
	s.tracker.Track(msg.ID, msg.Room(), msg.SenderID, msg.Status)

	entry, _ := s.tracker.Lookup(messageID)
	return entry, nil
}

// acknowledge applies a received or seen ack. Only a forward move is
// broadcast and persisted; in groups the first member to ack moves the shared
// status.
func (s *Server) acknowledge(ctx context.Context, sess *Session, messageID string, kind protocol.Kind, roomID string, next protocol.Status) error {
	room := protocol.RoomKey(kind, roomID)
	if !s.hub.InRoom(sess, room) {
		return forbidden("join %s before acknowledging", room)
	}

	entry, err := s.lookup(ctx, messageID)
	if err != nil {
		return err
	}
	if entry.room != room {
		return invalid("message %s does not belong to %s", messageID, room)
	}
	if entry.senderID == sess.userID {
		return nil
	}

	status, advanced := s.tracker.Advance(messageID, next)
	if !advanced {
		return nil
	}

	var ev protocol.ServerEvent
	if kind == protocol.KindGroup {
		ev = &protocol.GroupMessageStatusUpdate{MessageID: messageID, GroupID: roomID, Status: status}
	} else {
		ev = &protocol.MessageStatusUpdate{MessageID: messageID, ConversationID: roomID, Status: status}
	}

	if err := s.broadcast(room, ev, nil); err != nil {
		return err
	}

	s.persister.UpdateStatus(room, messageID, status)
	return nil
}

func (s *Server) typing(sess *Session, e *protocol.UserTyping) error {
	if e.UserID != sess.userID {
		return forbidden("userId does not match the session user")
	}

	room := e.Room()
	if !s.hub.InRoom(sess, room) {
		return forbidden("join %s before typing", room)
	}

	username := sess.username
	if username == "" {
		username = e.Username
	}

	ev := &protocol.ShowTyping{
		UserID:         sess.userID,
		Username:       username,
		ConversationID: e.ConversationID,
		GroupID:        e.GroupID,
	}

	return s.broadcast(room, ev, func(other *Session) bool {
		return other.userID == sess.userID
	})
}

func (s *Server) react(ctx context.Context, sess *Session, e *protocol.ReactMessage) error {
	if e.UserID != sess.userID {
		return forbidden("userId does not match the session user")
	}

	room := e.Room()
	if !s.hub.InRoom(sess, room) {
		return forbidden("join %s before reacting", room)
	}

	entry, err := s.lookup(ctx, e.MessageID)
	if err != nil {
		return err
	}
	if entry.room != room {
		return invalid("message %s does not belong to %s", e.MessageID, room)
	}

	ev := &protocol.MessageReacted{
		MessageID:      e.MessageID,
		UserID:         sess.userID,
		Emoji:          e.Emoji,
		ConversationID: e.ConversationID,
		GroupID:        e.GroupID,
	}

	if err := s.broadcast(room, ev, nil); err != nil {
		return err
	}

	s.persister.UpsertReaction(room, &model.Reaction{
		MessageID: e.MessageID,
		UserID:    sess.userID,
		Emoji:     e.Emoji,
		UpdatedAt: s.now().UTC(),
	})
	return nil
}

func (s *Server) broadcast(room string, ev protocol.ServerEvent, skip func(*Session) bool) error {
	frame, err := protocol.Encode(ev)
	if err != nil {
		return err
	}

	s.hub.Broadcast(room, ev.EventName(), frame, skip)
	return nil
}

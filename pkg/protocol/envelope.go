package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Envelope is the frame shape in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type namedEvent interface {
	EventName() string
}

type selfValidating interface {
	validate() error
}

// Encode wraps an event into an envelope frame.
func Encode(ev namedEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", ev.EventName(), err)
	}

	return json.Marshal(Envelope{Event: ev.EventName(), Data: data})
}

// DecodeClientEvent parses and validates a client frame. Unknown events and
// payloads that do not match their event are rejected.
func DecodeClientEvent(raw []byte) (ClientEvent, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}

	var ev ClientEvent
	switch env.Event {
	case EventJoinConversation:
		join := &JoinConversation{}
		join.ConversationID, _ = bareString(env.Data)
		ev = join
	case EventJoinGroup:
		join := &JoinGroup{}
		join.GroupID, _ = bareString(env.Data)
		ev = join
	case EventSendMessage:
		ev = &SendMessage{}
	case EventSendGroupMessage:
		ev = &SendGroupMessage{}
	case EventMarkMessageAsDelivered:
		ev = &MessageAck{}
	case EventMarkMessageAsSeen:
		ev = &MessageAck{seen: true}
	case EventGroupMessageReceived:
		ev = &GroupMessageAck{}
	case EventGroupMessageSeen:
		ev = &GroupMessageAck{seen: true}
	case EventUserTyping:
		ev = &UserTyping{}
	case EventReactMessage:
		ev = &ReactMessage{}
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}

	if err := decodeInto(env, ev); err != nil {
		return nil, err
	}

	return ev, nil
}

// DecodeServerEvent parses a server frame on the client side.
func DecodeServerEvent(raw []byte) (ServerEvent, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}

	var ev ServerEvent
	switch env.Event {
	case EventNewMessage:
		ev = &NewMessage{}
	case EventNewGroupMessage:
		ev = &NewGroupMessage{}
	case EventMessageStatus:
		ev = &MessageStatusUpdate{}
	case EventGroupMessageStatus:
		ev = &GroupMessageStatusUpdate{}
	case EventShowTyping:
		ev = &ShowTyping{}
	case EventMessageReacted:
		ev = &MessageReacted{}
	case EventUserOnlineStatus:
		ev = &UserOnlineStatus{}
	case EventError:
		ev = &ErrorEvent{}
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, ev); err != nil {
			return nil, fmt.Errorf("failed to parse %s payload: %w", env.Event, err)
		}
	}

	return ev, nil
}

func decodeInto(env Envelope, ev ClientEvent) error {
	if len(env.Data) > 0 {
		if _, ok := bareString(env.Data); !ok {
			if err := json.Unmarshal(env.Data, ev); err != nil {
				return fmt.Errorf("failed to parse %s payload: %w", env.Event, err)
			}
		}
	}

	if err := validate.Struct(ev); err != nil {
		return fmt.Errorf("invalid %s payload: %w", env.Event, err)
	}

	if sv, ok := ev.(selfValidating); ok {
		if err := sv.validate(); err != nil {
			return fmt.Errorf("invalid %s payload: %w", env.Event, err)
		}
	}

	return nil
}

func bareString(data json.RawMessage) (string, bool) {
	if len(data) == 0 || data[0] != '"' {
		return "", false
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false
	}

	return s, true
}

package chatclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	api "github.com/s21platform/messenger-service/internal/generated"
	"github.com/s21platform/messenger-service/pkg/protocol"
)

// HeaderUserUUID carries the caller identity the gateway normally injects.
const HeaderUserUUID = "X-User-Uuid"

const defaultTimeout = 10 * time.Second

type Conversation struct {
	ID                string          `json:"id"`
	Participants      []protocol.User `json:"participants"`
	LastMessage       *string         `json:"lastMessage,omitempty"`
	LastMessageStatus *string         `json:"lastMessageStatus,omitempty"`
	LastMessageAt     *time.Time      `json:"lastMessageAt,omitempty"`
	UnreadCount       int             `json:"unreadCount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"adminId"`
	MemberIDs []string  `json:"memberIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SendMessageRequest addresses a direct message either by conversation or,
// for a first contact, by recipient.
type SendMessageRequest struct {
	SenderID       string
	RecipientID    string
	ConversationID string
	Content        string
}

// Client talks to the messenger REST API on behalf of one user.
type Client struct {
	http   *resty.Client
	userID string
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			if !resp.IsSuccess() {
				logger.Warn(fmt.Sprintf("%s %s: %s", resp.Request.Method, resp.Request.URL, resp.Status()))
			}
			return nil
		})
	}
}

func NewClient(baseURL, userID string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader(HeaderUserUUID, userID),
		userID: userID,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) UserID() string { return c.userID }

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&errorResponse{})
}

func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var response struct {
		Conversations []Conversation `json:"conversations"`
	}

	resp, err := c.request(ctx).
		SetPathParam("userId", c.userID).
		SetResult(&response).
		Get("/conversation/{userId}")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return response.Conversations, nil
}

func (c *Client) CreateConversation(ctx context.Context, peerID string) (*Conversation, error) {
	var response Conversation

	resp, err := c.request(ctx).
		SetBody(api.CreateConversationRequest{ParticipantsIDs: []string{c.userID, peerID}}).
		SetResult(&response).
		Post("/conversation")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return &response, nil
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]protocol.Message, error) {
	var response struct {
		Messages []protocol.Message `json:"messages"`
	}

	resp, err := c.request(ctx).
		SetPathParam("conversationId", conversationID).
		SetResult(&response).
		Get("/message/{conversationId}")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return response.Messages, nil
}

func (c *Client) GroupMessages(ctx context.Context, groupID string) ([]protocol.Message, error) {
	var response struct {
		Messages []protocol.Message `json:"messages"`
	}

	resp, err := c.request(ctx).
		SetPathParam("id", groupID).
		SetResult(&response).
		Get("/group/{id}/messages")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to get group messages: %w", err)
	}

	return response.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*protocol.Message, error) {
	body := api.SendMessageRequest{
		SenderId: req.SenderID,
		Content:  req.Content,
	}
	if req.ConversationID != "" {
		body.ConversationId = &req.ConversationID
	}
	if req.RecipientID != "" {
		body.RecipientId = &req.RecipientID
	}

	var response protocol.Message
	resp, err := c.request(ctx).
		SetBody(body).
		SetResult(&response).
		Post("/message")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return &response, nil
}

func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var response struct {
		Groups []Group `json:"groups"`
	}

	resp, err := c.request(ctx).
		SetResult(&response).
		Get("/group")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return response.Groups, nil
}

func (c *Client) CreateGroup(ctx context.Context, name string, memberIDs []string) (*Group, error) {
	var response Group

	resp, err := c.request(ctx).
		SetBody(api.CreateGroupRequest{Name: name, AdminId: c.userID, MemberIds: memberIDs}).
		SetResult(&response).
		Post("/group")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return &response, nil
}

func (c *Client) JoinGroup(ctx context.Context, groupID string) (*Group, error) {
	var response Group

	resp, err := c.request(ctx).
		SetBody(api.GroupMembershipRequest{GroupId: groupID, UserId: c.userID}).
		SetResult(&response).
		Post("/group/join")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to join group: %w", err)
	}

	return &response, nil
}

func (c *Client) LeaveGroup(ctx context.Context, groupID string) (bool, error) {
	var response struct {
		Left bool `json:"left"`
	}

	resp, err := c.request(ctx).
		SetBody(api.GroupMembershipRequest{GroupId: groupID, UserId: c.userID}).
		SetResult(&response).
		Post("/group/leave")
	if err := checkResponse(resp, err); err != nil {
		return false, fmt.Errorf("failed to leave group: %w", err)
	}

	return response.Left, nil
}

func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]protocol.User, error) {
	var response struct {
		Members []protocol.User `json:"members"`
	}

	resp, err := c.request(ctx).
		SetPathParam("id", groupID).
		SetResult(&response).
		Get("/group/{id}/members")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}

	return response.Members, nil
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]protocol.User, error) {
	var response struct {
		Users []protocol.User `json:"users"`
	}

	resp, err := c.request(ctx).
		SetQueryParam("query", query).
		SetResult(&response).
		Get("/users/search")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return response.Users, nil
}

// RealtimeToken returns a short-lived token for opening a Session.
func (c *Client) RealtimeToken(ctx context.Context) (string, time.Time, error) {
	var response struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expiresAt"`
	}

	resp, err := c.request(ctx).
		SetResult(&response).
		Get("/realtime/token")
	if err := checkResponse(resp, err); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get realtime token: %w", err)
	}

	return response.Token, time.Unix(response.ExpiresAt, 0), nil
}

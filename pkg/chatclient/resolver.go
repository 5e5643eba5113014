package chatclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/s21platform/messenger-service/pkg/protocol"
)

// Resolver maps a peer to the direct conversation shared with them and a group
// to its roster.
type Resolver struct {
	api  ConversationAPI
	self string

	mu      sync.Mutex
	members map[string][]protocol.User
}

func NewResolver(api ConversationAPI, self string) *Resolver {
	return &Resolver{
		api:     api,
		self:    self,
		members: make(map[string][]protocol.User),
	}
}

// ResolveDirectConversation looks the peer up in the caller's conversations and
// creates the conversation when none exists. Search-then-create is not atomic
// on its own; two first contacts converge because the server upserts on the
// participant pair.
func (r *Resolver) ResolveDirectConversation(ctx context.Context, peerID string) (string, error) {
	if r.self == "" || peerID == "" {
		return "", fmt.Errorf("%w: both participants are required", ErrResolution)
	}
	if r.self == peerID {
		return "", fmt.Errorf("%w: cannot open a conversation with yourself", ErrResolution)
	}

	conversations, err := r.api.Conversations(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolution, err)
	}

	for _, c := range conversations {
		if c.HasParticipant(peerID) {
			return c.ID, nil
		}
	}

	created, err := r.api.CreateConversation(ctx, peerID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrResolution, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: server returned no conversation id", ErrResolution)
	}

	return created.ID, nil
}

// ResolveGroupMembers is a read-through cache over the group roster.
func (r *Resolver) ResolveGroupMembers(ctx context.Context, groupID string) ([]protocol.User, error) {
	r.mu.Lock()
	cached, ok := r.members[groupID]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	members, err := r.api.GroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of group %s: %w", groupID, err)
	}
	if members == nil {
		members = []protocol.User{}
	}

	r.mu.Lock()
	r.members[groupID] = members
	r.mu.Unlock()

	return members, nil
}

// InvalidateGroup drops the cached roster, e.g. after a join or leave.
func (r *Resolver) InvalidateGroup(groupID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, groupID)
}

// IsResolution reports whether err came from ResolveDirectConversation.
func IsResolution(err error) bool {
	return errors.Is(err, ErrResolution)
}

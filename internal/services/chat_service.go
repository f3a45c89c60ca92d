package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lhs0609a-cpu/pharmatch-service/internal/contactfilter"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/models"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/repository"
	"github.com/lhs0609a-cpu/pharmatch-service/internal/utils"
)

type ChatService struct {
	Repo    repository.MessageRepository
	Matches *MatchService
}

// NewChatService creates a new ChatService.
func NewChatService(repo repository.MessageRepository, matches *MatchService) *ChatService {
	return &ChatService{Repo: repo, Matches: matches}
}

// Statuses in which the chat channel is open.
func chatOpen(status models.MatchStatus) bool {
	return status == models.ChattingMatch || status == models.MeetingMatch
}

// SendMessage sends a chat message inside a match. The first message of
// a MUTUAL match drives the MUTUAL -> CHATTING transition. Every
// outbound message runs through the contact-leak filter before
// persistence; the filter masks and flags but never blocks the send.
func (s *ChatService) SendMessage(ctx context.Context, matchId, senderId, content string) (*models.Message, error) {
	if content == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "message content is required")
	}

	match, err := s.Matches.requireParty(ctx, matchId, senderId)
	if err != nil {
		return nil, err
	}

	if match.Status != models.MutualMatch && !chatOpen(match.Status) {
		return nil, models.NewErrorResponse(http.StatusConflict,
			fmt.Sprintf("chat is not open while the match is %s", match.Status))
	}

	result := contactfilter.Scan(content)
	newMessage := models.Message{
		MatchID:         matchId,
		SenderID:        senderId,
		Content:         content,
		ContainsContact: result.ContainsContact,
	}
	if result.ContainsContact {
		newMessage.FilteredContent = &result.FilteredContent
	}

	created, err := s.Repo.CreateMessage(ctx, newMessage)
	if err != nil {
		return nil, err
	}

	if match.Status == models.MutualMatch {
		// Promote only once the message is persisted, so a failed
		// insert never leaves an empty CHATTING match. A stale status
		// here means a concurrent sender promoted first; any other
		// failure leaves the match MUTUAL and the next send retries.
		_, _ = s.Matches.Repo.UpdateStatusCAS(ctx, matchId, models.MutualMatch, models.ChattingMatch, "", nil)
	}
	return created, nil
}

// ListMessages returns the match's messages as the reader should see
// them: the sender keeps the raw text, the counterparty gets the masked
// version of flagged messages. Incoming messages are marked read.
func (s *ChatService) ListMessages(ctx context.Context, matchId, readerId, limitStr, offsetStr string) ([]models.Message, error) {
	if _, err := s.Matches.requireParty(ctx, matchId, readerId); err != nil {
		return nil, err
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	messages, err := s.Repo.ListMessages(ctx, matchId, limit, offset)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}

	for i := range messages {
		messages[i].Content = messages[i].DeliveredContent(readerId)
		if messages[i].SenderID != readerId {
			// Raw text stays sender- and moderation-only.
			messages[i].FilteredContent = nil
		}
	}

	if err := s.Repo.MarkRead(ctx, matchId, readerId); err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "internal server error")
	}
	return messages, nil
}

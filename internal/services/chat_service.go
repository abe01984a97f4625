package services

import (
	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
)

type ChatService struct {
	store *store.Store
	hub   *ws.Hub
}

func NewChatService(st *store.Store, hub *ws.Hub) *ChatService {
	return &ChatService{store: st, hub: hub}
}

// SendMessage appends a text message and pushes it to both ends of the
// thread.
func (s *ChatService) SendMessage(senderID, receiverID, content string) (*models.Message, error) {
	msg, err := s.store.SendMessage(senderID, receiverID, content, models.MessageText, "")
	if err != nil {
		return nil, err
	}
	s.pushMessage(msg)
	return msg, nil
}

// GetChat returns the two-party thread, oldest message first.
func (s *ChatService) GetChat(userID, friendID string) []models.Message {
	return s.store.ChatThread(userID, friendID)
}

func (s *ChatService) pushMessage(msg *models.Message) {
	payload := map[string]interface{}{
		"type":    "message",
		"message": msg,
	}
	s.hub.SendTo(msg.ReceiverID, payload)
	s.hub.SendTo(msg.SenderID, payload)
}
